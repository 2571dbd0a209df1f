package helpers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Uploads holds files opened from a multipart form. Close releases them.
type Uploads struct {
	Files   []storage.Upload
	closers []multipart.File
}

func (u *Uploads) Close() {
	for _, f := range u.closers {
		_ = f.Close()
	}
	u.closers = nil
}

// First returns the first upload or nil.
func (u *Uploads) First() *storage.Upload {
	if len(u.Files) == 0 {
		return nil
	}
	return &u.Files[0]
}

// FormUploads opens up to max files sent under field. A request that is not
// multipart yields no files.
func FormUploads(c *gin.Context, field string, max int) (*Uploads, error) {
	out := &Uploads{}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return out, nil
		}
		return nil, catalog.Validation("invalid multipart form", err.Error())
	}

	headers := form.File[field]
	if len(headers) > max {
		return nil, catalog.Validation("too many images", "at most "+strconv.Itoa(max)+" files are accepted in "+field)
	}
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			out.Close()
			return nil, catalog.Validation("unreadable upload", fh.Filename)
		}
		out.closers = append(out.closers, file)
		upload := storage.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        file,
		}
		if err := storage.ValidateUpload(upload); err != nil {
			out.Close()
			return nil, err
		}
		out.Files = append(out.Files, upload)
	}
	return out, nil
}
