package storage

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/admin"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/pkg/errors"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// CloudinaryStorage stores uploads in a Cloudinary media library.
type CloudinaryStorage struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	folder    string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return &CloudinaryStorage{cld: cld, cloudName: cloudName, folder: strings.Trim(folder, "/")}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, folder Folder, upload Upload) (string, error) {
	if err := ValidateUpload(upload); err != nil {
		return "", err
	}
	name := NewFilename(folder, upload.Filename, upload.ContentType, time.Now())
	target := path.Join(s.folder, string(folder))

	res, err := s.cld.Upload.Upload(ctx, upload.Body, uploader.UploadParams{
		Folder:   target,
		PublicID: strings.TrimSuffix(name, path.Ext(name)),
	})
	if err != nil {
		return "", catalog.Storage("could not upload file", err)
	}
	if res.Error.Message != "" {
		return "", catalog.Storage("could not upload file", errors.New(res.Error.Message))
	}
	return res.SecureURL, nil
}

func (s *CloudinaryStorage) Owns(raw string) bool {
	_, ok := PublicIDFromURL(raw, s.cloudName)
	return ok
}

func (s *CloudinaryStorage) Exists(ctx context.Context, raw string) (bool, error) {
	id, ok := PublicIDFromURL(raw, s.cloudName)
	if !ok {
		return false, nil
	}
	res, err := s.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: id})
	if err != nil {
		return false, catalog.Storage("could not look up file", err)
	}
	return res.Error.Message == "" && res.PublicID != "", nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, raw string) error {
	id, ok := PublicIDFromURL(raw, s.cloudName)
	if !ok {
		return nil
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return catalog.Storage("could not delete file", err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return catalog.Storage("could not delete file", errors.Errorf("cloudinary destroy %s: %s %s", id, res.Result, res.Error.Message))
	}
	return nil
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v1700000000/shop/products/products-1-ab.jpg
func PublicIDFromURL(raw, cloudName string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host != "res.cloudinary.com" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != cloudName {
		return "", false
	}

	for i, part := range parts {
		if part != "upload" {
			continue
		}
		rest := parts[i+1:]
		if len(rest) > 0 && versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return "", false
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), true
	}
	return "", false
}
