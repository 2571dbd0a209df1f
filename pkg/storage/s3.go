package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"electron-shop/api/pkg/catalog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores uploads as objects under bucket/prefix.
type S3Storage struct {
	client     S3API
	bucket     string
	prefix     string
	publicBase string
}

// NewS3Storage builds the public URL base from endpoint when set (path style,
// e.g. LocalStack), and from the virtual-hosted AWS domain otherwise.
func NewS3Storage(client S3API, bucket, prefix, endpoint string) *S3Storage {
	base := fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	if endpoint != "" {
		base = fmt.Sprintf("%s/%s", strings.TrimRight(endpoint, "/"), bucket)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Storage{client: client, bucket: bucket, prefix: prefix, publicBase: base}
}

func (s *S3Storage) Save(ctx context.Context, folder Folder, upload Upload) (string, error) {
	if err := ValidateUpload(upload); err != nil {
		return "", err
	}
	key := s.prefix + path.Join(string(folder), NewFilename(folder, upload.Filename, upload.ContentType, time.Now()))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}
	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		return "", catalog.Storage("could not upload file", err)
	}
	return s.publicBase + "/" + key, nil
}

func (s *S3Storage) keyFor(url string) (string, bool) {
	if !strings.HasPrefix(url, s.publicBase+"/"+s.prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, s.publicBase+"/")
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (s *S3Storage) Owns(url string) bool {
	_, ok := s.keyFor(url)
	return ok
}

func (s *S3Storage) Exists(ctx context.Context, url string) (bool, error) {
	key, ok := s.keyFor(url)
	if !ok {
		return false, nil
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, catalog.Storage("could not look up file", err)
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil && !isNotFound(err) {
		return catalog.Storage("could not delete file", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}
