// Package storage provides the photo object store. The production
// implementation writes to S3; services depend on the PhotoStore interface,
// so tests can substitute an in-memory fake.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// UploadResult describes one stored photo.
type UploadResult struct {
	Key         string
	URL         string
	FileName    string
	ContentType string
	Size        int64
}

// PhotoStore abstracts photo persistence.
type PhotoStore interface {
	// Put stores the uploaded file under folder and returns its public
	// location. Non-image content types are rejected.
	Put(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error)

	// Delete removes a previously stored object. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// S3Store stores photos in an S3 bucket under random UUID keys and serves
// them via the bucket's public virtual-hosted URL.
type S3Store struct {
	client *s3.S3
	bucket string
	region string
}

var _ PhotoStore = (*S3Store)(nil)

// NewS3Store builds a store against the given bucket using static
// credentials.
func NewS3Store(region, bucket, accessKey, secretKey string) *S3Store {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	}))
	return &S3Store{client: s3.New(sess), bucket: bucket, region: region}
}

// Put validates the upload's content type, buffers it, and writes it to S3
// under folder/<uuid><ext>.
func (s *S3Store) Put(ctx context.Context, fh *multipart.FileHeader, folder string) (*UploadResult, error) {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExtension(fh.Filename)
	}
	if !isImageType(contentType) {
		return nil, fmt.Errorf("storage: unsupported content type %q", contentType)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, f); err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}

	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), strings.ToLower(filepath.Ext(fh.Filename)))

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buf.Bytes()),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: put object: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		FileName:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	}, nil
}

// Delete removes an object. An empty key is a no-op.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}

func isImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
