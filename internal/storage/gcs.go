package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsHost = "https://storage.googleapis.com/"

type GCSStorage struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSStorage(client *gcs.Client, bucket, prefix string) *GCSStorage {
	return &GCSStorage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *GCSStorage) object(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *GCSStorage) Put(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	object := s.object(objectName(filename))

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}

	return gcsHost + s.bucket + "/" + object, nil
}

func (s *GCSStorage) Delete(ctx context.Context, url string) error {
	object, ok := strings.CutPrefix(url, gcsHost+s.bucket+"/")
	if !ok || object == "" {
		return ErrForeignURL
	}

	err := s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}
