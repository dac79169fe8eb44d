package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённый объект; Key хранится в БД,
// публичная ссылка строится через GetPublicURL.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище логотипов команд и турниров.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
