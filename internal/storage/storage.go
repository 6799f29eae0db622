package storage

import (
	"context"
)

type FileStorage interface {
	// UploadImage сохраняет изображение в каталоге dir и возвращает публичный URL.
	UploadImage(ctx context.Context, dir string, data []byte, filename string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error
}
