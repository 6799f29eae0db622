package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"twocare/config"
)

var (
	ErrEmptyFile   = errors.New("пустые данные файла")
	ErrNotAnImage  = errors.New("файл не является изображением")
	ErrForeignFile = errors.New("файл не принадлежит хранилищу")
)

type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента S3: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета: %w", err)
		}
		logger.Info("создан бакет", zap.String("bucket", cfg.Bucket))
	}

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: BaseURL(cfg),
		logger:  logger,
	}, nil
}

// BaseURL возвращает префикс публичных ссылок на объекты бакета (path-style).
func BaseURL(cfg config.S3Config) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
}

func (s *S3Storage) UploadImage(ctx context.Context, dir string, data []byte, filename string) (string, error) {
	objectName, contentType, err := imageObjectName(dir, data, filename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки файла в S3: %w", err)
	}

	s.logger.Debug("файл загружен", zap.String("object", objectName), zap.Int("size", len(data)))

	return s.baseURL + objectName, nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}

	objectName, err := objectFromURL(s.baseURL, fileURL)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("ошибка удаления файла из S3: %w", err)
	}

	return nil
}

func imageObjectName(dir string, data []byte, filename string) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmptyFile
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".bin"
		}
	}

	return path.Join(dir, uuid.New().String()+ext), contentType, nil
}

func objectFromURL(baseURL, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, baseURL) || len(fileURL) == len(baseURL) {
		return "", fmt.Errorf("%w: %s", ErrForeignFile, fileURL)
	}
	return strings.TrimPrefix(fileURL, baseURL), nil
}
