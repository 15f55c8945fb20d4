// Package blob реализует хранилище промо-изображений планов поверх
// S3-совместимого сервиса. Хранятся только байты и публичный URL,
// метаданные изображения живут в записи плана.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/magabrotheeeer/plan-connect/internal/config"
)

// Storage инкапсулирует S3-клиент и настройки бакета.
type Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// New создаёт S3-клиент по настройкам. Для локальных S3-совместимых
// сервисов (MinIO и подобных) используется path-style адресация.
func New(ctx context.Context, cfg config.BlobStorage) (*Storage, error) {
	const op = "blob.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	s := &Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3Bucket),
	}); err != nil {
		if _, createErr := client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3Bucket),
		}); createErr != nil {
			return nil, fmt.Errorf("%s: bucket %s not accessible: %w", op, cfg.S3Bucket, err)
		}
	}

	return s, nil
}

// Upload сохраняет объект и возвращает его публичный URL.
func (s *Storage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	const op = "blob.Upload"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.PublicURL(path), nil
}

// PublicURL возвращает публичный URL объекта по его пути.
func (s *Storage) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, path)
}

// Remove удаляет объекты по списку путей.
func (s *Storage) Remove(ctx context.Context, paths []string) error {
	const op = "blob.Remove"

	objects := make([]types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(p)})
	}
	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
