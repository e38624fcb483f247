package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoService stores container and item photos in an object bucket. Records
// only hold the object key; bytes live here.
type PhotoService interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectName string) error
	EnsureBucket(ctx context.Context) error
}

type photoService struct {
	client *minio.Client
	bucket string
}

func NewPhotoService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (PhotoService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &photoService{client: client, bucket: bucket}, nil
}

func (p *photoService) Upload(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := p.client.PutObject(ctx, p.bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *photoService) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := p.client.PresignedGetObject(ctx, p.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (p *photoService) Delete(ctx context.Context, objectName string) error {
	return p.client.RemoveObject(ctx, p.bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *photoService) EnsureBucket(ctx context.Context) error {
	found, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !found {
		return p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
