// Package storage提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/arrahchii/portfolio-sub000/internal/config"
	"github.com/arrahchii/portfolio-sub000/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ProfileImageResolver hands out presigned URLs for the owner's profile picture.
type ProfileImageResolver struct {
	client *minio.Client
	bucket string
	object string
	expiry time.Duration
}

// NewProfileImageResolver 初始化 MinIO 客户端。设置 Region 后预签名无需访问服务端。
func NewProfileImageResolver(cfg config.MinIOConfig) (*ProfileImageResolver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	log.Infof("MinIO 客户端初始化成功, bucket: %s, object: %s", cfg.BucketName, cfg.ProfileObject)
	return &ProfileImageResolver{
		client: client,
		bucket: cfg.BucketName,
		object: cfg.ProfileObject,
		expiry: expiry,
	}, nil
}

// ProfileImageURL generates a presigned GET URL for the profile object.
func (r *ProfileImageResolver) ProfileImageURL(ctx context.Context) (string, error) {
	presignedURL, err := r.client.PresignedGetObject(ctx, r.bucket, r.object, r.expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
