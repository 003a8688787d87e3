package storage

import (
	"context"
	"fmt"
	"log/slog"

	"s3-resources/pkg/config"
)

// ObjectStore 对象存储后端 (key 使用 "/" 分隔)
type ObjectStore interface {
	// 写入对象，已存在时覆盖
	PutObject(ctx context.Context, key string, data []byte, contentType string) error

	// 删除对象，不存在时返回 nil
	DeleteObject(ctx context.Context, key string) error

	// 设置对象为公开可读
	SetPublicRead(ctx context.Context, key string) error
}

// NewObjectStore 按 storage.type 创建后端
func NewObjectStore(ctx context.Context, cfg *config.MirrorConfig, log *slog.Logger) (ObjectStore, error) {
	switch cfg.Storage.Type {
	case "local":
		log.Info("Using local object store", "dir", cfg.Storage.LocalDir)
		return NewLocalStore(cfg.Storage.LocalDir)
	case "s3", "":
		log.Info("Using S3 object store", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.BucketName, "region", cfg.S3.Region)
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
