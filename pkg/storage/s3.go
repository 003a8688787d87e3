package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"s3-resources/pkg/code"
	"s3-resources/pkg/config"
	"s3-resources/pkg/e"
)

// S3Store 基于 minio-go 的 S3 兼容后端
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store 显式配置了 AK/SK 时使用静态凭证，否则依次尝试环境变量、~/.aws/credentials、IAM
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	return newS3Store(ctx, cfg, nil)
}

func newS3Store(ctx context.Context, cfg config.S3Config, transport http.RoundTripper) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     s3Credentials(cfg),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, e.New(code.ConfigError, "init s3 client failed", err)
	}

	// 启动时确认桶可访问，凭证缺失 / 无权限在这里暴露
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, e.New(code.ConfigError, fmt.Sprintf("check bucket %s failed", cfg.BucketName), err)
	}
	if !exists {
		return nil, e.New(code.ConfigError, fmt.Sprintf("bucket %s does not exist", cfg.BucketName), nil)
	}

	return &S3Store{client: client, bucket: cfg.BucketName}, nil
}

func s3Credentials(cfg config.S3Config) *credentials.Credentials {
	if cfg.HasStaticCredentials() {
		return credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

func (s *S3Store) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	objectName := strings.ReplaceAll(key, "\\", "/")

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	objectName := strings.ReplaceAll(key, "\\", "/")
	// S3 删除不存在的对象同样返回成功
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// SetPublicRead 以 REPLACE 方式原地复制对象并带上 x-amz-acl: public-read
func (s *S3Store) SetPublicRead(ctx context.Context, key string) error {
	objectName := strings.ReplaceAll(key, "\\", "/")

	info, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return err
	}

	meta := map[string]string{"x-amz-acl": "public-read"}
	if info.ContentType != "" {
		meta["Content-Type"] = info.ContentType
	}

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          s.bucket,
			Object:          objectName,
			UserMetadata:    meta,
			ReplaceMetadata: true,
		},
		minio.CopySrcOptions{
			Bucket: s.bucket,
			Object: objectName,
		},
	)
	return err
}
