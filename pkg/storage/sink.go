package storage

import (
	"context"
	"fmt"
	"log/slog"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/naming"
)

// Object 一次写入请求
type Object struct {
	Key         string
	Data        []byte
	ContentType string

	// 以下仅用于日志定位
	Resource string
	Package  string
}

// Sink 负责写对象存储：覆盖写 + 公开可读，可选写一份 archive/ 下的历史副本
type Sink struct {
	store   ObjectStore
	archive bool
	log     *slog.Logger
}

func NewSink(store ObjectStore, archive bool, log *slog.Logger) *Sink {
	return &Sink{store: store, archive: archive, log: log}
}

// Put 返回实际写入的所有 key；任一步骤失败返回 StorageError。
// 删除之后调用方的取消不再生效，否则主 key 会被删掉而没有新对象；
// 单次请求的耗时由存储客户端自身的超时约束。
func (s *Sink) Put(ctx context.Context, obj Object, stamp string) ([]string, error) {
	ctx = context.WithoutCancel(ctx)

	if err := s.overwrite(ctx, obj); err != nil {
		return nil, err
	}
	keys := []string{obj.Key}

	if s.archive {
		mirror := obj
		mirror.Key = naming.ArchivalKey(obj.Key, stamp)
		if err := s.write(ctx, mirror); err != nil {
			return keys, err
		}
		keys = append(keys, mirror.Key)
	}
	return keys, nil
}

// 先删再写，避免开启了版本控制的桶堆积历史版本
func (s *Sink) overwrite(ctx context.Context, obj Object) error {
	if err := s.store.DeleteObject(ctx, obj.Key); err != nil {
		return s.fail(obj, "delete", err)
	}
	return s.write(ctx, obj)
}

func (s *Sink) write(ctx context.Context, obj Object) error {
	if err := s.store.PutObject(ctx, obj.Key, obj.Data, obj.ContentType); err != nil {
		return s.fail(obj, "put", err)
	}
	if err := s.store.SetPublicRead(ctx, obj.Key); err != nil {
		return s.fail(obj, "acl", err)
	}
	s.log.Debug("Object stored", "key", obj.Key, "bytes", len(obj.Data), "content_type", obj.ContentType)
	return nil
}

func (s *Sink) fail(obj Object, step string, err error) error {
	s.log.Error("Error uploading to object store",
		"step", step,
		"key", obj.Key,
		"resource", obj.Resource,
		"package", obj.Package,
		"error", err,
	)
	return e.New(code.StorageError, fmt.Sprintf("%s %s", step, obj.Key), err)
}
