package api

import (
	"context"
	"log/slog"

	"s3-resources/internal/pipeline"
	"s3-resources/pkg/storage"
)

// UserHeader 反向代理写入的当前登录用户
const UserHeader = "X-Remote-User"

// Catalog 下载与钩子接口用到的宿主能力
type Catalog interface {
	pipeline.Host
	CheckAccess(ctx context.Context, user, id string) error
}

// ServerHandler 持有所有业务依赖
type ServerHandler struct {
	cat       Catalog
	mirror    *pipeline.Mirror
	hooks     *pipeline.Dispatcher
	resolver  storage.PathResolver
	urlPrefix string
	ops       *operations
	log       *slog.Logger
}

func NewServerHandler(cat Catalog, mirror *pipeline.Mirror, resolver storage.PathResolver, urlPrefix string, log *slog.Logger) *ServerHandler {
	return &ServerHandler{
		cat:       cat,
		mirror:    mirror,
		hooks:     mirror.Handlers(),
		resolver:  resolver,
		urlPrefix: urlPrefix,
		ops:       newOperations(operationTTL),
		log:       log,
	}
}
