// Package pipeline mirrors dataset resources to the object store and keeps the
// resource and package zip bundles current as the host fires lifecycle events.
//
// Every run goes filtered -> keyed -> fetched -> archived -> stored. Archives
// are fully built in memory before the first upload, and any failure aborts
// the run and is returned to the caller unchanged.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"s3-resources/pkg/archive"
	"s3-resources/pkg/config"
	"s3-resources/pkg/filter"
	"s3-resources/pkg/protocol"
	"s3-resources/pkg/storage"
)

// Host 宿主平台的元数据服务
type Host interface {
	ShowPackage(ctx context.Context, id string) (*protocol.Package, error)
	ShowMetadata(ctx context.Context, id string) (*yaml.Node, error)
	ShowResource(ctx context.Context, id string) (*protocol.Resource, error)
	UpdateResource(ctx context.Context, res *protocol.Resource) error
	ListPackages(ctx context.Context) ([]string, error)
}

type Mirror struct {
	cfg     *config.MirrorConfig
	host    Host
	sink    *storage.Sink
	builder *archive.Builder
	policy  *filter.Policy
	log     *slog.Logger

	now func() time.Time
}

// New 配置不完整时直接返回 ConfigError，不做任何上传
func New(cfg *config.MirrorConfig, host Host, store storage.ObjectStore, resolver storage.PathResolver, fetcher archive.Fetcher, log *slog.Logger) (*Mirror, error) {
	if err := cfg.Validate(); err != nil {
		log.Error("Required S3 config options missing", "error", err)
		return nil, err
	}

	policy := filter.NewPolicy(cfg.Upload.FiletypeBlacklist)
	return &Mirror{
		cfg:     cfg,
		host:    host,
		sink:    storage.NewSink(store, cfg.Upload.ArchiveEnabled, log),
		builder: archive.NewBuilder(resolver, fetcher, policy, log),
		policy:  policy,
		log:     log,
		now:     time.Now,
	}, nil
}

// Policy 当前生效的黑名单
func (m *Mirror) Policy() *filter.Policy {
	return m.policy
}

// Host 元数据服务
func (m *Mirror) Host() Host {
	return m.host
}

// NewOperation 以当前时间开始一次操作
func (m *Mirror) NewOperation() *Operation {
	return NewOperation(m.now())
}
