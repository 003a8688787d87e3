// Package archive builds the in-memory zip bundles uploaded next to every mirrored resource.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/filter"
	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"
	"s3-resources/pkg/storage"
)

// ContentType zip 包的 Content-Type
const ContentType = "application/zip"

// epoch 没有时间信息的条目统一使用该时间，保证重复构建字节一致
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Fetcher 通过 URL 拉取远端资源
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Archive 构建结果
type Archive struct {
	Data    []byte
	Entries []string // 按写入顺序
}

// Builder 组装 manifest + 成员文件
type Builder struct {
	resolver storage.PathResolver
	fetcher  Fetcher
	policy   *filter.Policy
	log      *slog.Logger
}

func NewBuilder(resolver storage.PathResolver, fetcher Fetcher, policy *filter.Policy, log *slog.Logger) *Builder {
	return &Builder{resolver: resolver, fetcher: fetcher, policy: policy, log: log}
}

// PackageArchive manifest + 数据集内所有可归档的资源
func (b *Builder) PackageArchive(ctx context.Context, pkg *protocol.Package, manifest []byte) (*Archive, error) {
	return b.build(ctx, pkg, manifest, b.policy.Members(pkg.Resources))
}

// ResourceArchive manifest + 目标资源 (资源不可归档时只有 manifest)
func (b *Builder) ResourceArchive(ctx context.Context, pkg *protocol.Package, res *protocol.Resource, manifest []byte) (*Archive, error) {
	return b.build(ctx, pkg, manifest, b.policy.Members([]*protocol.Resource{res}))
}

// build 所有成员读取成功后才返回；任一成员失败则整个构建失败
func (b *Builder) build(ctx context.Context, pkg *protocol.Package, manifest []byte, members []*protocol.Resource) (*Archive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	out := &Archive{}
	used := make(map[string]int)

	add := func(name string, modified time.Time, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
		out.Entries = append(out.Entries, name)
		return nil
	}

	// 1. 元数据
	manifestName := naming.ManifestName(pkg.Name)
	used[manifestName] = 1
	if err := add(manifestName, epoch, manifest); err != nil {
		return nil, err
	}

	// 2. 成员文件
	for _, res := range members {
		data, err := b.ReadMember(ctx, res)
		if err != nil {
			return nil, err
		}

		modified := epoch
		if ts, ok := res.Timestamp(); ok {
			modified = ts.UTC()
		}
		if err := add(uniqueName(used, naming.MemberName(res)), modified, data); err != nil {
			return nil, err
		}
		b.log.Debug("Added zip member", "package", pkg.Name, "resource", res.Name, "bytes", len(data))
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// ReadMember 资源的字节内容：上传中的内容优先，本地上传读文件，其余按 URL 下载
func (b *Builder) ReadMember(ctx context.Context, res *protocol.Resource) ([]byte, error) {
	if res.IsLocal() {
		if len(res.Upload) > 0 {
			return res.Upload, nil
		}
		p, ok := b.resolver.PathFor(res.ID)
		if !ok {
			return nil, e.New(code.NotFound, fmt.Sprintf("resource data not found: %s", res.Name), nil)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, e.New(code.NotFound, fmt.Sprintf("resource data not found: %s", res.Name), err)
		}
		return data, nil
	}

	if res.URL == "" {
		return nil, e.New(code.NotFound, fmt.Sprintf("resource %s has no url", res.Name), nil)
	}
	return b.fetcher.Fetch(ctx, res.URL)
}

// uniqueName 同名成员追加 -2、-3 …
func uniqueName(used map[string]int, name string) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n) + ext
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
	}
}
