package pipeline

import (
	"context"

	"s3-resources/internal/metrics"
	"s3-resources/pkg/archive"
	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/filter"
	"s3-resources/pkg/manifest"
	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"
	"s3-resources/pkg/storage"
)

// UploadResource 把资源写到主 key，并改写资源的位置字段:
// Upload 清空，URLType = s3，URL = url_prefix + key。
// 黑名单内的资源和 API 资源直接跳过，不算失败；API 资源保留原始链接。
func (m *Mirror) UploadResource(ctx context.Context, op *Operation, res *protocol.Resource) error {
	// 1. filtered
	if m.policy.IsBlacklisted(res) {
		m.log.Info("Resource is blacklisted and not uploaded", "resource", res.Name, "package", res.PackageID)
		return nil
	}
	if filter.IsAPI(res) {
		m.log.Info("Resource is an API endpoint and not uploaded", "resource", res.Name, "package", res.PackageID)
		return nil
	}

	// 2. keyed
	if naming.ResourceSlug(res) == "" {
		metrics.Failures.WithLabelValues("key").Inc()
		return e.New(code.KeyError, "resource has neither a name nor an id", nil)
	}
	pkg, err := m.host.ShowPackage(ctx, res.PackageID)
	if err != nil {
		metrics.Failures.WithLabelValues("host").Inc()
		return err
	}
	key := naming.CanonicalKey(pkg.Name, res, m.cfg.Upload.KeyTimestamp, op.Started)

	// 3. fetched
	data, err := m.builder.ReadMember(ctx, res)
	if err != nil {
		metrics.Failures.WithLabelValues("fetch").Inc()
		m.log.Error("Resource data not found", "resource", res.Name, "package", pkg.Name, "error", err)
		return err
	}

	// 4. stored
	obj := storage.Object{
		Key:         key,
		Data:        data,
		ContentType: filter.ContentType(res),
		Resource:    res.Name,
		Package:     pkg.ID,
	}
	if _, err := m.sink.Put(ctx, obj, op.Stamp()); err != nil {
		metrics.Failures.WithLabelValues("store").Inc()
		return err
	}
	metrics.Uploads.WithLabelValues("resource").Inc()

	res.Upload = nil
	res.URLType = protocol.LocationRemote
	res.URL = m.cfg.S3.URLPrefix + key
	op.Uploaded = true

	m.log.Info("Resource uploaded", "resource", res.Name, "package", pkg.Name, "key", key, "bytes", len(data))
	return nil
}

// UploadResourceZip {package}/{resource}.zip：元数据 + 该资源 (不可归档时只有元数据)
func (m *Mirror) UploadResourceZip(ctx context.Context, op *Operation, res *protocol.Resource) error {
	pkg, text, err := m.packageManifest(ctx, res.PackageID)
	if err != nil {
		return err
	}

	a, err := m.builder.ResourceArchive(ctx, pkg, res, text)
	if err != nil {
		metrics.Failures.WithLabelValues("archive").Inc()
		return err
	}
	return m.storeArchive(ctx, op, "resource_zip", naming.ResourceZipKey(pkg.Name, res), a, res.Name, pkg.ID)
}

// UploadPackageZip {package}/{package}.zip：元数据 + 所有可归档的资源。
// 全部资源都是 API 时没有可打包的内容，直接返回。
func (m *Mirror) UploadPackageZip(ctx context.Context, op *Operation, packageID string) error {
	pkg, text, err := m.packageManifest(ctx, packageID)
	if err != nil {
		return err
	}

	if filter.AllAPI(pkg.Resources) {
		m.log.Info("Package only has API resources, skipping zip", "package", pkg.Name)
		op.PackageArchived = true
		return nil
	}

	a, err := m.builder.PackageArchive(ctx, pkg, text)
	if err != nil {
		metrics.Failures.WithLabelValues("archive").Inc()
		return err
	}
	if err := m.storeArchive(ctx, op, "package_zip", naming.PackageZipKey(pkg.Name), a, "", pkg.ID); err != nil {
		return err
	}
	op.PackageArchived = true
	return nil
}

// packageManifest 数据集 + 渲染好的元数据文本
func (m *Mirror) packageManifest(ctx context.Context, packageID string) (*protocol.Package, []byte, error) {
	pkg, err := m.host.ShowPackage(ctx, packageID)
	if err != nil {
		metrics.Failures.WithLabelValues("host").Inc()
		return nil, nil, err
	}
	doc, err := m.host.ShowMetadata(ctx, pkg.ID)
	if err != nil {
		metrics.Failures.WithLabelValues("host").Inc()
		return nil, nil, err
	}

	title := pkg.Title
	if title == "" {
		title = pkg.Name
	}
	return pkg, manifest.Generate(title, doc), nil
}

func (m *Mirror) storeArchive(ctx context.Context, op *Operation, kind, key string, a *archive.Archive, resource, packageID string) error {
	metrics.ArchiveBytes.WithLabelValues(kind).Observe(float64(len(a.Data)))

	obj := storage.Object{
		Key:         key,
		Data:        a.Data,
		ContentType: archive.ContentType,
		Resource:    resource,
		Package:     packageID,
	}
	if _, err := m.sink.Put(ctx, obj, op.Stamp()); err != nil {
		metrics.Failures.WithLabelValues("store").Inc()
		return err
	}
	metrics.Uploads.WithLabelValues(kind).Inc()

	m.log.Info("Zip uploaded", "key", key, "entries", len(a.Entries), "bytes", len(a.Data))
	return nil
}
