// Package migrate pushes every existing resource through the mirroring pipeline.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"s3-resources/internal/catalog"
	"s3-resources/internal/metrics"
	"s3-resources/internal/pipeline"
	"s3-resources/pkg/filter"
	"s3-resources/pkg/protocol"
)

// Recorder 保存迁移记录
type Recorder interface {
	RecordRun(ctx context.Context, run *catalog.Run) error
}

type Runner struct {
	mirror   *pipeline.Mirror
	hooks    *pipeline.Dispatcher
	recorder Recorder
	log      *slog.Logger

	// Force 已经在对象存储上的资源也重新上传
	Force bool
}

func NewRunner(m *pipeline.Mirror, recorder Recorder, log *slog.Logger) *Runner {
	return &Runner{mirror: m, hooks: m.Handlers(), recorder: recorder, log: log}
}

// Run 逐个数据集迁移，单个数据集失败不影响其他数据集；失败的数据集在最后重试一次
func (r *Runner) Run(ctx context.Context) (*Census, error) {
	started := time.Now()
	census := newCensus()

	names, err := r.mirror.Host().ListPackages(ctx)
	if err != nil {
		return nil, err
	}

	// 1. 第一轮
	var crashed []Crash
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return census, err
		}
		if err := r.migratePackage(ctx, census, name); err != nil {
			crashed = append(crashed, Crash{Package: name, Error: err.Error()})
		}
	}
	r.log.Info("Package crashes (1st round)", "count", len(crashed))

	// 2. 重试失败的数据集
	if len(crashed) > 0 {
		r.log.Info("Attempting to reupload the failed packages")
	}
	for _, c := range crashed {
		if err := ctx.Err(); err != nil {
			return census, err
		}
		if err := r.migratePackage(ctx, census, c.Package); err != nil {
			census.CrashedPackages = append(census.CrashedPackages, Crash{Package: c.Package, Error: err.Error()})
		}
	}

	r.log.Info("Migration finished",
		"migrated", census.Migrated,
		"key_errors", census.KeyErrors,
		"validation_errors", census.ValidationErrors,
		"other_errors", census.OtherErrors,
		"crashed_packages", len(census.CrashedPackages),
		"blacklisted", census.Blacklisted,
		"previously_migrated", census.PreviouslyMigrated,
		"formats", census.Formats,
	)
	for _, c := range census.CrashedPackages {
		r.log.Warn("Package crashed", "package", c.Package, "error", c.Error)
	}

	// 3. 记录
	if r.recorder != nil {
		run := &catalog.Run{
			StartedAt:  started,
			FinishedAt: time.Now(),
			Forced:     r.Force,
			Census:     census.JSON(),
		}
		if err := r.recorder.RecordRun(ctx, run); err != nil {
			return census, fmt.Errorf("record run: %w", err)
		}
		r.log.Info("Migration run recorded", "id", run.ID)
	}
	return census, nil
}

// migratePackage 第一个失败的资源中断整个数据集
func (r *Runner) migratePackage(ctx context.Context, census *Census, name string) error {
	r.log.Info("Starting package migration", "package", name)

	pkg, err := r.mirror.Host().ShowPackage(ctx, name)
	if err != nil {
		r.log.Error("Error when migrating package", "package", name, "error", err)
		census.countError(err)
		return err
	}

	for _, res := range pkg.Resources {
		census.addFormat(filter.FormatToken(res))

		if !r.Force && res.URLType == protocol.LocationRemote {
			r.log.Info("Resource is already on the object store, skipping", "resource", res.Name)
			census.markPrevious(res.ID)
			metrics.MigratedResources.WithLabelValues("previously_migrated").Inc()
			continue
		}

		if err := r.migrateResource(ctx, census, res); err != nil {
			outcome := census.countError(err)
			metrics.MigratedResources.WithLabelValues(outcome).Inc()
			r.log.Error("Error when migrating resource", "resource", res.Name, "package", name, "error", err)
			return err
		}
	}
	return nil
}

func (r *Runner) migrateResource(ctx context.Context, census *Census, res *protocol.Resource) error {
	op := r.mirror.NewOperation()
	op.Resource = res

	// 黑名单和 API 资源不上传，但 zip 仍然要反映数据集当前状态
	if !r.mirror.Policy().Archivable(res) {
		r.log.Info("Resource is blacklisted, only rebuilding zips", "resource", res.Name)
		census.markBlacklisted(res.ID)
		metrics.MigratedResources.WithLabelValues("blacklisted").Inc()
		if err := r.mirror.UploadResourceZip(ctx, op, res); err != nil {
			return err
		}
		return r.mirror.UploadPackageZip(ctx, op, res.PackageID)
	}

	r.log.Info("Attempting to migrate resource", "resource", res.Name)
	if err := r.hooks.Dispatch(ctx, pipeline.EventResourceBeforeUpdate, op); err != nil {
		return err
	}
	if err := r.hooks.Dispatch(ctx, pipeline.EventResourceAfterUpdate, op); err != nil {
		return err
	}
	census.Migrated++
	metrics.MigratedResources.WithLabelValues("migrated").Inc()
	r.log.Info("Successfully migrated resource", "resource", res.Name)
	return nil
}
