package pipeline

import (
	"context"
	"fmt"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// BeginResourceUpdate before_create / before_update：上传资源本身。
// 同一个 Operation 随后交给 CommitResourceUpdate。
func (m *Mirror) BeginResourceUpdate(ctx context.Context, op *Operation) error {
	if op.Resource == nil {
		return e.New(code.ParamError, "operation has no resource", nil)
	}
	return m.UploadResource(ctx, op, op.Resource)
}

// CommitResourceUpdate after_create / after_update：资源 zip，然后数据集 zip
func (m *Mirror) CommitResourceUpdate(ctx context.Context, op *Operation) error {
	if op.Resource == nil {
		return e.New(code.ParamError, "operation has no resource", nil)
	}
	if err := m.UploadResourceZip(ctx, op, op.Resource); err != nil {
		return err
	}
	return m.UploadPackageZip(ctx, op, op.packageID())
}

// OnPackageUpdate package.after_update：同一操作内已重建过数据集 zip 时跳过
func (m *Mirror) OnPackageUpdate(ctx context.Context, op *Operation) error {
	if op.PackageArchived {
		m.log.Debug("Package zip already rebuilt in this operation", "package", op.packageID())
		return nil
	}
	id := op.packageID()
	if id == "" {
		return e.New(code.ParamError, "operation has no package", nil)
	}
	return m.UploadPackageZip(ctx, op, id)
}

// Handlers 注册全部生命周期事件
func (m *Mirror) Handlers() *Dispatcher {
	d := NewDispatcher()

	before := func(ctx context.Context, op *Operation) error {
		if err := m.BeginResourceUpdate(ctx, op); err != nil {
			return err
		}
		if !op.Uploaded {
			return nil
		}
		// 位置字段被改写，写回宿主
		if err := m.host.UpdateResource(ctx, op.Resource); err != nil {
			return fmt.Errorf("save resource %s: %w", op.Resource.ID, err)
		}
		return nil
	}

	d.Register(EventResourceBeforeCreate, before)
	d.Register(EventResourceBeforeUpdate, before)
	d.Register(EventResourceAfterCreate, m.CommitResourceUpdate)
	d.Register(EventResourceAfterUpdate, m.CommitResourceUpdate)
	d.Register(EventPackageAfterUpdate, m.OnPackageUpdate)
	return d
}
