package protocol

import "time"

// ==========================================
// 1. 资源 (Resource)
// ==========================================

// LocationKind 资源字节所在位置
type LocationKind string

const (
	LocationLocal  LocationKind = "upload" // 宿主本地上传目录
	LocationRemote LocationKind = "s3"     // 已镜像到对象存储
	LocationLink   LocationKind = ""       // 外部链接 (仅 URL)
)

// Resource 数据集中的一个文件条目
type Resource struct {
	ID           string       `json:"id"`
	PackageID    string       `json:"package_id"`
	Name         string       `json:"name"`
	Format       string       `json:"format"`   // 声明的格式，如 CSV / API
	URL          string       `json:"url"`      // 本地上传时为文件名，否则为完整 URL
	URLType      LocationKind `json:"url_type"` // upload / s3 / ""
	LastModified *time.Time   `json:"last_modified,omitempty"`
	Created      *time.Time   `json:"created,omitempty"`

	// Upload 正在上传中的文件内容 (仅在 before_create / before_update 阶段存在)
	Upload []byte `json:"-"`
}

// IsLocal 字节可以通过本地路径解析
func (r *Resource) IsLocal() bool {
	return r.URLType == LocationLocal
}

// Timestamp 优先 last_modified，其次 created，都没有则返回 false
func (r *Resource) Timestamp() (time.Time, bool) {
	if r.LastModified != nil && !r.LastModified.IsZero() {
		return *r.LastModified, true
	}
	if r.Created != nil && !r.Created.IsZero() {
		return *r.Created, true
	}
	return time.Time{}, false
}

// ==========================================
// 2. 数据集 (Package)
// ==========================================

// Package 数据集：若干资源 + 元数据
type Package struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"` // 唯一、URL 安全，作为存储 key 的根
	Title     string      `json:"title"`
	Resources []*Resource `json:"resources"`
}

// NumResources 资源个数
func (p *Package) NumResources() int {
	return len(p.Resources)
}
