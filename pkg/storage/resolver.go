package storage

import (
	"os"
	"path/filepath"
)

// PathResolver 资源 ID -> 本地文件路径
type PathResolver interface {
	PathFor(resourceID string) (string, bool)
}

// UploadResolver 宿主的上传目录布局: {dir}/resources/{id[0:3]}/{id[3:6]}/{id[6:]}
type UploadResolver struct {
	BaseDir string
}

func NewUploadResolver(baseDir string) *UploadResolver {
	return &UploadResolver{BaseDir: baseDir}
}

// Path 只计算路径，不检查文件是否存在
func (r *UploadResolver) Path(resourceID string) (string, bool) {
	if len(resourceID) < 7 || filepath.Base(resourceID) != resourceID {
		return "", false
	}
	return filepath.Join(r.BaseDir, "resources", resourceID[0:3], resourceID[3:6], resourceID[6:]), true
}

// PathFor 文件存在时返回路径
func (r *UploadResolver) PathFor(resourceID string) (string, bool) {
	p, ok := r.Path(resourceID)
	if !ok {
		return "", false
	}
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}
