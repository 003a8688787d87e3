// Package filter decides which resources take part in object-store mirroring and zip building.
package filter

import (
	"mime"
	"sort"
	"strings"

	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"
)

// APIFormat 实时 API / 服务引用，没有可下载的字节内容，永远不进 zip
const APIFormat = "api"

// 标准库内置表不含常见数据格式，这里补齐，避免结果依赖宿主机的 /etc/mime.types
var dataTypes = map[string]string{
	".csv":     "text/csv",
	".tsv":     "text/tab-separated-values",
	".txt":     "text/plain; charset=utf-8",
	".xls":     "application/vnd.ms-excel",
	".xlsx":    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":     "application/zip",
	".geojson": "application/geo+json",
	".kml":     "application/vnd.google-earth.kml+xml",
	".kmz":     "application/vnd.google-earth.kmz",
	".doc":     "application/msword",
	".docx":    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func init() {
	for ext, ct := range dataTypes {
		_ = mime.AddExtensionType(ext, ct)
	}
}

// Policy 格式黑名单 (大小写不敏感)
type Policy struct {
	blacklist map[string]struct{}
}

// NewPolicy 解析以空白分隔的格式列表，如 "api wms  XLSX"
func NewPolicy(list string) *Policy {
	p := &Policy{blacklist: make(map[string]struct{})}
	for _, token := range strings.Fields(list) {
		p.blacklist[normalize(token)] = struct{}{}
	}
	return p
}

// FormatToken 先取声明的格式，为空时取 URL 的扩展名
func FormatToken(res *protocol.Resource) string {
	if f := normalize(res.Format); f != "" {
		return f
	}
	return naming.URLExtension(res.URL)
}

// IsBlacklisted 资源格式在黑名单内：不上传对象存储，也不进 zip
func (p *Policy) IsBlacklisted(res *protocol.Resource) bool {
	if p == nil {
		return false
	}
	_, ok := p.blacklist[FormatToken(res)]
	return ok
}

// IsAPI 资源是否为 API 引用
func IsAPI(res *protocol.Resource) bool {
	return FormatToken(res) == APIFormat
}

// Archivable 能否作为 zip 成员
func (p *Policy) Archivable(res *protocol.Resource) bool {
	return !IsAPI(res) && !p.IsBlacklisted(res)
}

// Members 过滤出可以进 zip 的资源，保持原顺序
func (p *Policy) Members(resources []*protocol.Resource) []*protocol.Resource {
	out := make([]*protocol.Resource, 0, len(resources))
	for _, r := range resources {
		if p.Archivable(r) {
			out = append(out, r)
		}
	}
	return out
}

// AllAPI 数据集非空且所有资源都是 API 引用
func AllAPI(resources []*protocol.Resource) bool {
	if len(resources) == 0 {
		return false
	}
	for _, r := range resources {
		if !IsAPI(r) {
			return false
		}
	}
	return true
}

// Formats 黑名单内容 (调试输出用)
func (p *Policy) Formats() []string {
	out := make([]string, 0, len(p.blacklist))
	for f := range p.blacklist {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// IsDownloadableURL URL 的扩展名对应一个已知且不是 text/html 的 MIME 类型
func IsDownloadableURL(url string) bool {
	ext := naming.URLExtension(url)
	if ext == "" {
		return false
	}
	ct := mime.TypeByExtension("." + ext)
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType != "text/html"
}

// ContentType 根据扩展名猜测 Content-Type
func ContentType(res *protocol.Resource) string {
	if ext := naming.Extension(res); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

func normalize(token string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(token)), ".")
}
