package naming

import (
	"net/url"
	"path"
	"strings"
	"time"

	"s3-resources/pkg/protocol"
)

// TimestampLayout 可排序的 UTC 时间，冒号替换为连字符 (部分客户端会把冒号当路径分隔)
const TimestampLayout = "2006-01-02T15-04-05Z"

// ArchivePrefix 归档副本的 key 前缀
const ArchivePrefix = "archive/"

// Stamp 格式化时间戳后缀，如 "-2024-03-01T08-00-00Z"
func Stamp(t time.Time) string {
	return "-" + t.UTC().Format(TimestampLayout)
}

// ResourceStamp 优先使用资源的 last_modified / created，否则使用 now
func ResourceStamp(res *protocol.Resource, now time.Time) string {
	if ts, ok := res.Timestamp(); ok {
		return Stamp(ts)
	}
	return Stamp(now)
}

// ResourceSlug 资源名的 slug，名字为空时退回到资源 ID
func ResourceSlug(res *protocol.Resource) string {
	if s := Slugify(res.Name); s != "" {
		return s
	}
	return Slugify(res.ID)
}

// Extension 推断扩展名: 先看 URL 路径，再看声明的格式；都推断不出时返回空串
func Extension(res *protocol.Resource) string {
	if ext := URLExtension(res.URL); ext != "" {
		return "." + ext
	}
	format := strings.ToLower(strings.TrimSpace(res.Format))
	if extensionChar.MatchString(format) {
		return "." + format
	}
	return ""
}

// URLExtension 返回 URL 路径的扩展名 (小写，不含点)
func URLExtension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if !extensionChar.MatchString(ext) {
		return ""
	}
	return ext
}

// CanonicalKey {package-slug}/{resource-slug}{optional-timestamp}{extension}
func CanonicalKey(packageName string, res *protocol.Resource, withStamp bool, now time.Time) string {
	var b strings.Builder
	b.WriteString(Slugify(packageName))
	b.WriteByte('/')
	b.WriteString(ResourceSlug(res))
	if withStamp {
		b.WriteString(ResourceStamp(res, now))
	}
	b.WriteString(Extension(res))
	return b.String()
}

// ArchivalKey 在 archive/ 前缀下、扩展名之前插入时间戳
func ArchivalKey(key string, stamp string) string {
	dir, file := path.Split(key)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return ArchivePrefix + dir + base + stamp + ext
}

// ResourceZipKey {package-slug}/{resource-slug}.zip
func ResourceZipKey(packageName string, res *protocol.Resource) string {
	return Slugify(packageName) + "/" + ResourceSlug(res) + ".zip"
}

// PackageZipKey {package-slug}/{package-slug}.zip
func PackageZipKey(packageName string) string {
	s := Slugify(packageName)
	return s + "/" + s + ".zip"
}

// ManifestName 压缩包内元数据文件名
func ManifestName(packageName string) string {
	return "metadata-" + Slugify(packageName) + ".txt"
}

// MemberName 压缩包内资源文件名
func MemberName(res *protocol.Resource) string {
	return ResourceSlug(res) + Extension(res)
}
