// Package naming derives URL-safe slugs and object-store keys for packages and resources.
package naming

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedDash  = regexp.MustCompile(`-{2,}`)
	extensionChar = regexp.MustCompile(`^[a-z0-9]{1,16}$`)
)

// Slugify 生成小写 ASCII、以连字符分隔的 slug。对已是 slug 的输入为恒等变换。
func Slugify(name string) string {
	s := slug.Make(name)
	s = strings.ToLower(strings.ReplaceAll(s, "_", "-"))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = repeatedDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsSlug 判断字符串是否只包含小写字母、数字、连字符
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
