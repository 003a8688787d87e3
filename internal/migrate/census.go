package migrate

import (
	"encoding/json"
	"sort"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// Crash 一个迁移中断的数据集
type Crash struct {
	Package string `json:"package"`
	Error   string `json:"error"`
}

// Census 一次迁移的统计
type Census struct {
	Migrated           int      `json:"migrated"`
	KeyErrors          int      `json:"key_errors"`
	ValidationErrors   int      `json:"validation_errors"`
	OtherErrors        int      `json:"other_errors"`
	CrashedPackages    []Crash  `json:"crashed_packages"`
	Blacklisted        int      `json:"blacklisted"`
	PreviouslyMigrated int      `json:"previously_migrated"`
	Formats            []string `json:"formats"`

	blacklisted map[string]struct{}
	previous    map[string]struct{}
	formats     map[string]struct{}
}

func newCensus() *Census {
	return &Census{
		CrashedPackages: []Crash{},
		Formats:         []string{},
		blacklisted:     make(map[string]struct{}),
		previous:        make(map[string]struct{}),
		formats:         make(map[string]struct{}),
	}
}

// 同一资源在重试轮中只计一次
func (c *Census) markBlacklisted(id string) {
	c.blacklisted[id] = struct{}{}
	c.Blacklisted = len(c.blacklisted)
}

func (c *Census) markPrevious(id string) {
	c.previous[id] = struct{}{}
	c.PreviouslyMigrated = len(c.previous)
}

func (c *Census) addFormat(token string) {
	if token == "" {
		return
	}
	if _, ok := c.formats[token]; ok {
		return
	}
	c.formats[token] = struct{}{}
	c.Formats = append(c.Formats, token)
	sort.Strings(c.Formats)
}

// countError 按错误码归类
func (c *Census) countError(err error) string {
	switch {
	case e.IsCode(err, code.KeyError):
		c.KeyErrors++
		return "key_error"
	case e.IsCode(err, code.ValidationError):
		c.ValidationErrors++
		return "validation_error"
	default:
		c.OtherErrors++
		return "other_error"
	}
}

func (c *Census) JSON() []byte {
	data, _ := json.Marshal(c)
	return data
}
