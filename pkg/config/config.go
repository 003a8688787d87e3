package config

import (
	"strings"
	"time"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// ================= Mirror Config =================

type MirrorConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	S3      S3Config      `mapstructure:"s3"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

type ServerConfig struct {
	Port       string        `mapstructure:"port"`
	DBPath     string        `mapstructure:"db_path"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// S3Config AK/SK/Region 均可为空，为空时走默认凭证链 (环境变量 / ~/.aws/credentials / IAM)
type S3Config struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	URLPrefix       string `mapstructure:"url_prefix"` // 拼接公开下载地址
}

type UploadConfig struct {
	FiletypeBlacklist string        `mapstructure:"filetype_blacklist"` // 空格分隔
	ArchiveEnabled    bool          `mapstructure:"archive_enabled"`    // 额外写一份 archive/ 带时间戳的副本
	KeyTimestamp      bool          `mapstructure:"key_timestamp"`      // 主 key 是否带时间戳
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`       // "s3" or "local"
	LocalDir  string `mapstructure:"local_dir"`  // local 模式下对象存储的根目录
	UploadDir string `mapstructure:"upload_dir"` // 宿主本地上传目录
}

type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

type AuthConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// HasStaticCredentials 是否显式配置了 AK/SK
func (c S3Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Validate 在流水线启动前检查必需配置
func (c *MirrorConfig) Validate() error {
	var missing []string

	if c.Storage.Type != "local" && c.S3.BucketName == "" {
		missing = append(missing, "s3.bucket_name")
	}
	if c.S3.URLPrefix == "" {
		missing = append(missing, "s3.url_prefix")
	}
	// 只配了一半的凭证视为配置错误，而不是静默回退到默认凭证链
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		missing = append(missing, "s3.access_key_id/s3.secret_access_key")
	}
	if c.Storage.Type == "local" && c.Storage.LocalDir == "" {
		missing = append(missing, "storage.local_dir")
	}

	if len(missing) > 0 {
		return e.New(code.ConfigError, "required S3 config options missing: "+strings.Join(missing, ", "), nil)
	}

	switch c.Storage.Type {
	case "s3", "local":
	default:
		return e.New(code.ConfigError, "storage.type must be one of: s3, local", nil)
	}
	return nil
}
