package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// EnvPrefix 环境变量前缀，如 S3_RESOURCES_S3_BUCKET_NAME
const EnvPrefix = "S3_RESOURCES"

// SetDefaults 兜底默认值 (命令行通过 pflag 绑定的 key 不在这里设)
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.db_path", "s3_resources.db")
	v.SetDefault("server.api_timeout", "60s")

	// 没有默认值的 key 也要注册，否则 Unmarshal 读不到环境变量
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.url_prefix", "")
	v.SetDefault("s3.endpoint", "s3.amazonaws.com")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("upload.filetype_blacklist", "")
	v.SetDefault("upload.archive_enabled", false)
	v.SetDefault("upload.key_timestamp", false)
	v.SetDefault("upload.fetch_timeout", "30s")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.local_dir", "")
	v.SetDefault("storage.upload_dir", "/var/lib/ckan/default")
	v.SetDefault("auth.secret_key", "")

	v.SetDefault("log.level", "info")
}

// LoadMirrorConfig 加载配置并校验；校验失败返回 ConfigError
func LoadMirrorConfig(cfgFile string) (*MirrorConfig, error) {
	// 1. 全局 Viper 实例 (包含 main.go 里绑定的命令行参数)
	return Load(viper.GetViper(), cfgFile)
}

// Load 供测试传入独立的 viper 实例
func Load(v *viper.Viper, cfgFile string) (*MirrorConfig, error) {
	// 2. 兜底默认值
	SetDefaults(v)

	// 3. 绑定环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 读取配置文件 (如果有)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, e.New(code.ConfigError, "read config file failed", err)
			}
			return nil, e.New(code.ConfigError, fmt.Sprintf("config file not found: %s", cfgFile), err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("s3-resources")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, e.New(code.ConfigError, "read config file failed", err)
			}
		}
	}

	var c MirrorConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, e.New(code.ConfigError, "decode config failed", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
