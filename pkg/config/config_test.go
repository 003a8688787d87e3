package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"s3-resources/pkg/config"
	"s3-resources/pkg/e"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "s3-resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
s3:
  bucket_name: open-data
  url_prefix: https://open-data.s3.amazonaws.com/
  region: ap-southeast-1
upload:
  filetype_blacklist: "api wms"
  archive_enabled: true
`)

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "open-data", c.S3.BucketName)
	assert.Equal(t, "ap-southeast-1", c.S3.Region)
	assert.Equal(t, "s3.amazonaws.com", c.S3.Endpoint)
	assert.True(t, c.S3.UseSSL)
	assert.False(t, c.S3.HasStaticCredentials())
	assert.Equal(t, "api wms", c.Upload.FiletypeBlacklist)
	assert.True(t, c.Upload.ArchiveEnabled)
	assert.False(t, c.Upload.KeyTimestamp)
	assert.Equal(t, 30*time.Second, c.Upload.FetchTimeout)
	assert.Equal(t, "s3", c.Storage.Type)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
s3:
  bucket_name: from-file
  url_prefix: https://example/
`)
	t.Setenv("S3_RESOURCES_S3_BUCKET_NAME", "from-env")
	t.Setenv("S3_RESOURCES_S3_ACCESS_KEY_ID", "AKIA")
	t.Setenv("S3_RESOURCES_S3_SECRET_ACCESS_KEY", "secret")

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.S3.BucketName)
	assert.True(t, c.S3.HasStaticCredentials())
}

func TestMissingRequiredOptions(t *testing.T) {
	path := writeConfig(t, `
s3:
  region: ap-southeast-1
`)
	_, err := config.Load(viper.New(), path)
	require.Error(t, err)
	assert.True(t, e.IsConfig(err))
	assert.Contains(t, err.Error(), "s3.bucket_name")
	assert.Contains(t, err.Error(), "s3.url_prefix")
}

func TestValidate(t *testing.T) {
	base := func() *config.MirrorConfig {
		return &config.MirrorConfig{
			S3:      config.S3Config{BucketName: "b", URLPrefix: "https://b/"},
			Storage: config.StorageConfig{Type: "s3"},
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.S3.AccessKeyID = "only-half"
	assert.True(t, e.IsConfig(c.Validate()))

	c = base()
	c.Storage.Type = "ftp"
	assert.True(t, e.IsConfig(c.Validate()))

	c = base()
	c.Storage.Type = "local"
	assert.True(t, e.IsConfig(c.Validate()), "local store needs local_dir")
	c.Storage.LocalDir = t.TempDir()
	c.S3.BucketName = ""
	assert.NoError(t, c.Validate())
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, e.IsConfig(err))
}
