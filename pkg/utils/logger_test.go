package utils_test

import (
	"bytes"
	"log/slog"
	"testing"

	"s3-resources/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, utils.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, utils.ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, utils.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, utils.ParseLevel(""))
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := utils.NewTextLogger(&buf, "warn")

	log.Info("Mirror server running", "addr", ":8080")
	log.Warn("Server shutdown failed", "error", "boom")

	out := buf.String()
	assert.NotContains(t, out, "Mirror server running")
	assert.Contains(t, out, `level=WARN msg="Server shutdown failed" error=boom`)
	// 纯文本 key=value，没有终端颜色
	assert.NotContains(t, out, "\x1b[")
}
