package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SladkyCitron/slogcolor"
	"golang.org/x/term"
)

// ParseLevel "debug" / "info" / "warn" / "error"，默认 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger 终端下使用彩色输出，否则输出 key=value 文本到 stderr
func NewLogger(level string) *slog.Logger {
	lvl := ParseLevel(level)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return slog.New(slogcolor.NewHandler(os.Stdout, &slogcolor.Options{Level: lvl}))
	}
	return NewTextLogger(os.Stderr, level)
}

// NewTextLogger 服务进程和测试使用
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// DiscardLogger 丢弃所有输出
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
