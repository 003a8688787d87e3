package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 把对象写到本地目录 (开发 / 测试用)
type LocalStore struct {
	BaseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if clean == "." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.BaseDir, clean), nil
}

func (l *LocalStore) PutObject(_ context.Context, key string, data []byte, _ string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}

	// 确保子目录存在
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	// 先写临时文件再 rename，覆盖是原子的
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".put-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}

func (l *LocalStore) DeleteObject(_ context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// SetPublicRead 本地模式下即所有人可读
func (l *LocalStore) SetPublicRead(_ context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	return os.Chmod(fullPath, 0644)
}

// GetObject 读取对象内容
func (l *LocalStore) GetObject(key string) ([]byte, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// ListKeys 列出所有对象 key (字典序)
func (l *LocalStore) ListKeys() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(l.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		relPath, err := filepath.Rel(l.BaseDir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(relPath))
		return nil
	})
	return keys, err
}
