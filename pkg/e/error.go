package e

import (
	"errors"
	"fmt"

	"s3-resources/pkg/code"
)

// CodeError 包含错误码的自定义错误
type CodeError struct {
	Code int
	Msg  string
	Raw  error // 原始错误，用于日志记录
}

func (e *CodeError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Raw)
	}
	return e.Msg
}

func (e *CodeError) Unwrap() error {
	return e.Raw
}

// New 创建一个新的业务错误
func New(code int, msg string, raw error) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
		Raw:  raw,
	}
}

// Newf 使用默认信息 + 格式化后缀
func Newf(c int, raw error, format string, args ...any) *CodeError {
	return New(c, fmt.Sprintf(format, args...), raw)
}

// CodeOf 返回错误链上第一个 CodeError 的错误码，没有则为 ServerError
func CodeOf(err error) int {
	if err == nil {
		return code.Success
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return code.ServerError
}

// IsCode 判断错误链上是否有指定错误码
func IsCode(err error, c int) bool {
	var ce *CodeError
	for err != nil {
		if !errors.As(err, &ce) {
			return false
		}
		if ce.Code == c {
			return true
		}
		err = ce.Raw
	}
	return false
}

// IsNotFound FetchError 与 NotFound 同等对待
func IsNotFound(err error) bool {
	return IsCode(err, code.NotFound) || IsCode(err, code.FetchError)
}

func IsNotAuthorized(err error) bool {
	return IsCode(err, code.NotAuthorized)
}

func IsConfig(err error) bool {
	return IsCode(err, code.ConfigError)
}

func IsStorage(err error) bool {
	return IsCode(err, code.StorageError)
}
