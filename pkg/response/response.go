package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// Result 基础响应方法
func Result(w http.ResponseWriter, httpStatus int, bizCode int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	json.NewEncoder(w).Encode(Response{
		Code: bizCode,
		Msg:  msg,
		Data: data,
	})
}

// Success HTTP 200
func Success(w http.ResponseWriter, data any) {
	Result(w, http.StatusOK, code.Success, "success", data)
}

// Status 业务错误码 -> HTTP 状态码
func Status(bizCode int) int {
	switch bizCode {
	case code.Success:
		return http.StatusOK
	case code.NotFound, code.FetchError:
		return http.StatusNotFound
	case code.NotAuthorized, code.Unauthorized:
		return http.StatusUnauthorized
	case code.ParamError, code.KeyError, code.ValidationError:
		return http.StatusBadRequest
	case code.StorageError, code.NetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error 错误响应，HTTP 状态码由错误码决定
func Error(w http.ResponseWriter, err error) {
	// 1. 自定义业务错误
	var bizErr *e.CodeError
	if errors.As(err, &bizErr) {
		if bizErr.Raw != nil {
			slog.Warn("Request failed", "code", bizErr.Code, "msg", bizErr.Msg, "raw", bizErr.Raw)
		}
		Result(w, Status(bizErr.Code), bizErr.Code, bizErr.Msg, nil)
		return
	}

	// 2. 普通系统错误
	slog.Error("Request failed", "error", err)
	Result(w, http.StatusInternalServerError, code.ServerError, code.GetMsg(code.ServerError)+": "+err.Error(), nil)
}
