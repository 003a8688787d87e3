package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/response"
)

// AuthMiddleware /api/ 下的接口需要 Bearer Token；下载和 /metrics 公开
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. 放行非 /api 请求
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			// 2. 未配置密钥时拒绝所有钩子调用
			if secretKey == "" {
				response.Error(w, e.New(code.Unauthorized, "auth.secret_key is not configured", nil))
				return
			}

			// 3. 检查 Header，格式: "Bearer <token>"
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, e.New(code.Unauthorized, "missing bearer token", nil))
				return
			}
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secretKey)) != 1 {
				response.Error(w, e.New(code.Unauthorized, "invalid bearer token", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
