package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TimeoutMiddleware 接口超时控制。
// 本地文件下载是流式的，钩子一旦开始上传必须执行完，二者都不限时
func TimeoutMiddleware(timeout time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		timeoutHandler := http.TimeoutHandler(next, timeout, `{"code": 504, "msg": "request timeout"}`)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// 白名单：下载、钩子
			if strings.HasPrefix(path, "/dataset/") && strings.HasSuffix(path, "/download") ||
				strings.HasPrefix(path, "/api/hooks/") {
				next.ServeHTTP(w, r)
				return
			}

			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered", "path", path, "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			timeoutHandler.ServeHTTP(w, r)
		})
	}
}
