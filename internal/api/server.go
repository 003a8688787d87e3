package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"s3-resources/internal/api/middleware"
	"s3-resources/internal/catalog"
	"s3-resources/internal/metrics"
	"s3-resources/internal/pipeline"
	"s3-resources/pkg/config"
	"s3-resources/pkg/response"
	"s3-resources/pkg/storage"
	"s3-resources/pkg/utils"
)

// StartServer 组装依赖并监听，ctx 取消时优雅退出
func StartServer(ctx context.Context, cfg *config.MirrorConfig, log *slog.Logger) error {
	// 1. 配置检查先于一切
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. 宿主元数据
	db, err := catalog.OpenDB(cfg.Server.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()
	cat := catalog.New(db)

	// 3. 对象存储
	store, err := storage.NewObjectStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	// 4. 流水线
	resolver := storage.NewUploadResolver(cfg.Storage.UploadDir)
	mirror, err := pipeline.New(cfg, cat, store, resolver, utils.NewHTTPFetcher(cfg.Upload.FetchTimeout), log)
	if err != nil {
		return err
	}

	metrics.RegisterMetrics()
	h := NewServerHandler(cat, mirror, resolver, cfg.S3.URLPrefix, log)

	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: Chain(cfg, NewRouter(h), log),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		}
	}()

	log.Info("Mirror server running", "addr", cfg.Server.Port, "bucket", cfg.S3.BucketName, "storage", cfg.Storage.Type)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Chain 鉴权 + 超时
func Chain(cfg *config.MirrorConfig, mux http.Handler, log *slog.Logger) http.Handler {
	handler := middleware.AuthMiddleware(cfg.Auth.SecretKey)(mux)
	if cfg.Server.APITimeout > 0 {
		handler = middleware.TimeoutMiddleware(cfg.Server.APITimeout, log)(handler)
	}
	return handler
}

// NewRouter 注册所有路由
func NewRouter(h *ServerHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// --- 下载 ---
	mux.HandleFunc("GET /dataset/{id}/download", h.PackageDownload)
	mux.HandleFunc("GET /dataset/{id}/resource/{resource_id}/download", h.ResourceDownload)

	// --- 生命周期钩子 ---
	mux.HandleFunc("GET /api/hooks", h.ListHooks)
	mux.HandleFunc("POST /api/hooks/{event}", h.HandleHook)

	// --- 运维 ---
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, "ok")
	})
	return mux
}
