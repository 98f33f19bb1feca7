package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// NewRouter 组装 HTTP 路由：/ws 接入，管理与监控接口，其余走静态资源
func NewRouter(s *Server, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// WebSocket 需要 Hijack，不包访问日志
	r.Get("/ws", s.HandleWS)

	r.Group(func(r chi.Router) {
		r.Use(requestLogger)
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		r.Get("/metrics", s.HandleMetrics)
		r.Get("/arenas", s.HandleArenas)
		r.Get("/admin/config", s.HandleAdminConfig)
		r.Post("/admin/config", s.HandleAdminConfig)
		// 前后端分离：将 / 映射到 web 目录的静态资源
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		Log.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start),
			"req_id", middleware.GetReqID(r.Context()),
		)
	})
}
