package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blobarena/config"
	"blobarena/server"
)

// BlobArena 入口：加载配置，启动 HTTP + WebSocket 服务，并初始化竞技场管理器
func main() {
	var (
		envFile string
		addr    string
	)
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file with ARENA_* settings")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides ARENA_ADDR, e.g. :8080")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	// zap 日志写入文件（lumberjack 滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	arenas := server.NewArenaManager(ctx, cfg.Game, server.Limits{
		MaxArenas:   cfg.MaxArenas,
		IdleTimeout: cfg.ArenaIdleTimeout,
	}, server.Log)
	// 默认竞技场常驻，便于快速试跑
	if _, err := arenas.Pin(cfg.DefaultRoom); err != nil {
		server.Log.Errorw("default arena", "err", err)
		os.Exit(1)
	}

	s := &server.Server{
		Arenas:       arenas,
		DefaultRoom:  cfg.DefaultRoom,
		DefaultCodec: cfg.DefaultCodec,
		SendBuffer:   cfg.ClientSendBuffer,
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewRouter(s, cfg.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		server.Log.Infof("BlobArena listening on %s; open http://localhost%v/", cfg.Addr, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Errorw("listen failed", "err", err)
			stop()
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	arenas.Shutdown()
}
