package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"blobarena/game"
)

// Server HTTP 入口共享的依赖
type Server struct {
	Arenas       *ArenaManager
	DefaultRoom  string
	DefaultCodec string
	SendBuffer   int // 每个连接的出站队列容量
}

func (s *Server) arenaFromQuery(w http.ResponseWriter, r *http.Request) (*Arena, string, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = s.DefaultRoom
	}
	a, ok := s.Arenas.Get(roomID)
	if !ok {
		http.Error(w, "arena not found", http.StatusNotFound)
		return nil, roomID, false
	}
	return a, roomID, true
}

// HandleAdminConfig 提供竞技场配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段，下一个 Tick 生效
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	arena, roomID, ok := s.arenaFromQuery(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, arena.Config())
	case http.MethodPost:
		var body game.Tune
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := body.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := arena.Tune(body); err != nil {
			if errors.Is(err, game.ErrIntakeFull) {
				http.Error(w, "arena busy, retry", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		Log.Infow("config update queued", "arena", roomID, "tune", body)
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定竞技场的运行指标
// GET /metrics?room=room-1
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	arena, roomID, ok := s.arenaFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    roomID,
		"tick":    arena.metrics.Tick(),
		"metrics": arena.metrics.Snapshot(),
	})
}

// HandleArenas 列出当前所有竞技场
func (s *Server) HandleArenas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Arenas.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
