package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"blobarena/game"
)

// ErrTooManyArenas 竞技场数量已达上限
var ErrTooManyArenas = errors.New("server: too many arenas")

// ArenaInfo 竞技场列表项
type ArenaInfo struct {
	ID      string `json:"id"`
	Clients int    `json:"clients"`
	Tick    uint64 `json:"tick"`
}

// Limits 竞技场数量与回收策略
type Limits struct {
	MaxArenas   int           // 0 表示不限
	IdleTimeout time.Duration // 无连接超过该时长即回收；0 表示不回收
}

// ArenaManager 管理多个竞技场的生命周期
type ArenaManager struct {
	mu     sync.RWMutex
	arenas map[string]*Arena
	pinned map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	cfg    game.Config
	limits Limits
	log    *zap.SugaredLogger
	opts   []game.Option
}

// NewArenaManager 所有竞技场共用同一份世界配置；parent 结束时全部停止
func NewArenaManager(parent context.Context, cfg game.Config, limits Limits, log *zap.SugaredLogger, opts ...game.Option) *ArenaManager {
	ctx, cancel := context.WithCancel(parent)
	m := &ArenaManager{
		arenas: make(map[string]*Arena),
		pinned: make(map[string]bool),
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		limits: limits,
		log:    log,
		opts:   opts,
	}
	if limits.IdleTimeout > 0 {
		go m.janitor()
	}
	return m
}

// GetOrCreateArena 获取或创建竞技场，并确保开始 Tick
func (m *ArenaManager) GetOrCreateArena(id string) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(id)
}

// Pin 获取或创建常驻竞技场，不参与空闲回收
func (m *ArenaManager) Pin(id string) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.getOrCreateLocked(id)
	if err != nil {
		return nil, err
	}
	m.pinned[id] = true
	return a, nil
}

// Attach 获取或创建竞技场并登记连接；与回收在同一把锁下，避免刚登记就被回收
func (m *ArenaManager) Attach(id string, c Client) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.getOrCreateLocked(id)
	if err != nil {
		return nil, err
	}
	a.Attach(c)
	return a, nil
}

func (m *ArenaManager) getOrCreateLocked(id string) (*Arena, error) {
	if a, ok := m.arenas[id]; ok {
		return a, nil
	}
	if m.limits.MaxArenas > 0 && len(m.arenas) >= m.limits.MaxArenas {
		return nil, ErrTooManyArenas
	}
	a := NewArena(m.ctx, id, m.cfg, m.log, m.opts...)
	m.arenas[id] = a
	a.StartTicker()
	m.log.Infow("arena created", "arena", id, "total", len(m.arenas))
	return a, nil
}

// Get 只查找，不创建
func (m *ArenaManager) Get(id string) (*Arena, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.arenas[id]
	return a, ok
}

// List 按 ID 排序的竞技场概况
func (m *ArenaManager) List() []ArenaInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ArenaInfo, 0, len(m.arenas))
	for id, a := range m.arenas {
		out = append(out, ArenaInfo{ID: id, Clients: a.NumClients(), Tick: a.metrics.Tick()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReapIdle 关闭在 now 时刻已空闲超过 IdleTimeout 的非常驻竞技场，返回关闭数量
func (m *ArenaManager) ReapIdle(now time.Time) int {
	if m.limits.IdleTimeout <= 0 {
		return 0
	}
	var idle []*Arena
	m.mu.Lock()
	for id, a := range m.arenas {
		if m.pinned[id] || a.idleFor(now) < m.limits.IdleTimeout {
			continue
		}
		delete(m.arenas, id)
		idle = append(idle, a)
	}
	m.mu.Unlock()

	for _, a := range idle {
		a.Close()
		m.log.Infow("idle arena removed", "arena", a.ID)
	}
	return len(idle)
}

func (m *ArenaManager) janitor() {
	interval := max(m.limits.IdleTimeout/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.ReapIdle(now)
		}
	}
}

// Shutdown 停止所有 Tick 循环并断开连接
func (m *ArenaManager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	arenas := m.arenas
	m.arenas = make(map[string]*Arena)
	m.mu.Unlock()
	for _, a := range arenas {
		a.Close()
	}
}
