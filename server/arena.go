package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"blobarena/game"
	"blobarena/protocol"
)

// Client 出站连接抽象，Arena 只通过它投递已编码的消息
type Client interface {
	ID() game.PlayerID
	Codec() protocol.Codec
	// Enqueue 非阻塞入队，队列满或已关闭时返回 false
	Enqueue(b []byte) bool
	Close() error
}

// Arena 竞技场：一个引擎 + 一组连接，引擎只在 Tick 协程中推进
type Arena struct {
	ID string

	engine  *game.Engine
	metrics *ArenaMetrics
	log     *zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.RWMutex
	clients   map[game.PlayerID]Client
	idleSince time.Time // 最后一个连接离开的时间；有连接时为零值

	startOnce sync.Once
	done      chan struct{}
}

// NewArena 创建竞技场；parent 结束或调用 Close 时 Tick 循环退出
func NewArena(parent context.Context, id string, cfg game.Config, log *zap.SugaredLogger, opts ...game.Option) *Arena {
	alog := log.With("arena", id)
	opts = append([]game.Option{game.WithLogger(alog)}, opts...)
	ctx, cancel := context.WithCancel(parent)
	return &Arena{
		ID:        id,
		engine:    game.NewEngine(cfg, opts...),
		metrics:   &ArenaMetrics{},
		log:       alog,
		ctx:       ctx,
		cancel:    cancel,
		clients:   make(map[game.PlayerID]Client),
		idleSince: time.Now(),
		done:      make(chan struct{}),
	}
}

// Attach 登记连接；玩家要等客户端发送 join 后才进入世界
func (a *Arena) Attach(c Client) {
	a.mu.Lock()
	a.clients[c.ID()] = c
	a.idleSince = time.Time{}
	a.mu.Unlock()
	a.metrics.AddClients(1)
}

// Detach 注销连接，并请求在 Tick 协程中移除该玩家
func (a *Arena) Detach(id game.PlayerID) {
	a.mu.Lock()
	_, ok := a.clients[id]
	delete(a.clients, id)
	if ok && len(a.clients) == 0 {
		a.idleSince = time.Now()
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	a.metrics.AddClients(-1)
	// 离开不能丢：阻塞写入，竞技场关闭时放弃
	if err := a.engine.SubmitWait(a.ctx, game.Leave{Session: id}); err != nil {
		a.log.Debugw("leave not delivered", "session", id, "err", err)
	}
}

// Submit 非阻塞提交命令，入站通道满时丢弃并计数
func (a *Arena) Submit(cmd game.Command) error {
	err := a.engine.Submit(cmd)
	if err != nil {
		a.metrics.IncCommandsDropped()
	}
	return err
}

// Tune 运行时调参，下一个 Tick 生效
func (a *Arena) Tune(t game.Tune) error {
	return a.Submit(t)
}

// Config 当前生效的世界配置
func (a *Arena) Config() game.Config {
	return a.engine.Config()
}

func (a *Arena) Metrics() *ArenaMetrics {
	return a.metrics
}

// NumClients 当前连接数
func (a *Arena) NumClients() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// Done Tick 循环退出后关闭
func (a *Arena) Done() <-chan struct{} {
	return a.done
}

// idleFor 没有任何连接的持续时长；有连接时为 0
func (a *Arena) idleFor(now time.Time) time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.clients) > 0 || a.idleSince.IsZero() {
		return 0
	}
	return now.Sub(a.idleSince)
}

// Close 停止 Tick 循环并断开所有连接；可在未启动时调用
func (a *Arena) Close() {
	a.cancel()
	// 未启动过则直接标记结束，之后的 StartTicker 不再生效
	a.startOnce.Do(func() { close(a.done) })
	<-a.done
	a.closeClients()
}

func (a *Arena) closeClients() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, c := range a.clients {
		_ = c.Close()
		delete(a.clients, id)
	}
}
