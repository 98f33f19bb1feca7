package game

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

var (
	// ErrIntakeFull 入站通道已满，命令被丢弃
	ErrIntakeFull = errors.New("game: command intake full")
	// ErrInvalidTune 调参值超出允许范围
	ErrInvalidTune = errors.New("game: invalid tune")
)

// Command 入站命令，只在 Tick 开始时由 Tick 协程应用
type Command interface {
	apply(e *Engine)
}

// Join 会话加入；同一会话已有存活玩家时为 no-op
type Join struct {
	Session PlayerID
	Name    string // 已由 NewJoin 规范化，apply 原样使用
}

// Move 更新移动意图；玩家已不存在时为 no-op
type Move struct {
	Session PlayerID
	DX, DY  float64
}

// Leave 会话离开，幂等
type Leave struct {
	Session PlayerID
}

// Tune 运行时调参，nil 字段保持不变
type Tune struct {
	PlayerSpeedFactor *float64 `json:"playerSpeedFactor,omitempty"`
	EatRatio          *float64 `json:"eatRatio,omitempty"`
	FoodCount         *int     `json:"foodCount,omitempty"`
}

// NewJoin 在入站时统一做昵称默认值与截断
func NewJoin(session PlayerID, name string) Join {
	return Join{Session: session, Name: NormalizeName(name)}
}

// NewMove 非有限值按 0 处理（即“停止”）
func NewMove(session PlayerID, dx, dy float64) Move {
	return Move{Session: session, DX: finite(dx), DY: finite(dy)}
}

// NormalizeName 空名用默认值，超长截断到 MaxNameLen 个字符
func NormalizeName(name string) string {
	if name == "" {
		return DefaultName
	}
	r := []rune(name)
	if len(r) > MaxNameLen {
		return string(r[:MaxNameLen])
	}
	return name
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// intake 有界命令通道；多生产者，Tick 协程为唯一消费者
type intake struct {
	ch chan Command
}

func newIntake(capacity int) *intake {
	if capacity <= 0 {
		capacity = 1
	}
	return &intake{ch: make(chan Command, capacity)}
}

// push 非阻塞写入，满则返回 ErrIntakeFull
func (in *intake) push(cmd Command) error {
	select {
	case in.ch <- cmd:
		return nil
	default:
		return ErrIntakeFull
	}
}

// pushWait 阻塞写入直到成功或 ctx 结束
func (in *intake) pushWait(ctx context.Context, cmd Command) error {
	select {
	case in.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain 只取走调用时刻已排队的命令，之后到达的留给下一 Tick
func (in *intake) drain() []Command {
	n := len(in.ch)
	if n == 0 {
		return nil
	}
	cmds := make([]Command, 0, n)
	for i := 0; i < n; i++ {
		cmds = append(cmds, <-in.ch)
	}
	return cmds
}

func (c Join) apply(e *Engine) {
	if _, ok := e.store.Player(c.Session); ok {
		e.log.Debugw("duplicate join ignored", "session", c.Session)
		return
	}
	size := e.cfg.InitialPlayerSize
	p := Player{
		ID:    c.Session,
		Name:  c.Name,
		X:     uniform(e.rng, size, e.cfg.MapWidth),
		Y:     uniform(e.rng, size, e.cfg.MapHeight),
		Size:  size,
		Color: randomColor(e.rng),
	}
	e.store.InsertPlayer(p)
	e.events = append(e.events, Event{Kind: EventJoined, PlayerID: p.ID, Player: p})
	state := e.store.Snapshot()
	e.notices = append(e.notices, Notice{Kind: NoticeWelcome, Session: p.ID, State: &state})
	e.log.Infow("player joined", "session", p.ID, "name", p.Name, "x", p.X, "y", p.Y)
}

func (c Move) apply(e *Engine) {
	p, ok := e.store.Player(c.Session)
	if !ok {
		return
	}
	p.TargetX, p.TargetY = c.DX, c.DY
}

func (c Leave) apply(e *Engine) {
	if _, ok := e.store.RemovePlayer(c.Session); !ok {
		return
	}
	e.events = append(e.events, Event{Kind: EventLeft, PlayerID: c.Session})
	e.log.Infow("player left", "session", c.Session)
}

// Validate 汇总所有越界字段；apply 会忽略这些字段，这里让调用方能提前拒绝
func (c Tune) Validate() error {
	var errs error
	if c.PlayerSpeedFactor != nil && !(*c.PlayerSpeedFactor > 0) {
		errs = multierr.Append(errs, fmt.Errorf("%w: playerSpeedFactor must be > 0, got %g", ErrInvalidTune, *c.PlayerSpeedFactor))
	}
	if c.EatRatio != nil && !(*c.EatRatio > 1) {
		errs = multierr.Append(errs, fmt.Errorf("%w: eatRatio must be > 1, got %g", ErrInvalidTune, *c.EatRatio))
	}
	if c.FoodCount != nil && (*c.FoodCount < 0 || *c.FoodCount > MaxFoodCount) {
		errs = multierr.Append(errs, fmt.Errorf("%w: foodCount must be in [0, %d], got %d", ErrInvalidTune, MaxFoodCount, *c.FoodCount))
	}
	return errs
}

func (c Tune) apply(e *Engine) {
	cfg := e.cfg
	if c.PlayerSpeedFactor != nil && *c.PlayerSpeedFactor > 0 {
		cfg.PlayerSpeedFactor = *c.PlayerSpeedFactor
	}
	if c.EatRatio != nil && *c.EatRatio > 1 {
		cfg.EatRatio = *c.EatRatio
	}
	if c.FoodCount != nil && *c.FoodCount >= 0 && *c.FoodCount <= MaxFoodCount {
		cfg.FoodCount = *c.FoodCount
	}
	e.setConfig(cfg)
	e.log.Infow("config tuned",
		"playerSpeedFactor", cfg.PlayerSpeedFactor, "eatRatio", cfg.EatRatio, "foodCount", cfg.FoodCount)
}
