package game

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Engine 单写者 Tick 引擎：仓库只由调用 Step 的协程修改
type Engine struct {
	cfg       Config
	published atomic.Pointer[Config]

	store  *Store
	intake *intake
	food   *FoodManager
	rng    *rand.Rand
	log    *zap.SugaredLogger
	tick   uint64

	// 帧内状态，每个 Tick 重置
	events    []Event
	notices   []Notice
	eatenFood map[uint64]struct{}
	removed   map[PlayerID]PlayerID // 被吃者 -> 吃者
	victims   []PlayerID            // 被吃顺序
	stats     TickStats
}

// Option 引擎可选项
type Option func(*Engine)

// WithRand 注入随机源（测试用固定种子）
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger 注入日志
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine 创建引擎并在启动时铺满食物
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		store:     NewStore(),
		intake:    newIntake(cfg.IntakeCapacity),
		log:       zap.NewNop().Sugar(),
		eatenFood: make(map[uint64]struct{}),
		removed:   make(map[PlayerID]PlayerID),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.food = NewFoodManager(cfg, e.rng)
	e.food.TopUp(e.store, cfg.FoodCount)
	e.setConfig(cfg)
	return e
}

// Config 当前生效的配置，可在任意协程读取
func (e *Engine) Config() Config {
	return *e.published.Load()
}

func (e *Engine) setConfig(cfg Config) {
	e.cfg = cfg
	c := cfg
	e.published.Store(&c)
}

// Submit 非阻塞提交命令，满则返回 ErrIntakeFull
func (e *Engine) Submit(cmd Command) error {
	return e.intake.push(cmd)
}

// SubmitWait 阻塞提交，用于不能丢弃的命令（如离开）
func (e *Engine) SubmitWait(ctx context.Context, cmd Command) error {
	return e.intake.pushWait(ctx, cmd)
}

// Step 推进一个 Tick：命令 → 移动 → 吃食物 → 吃玩家 → 移除 → 补食物 → 快照
func (e *Engine) Step() Frame {
	e.beginTick()
	e.applyCommands()
	e.moveAll()
	e.eatFood()
	e.eatPlayers()
	e.applyRemovals()
	e.repopulate()
	return Frame{
		Tick:    e.tick,
		State:   e.store.Snapshot(),
		Events:  e.events,
		Notices: e.notices,
		Stats:   e.stats,
	}
}

func (e *Engine) beginTick() {
	e.tick++
	e.events = nil
	e.notices = nil
	e.victims = nil
	e.stats = TickStats{}
	clear(e.eatenFood)
	clear(e.removed)
}

func (e *Engine) applyCommands() {
	cmds := e.intake.drain()
	for _, cmd := range cmds {
		cmd.apply(e)
	}
	e.stats.Commands = len(cmds)
}

func (e *Engine) moveAll() {
	e.store.ForEachPlayer(func(p *Player) {
		dx, dy := direction(p.TargetX, p.TargetY)
		speed := e.cfg.Speed(p.Size)
		p.X, p.Y = e.cfg.ClampPosition(p.X+dx*speed, p.Y+dy*speed, p.Size)
	})
}

// eatFood 按加入顺序，先到先得；半径取本阶段开始时的值
func (e *Engine) eatFood() {
	e.store.ForEachPlayer(func(p *Player) {
		radius := p.Size / 2
		e.store.ForEachFood(func(f Pellet) {
			if _, taken := e.eatenFood[f.ID]; taken {
				return
			}
			if Distance(p.X, p.Y, f.X, f.Y) < radius-f.Size/FoodOverlapDivisor {
				p.Size += f.Size * FoodGrowthFactor
				e.eatenFood[f.ID] = struct{}{}
			}
		})
	})
	e.stats.PelletsEaten = len(e.eatenFood)
}

// eatPlayers 对本阶段开始时的存活列表做 i<j 两两判定，吃掉后立即增长
func (e *Engine) eatPlayers() {
	ids := e.store.PlayerIDs()
	for i := 0; i < len(ids); i++ {
		if e.isRemoved(ids[i]) {
			continue
		}
		a, _ := e.store.Player(ids[i])
		for j := i + 1; j < len(ids); j++ {
			if e.isRemoved(ids[j]) {
				continue
			}
			b, _ := e.store.Player(ids[j])
			if e.consumes(a, b) {
				a.Size += b.Size
				e.markRemoved(b.ID, a.ID)
			} else if e.consumes(b, a) {
				b.Size += a.Size
				e.markRemoved(a.ID, b.ID)
				break
			}
		}
	}
}

// consumes 捕食者必须足够大且几乎完全覆盖对方
func (e *Engine) consumes(eater, prey *Player) bool {
	d := Distance(eater.X, eater.Y, prey.X, prey.Y)
	return d < eater.Size/2-prey.Size/2*DefenderRadiusMargin && eater.Size > prey.Size*e.cfg.EatRatio
}

func (e *Engine) isRemoved(id PlayerID) bool {
	_, ok := e.removed[id]
	return ok
}

func (e *Engine) markRemoved(prey, eater PlayerID) {
	e.removed[prey] = eater
	e.victims = append(e.victims, prey)
}

func (e *Engine) applyRemovals() {
	for _, id := range e.victims {
		if _, ok := e.store.RemovePlayer(id); !ok {
			continue
		}
		eater := e.removed[id]
		e.events = append(e.events, Event{Kind: EventEaten, PlayerID: id, EaterID: eater})
		e.notices = append(e.notices, Notice{Kind: NoticeGameOver, Session: id, Message: GameOverMessage})
		e.stats.PlayersEaten++
		e.log.Debugw("player eaten", "eaten", id, "eater", eater, "tick", e.tick)
	}
	// 增长可能让贴边玩家越界，快照前重新裁剪
	e.store.ForEachPlayer(func(p *Player) {
		p.X, p.Y = e.cfg.ClampPosition(p.X, p.Y, p.Size)
	})
}

func (e *Engine) repopulate() {
	e.store.RemoveFood(e.eatenFood)
	e.food.TopUp(e.store, e.cfg.FoodCount)
}
