package server

import (
	"sync/atomic"

	"blobarena/game"
)

// ArenaMetrics 记录竞技场运行期的关键指标（用于监控与调试）
type ArenaMetrics struct {
	TickCount        int64 // 统计的 Tick 次数
	TotalTickNs      int64 // Tick 累计耗时（纳秒）
	CommandsApplied  int64 // Tick 中实际应用的命令数
	CommandsDropped  int64 // 因入站通道满被丢弃的命令数
	DecodeErrors     int64 // 无法解析的入站消息数
	Joins            int64
	Leaves           int64
	PlayersEaten     int64
	PelletsEaten     int64
	MessagesSent     int64 // 入队成功的出站消息数
	MessagesDropped  int64 // 因客户端发送队列满被丢弃的出站消息数
	LastTick         uint64
	ConnectedClients int64
}

func (m *ArenaMetrics) IncCommandsDropped()  { atomic.AddInt64(&m.CommandsDropped, 1) }
func (m *ArenaMetrics) IncDecodeErrors()     { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *ArenaMetrics) IncMessagesSent()     { atomic.AddInt64(&m.MessagesSent, 1) }
func (m *ArenaMetrics) IncMessagesDropped()  { atomic.AddInt64(&m.MessagesDropped, 1) }
func (m *ArenaMetrics) AddClients(delta int) { atomic.AddInt64(&m.ConnectedClients, int64(delta)) }

// Tick 最近完成的 Tick 序号
func (m *ArenaMetrics) Tick() uint64 { return atomic.LoadUint64(&m.LastTick) }

// AddFrame 累计一个 Tick 的结果与耗时
func (m *ArenaMetrics) AddFrame(f game.Frame, ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	atomic.StoreUint64(&m.LastTick, f.Tick)
	atomic.AddInt64(&m.CommandsApplied, int64(f.Stats.Commands))
	atomic.AddInt64(&m.PlayersEaten, int64(f.Stats.PlayersEaten))
	atomic.AddInt64(&m.PelletsEaten, int64(f.Stats.PelletsEaten))
	for _, ev := range f.Events {
		switch ev.Kind {
		case game.EventJoined:
			atomic.AddInt64(&m.Joins, 1)
		case game.EventLeft:
			atomic.AddInt64(&m.Leaves, 1)
		}
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *ArenaMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"last_tick":         atomic.LoadUint64(&m.LastTick),
		"avg_tick_ms":       avgMs,
		"commands_applied":  atomic.LoadInt64(&m.CommandsApplied),
		"commands_dropped":  atomic.LoadInt64(&m.CommandsDropped),
		"decode_errors":     atomic.LoadInt64(&m.DecodeErrors),
		"joins":             atomic.LoadInt64(&m.Joins),
		"leaves":            atomic.LoadInt64(&m.Leaves),
		"players_eaten":     atomic.LoadInt64(&m.PlayersEaten),
		"pellets_eaten":     atomic.LoadInt64(&m.PelletsEaten),
		"messages_sent":     atomic.LoadInt64(&m.MessagesSent),
		"messages_dropped":  atomic.LoadInt64(&m.MessagesDropped),
		"connected_clients": atomic.LoadInt64(&m.ConnectedClients),
	}
}
