package game

// EventKind 广播事件类型
type EventKind int

const (
	EventJoined EventKind = iota
	EventLeft
	EventEaten
)

func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "joined"
	case EventLeft:
		return "left"
	case EventEaten:
		return "eaten"
	default:
		return "unknown"
	}
}

// Event 自上一 Tick 以来发生的离散事件
type Event struct {
	Kind     EventKind
	PlayerID PlayerID
	Player   Player   // 仅 EventJoined
	EaterID  PlayerID // 仅 EventEaten
}

// NoticeKind 只发给单个会话的通知类型
type NoticeKind int

const (
	NoticeWelcome  NoticeKind = iota // game_setup + current_state
	NoticeGameOver                   // game_over
)

// Notice 定向通知
type Notice struct {
	Kind    NoticeKind
	Session PlayerID
	State   *Snapshot // 仅 NoticeWelcome：加入时刻的世界快照
	Message string    // 仅 NoticeGameOver
}

// TickStats 单个 Tick 的计数，供指标使用
type TickStats struct {
	Commands     int
	PelletsEaten int
	PlayersEaten int
}

// Frame 一个 Tick 的全部输出
type Frame struct {
	Tick    uint64
	State   Snapshot
	Events  []Event
	Notices []Notice
	Stats   TickStats
}
