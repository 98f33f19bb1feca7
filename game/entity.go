package game

import (
	"fmt"
	"math/rand"
)

// PlayerID 会话标识，由传输层分配，核心不生成
type PlayerID string

// Player 玩家实体（服务端权威状态）
type Player struct {
	ID      PlayerID
	Name    string
	X       float64
	Y       float64
	Size    float64 // 只增不减
	Color   string
	TargetX float64 // 最近一次移动意图，下一次 Tick 生效
	TargetY float64
}

// Pellet 静止的食物颗粒
type Pellet struct {
	ID    uint64
	X     float64
	Y     float64
	Size  float64
	Color string
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", rng.Intn(361))
}
