package game

import "time"

// 玩法常量（不随配置变化）
const (
	DefaultName = "Blob" // 未提供昵称时的默认值
	MaxNameLen  = 15     // 昵称最大字符数（按 rune 计）

	FoodGrowthFactor     = 0.2 // 吃一颗食物增长 FoodSize × 0.2
	FoodOverlapDivisor   = 3.0 // 需覆盖食物到 radius - foodSize/3 以内
	DefenderRadiusMargin = 0.8 // 被吃方半径折扣：必须大部分被包住

	GameOverMessage = "You were eaten!"

	// 食物上限：补食物和快照复制都在 Tick 协程里，数量过大会拖慢整个竞技场
	MaxFoodCount = 5000
)

// Config 世界尺寸与调参常量
type Config struct {
	MapWidth          float64 `json:"mapWidth"`
	MapHeight         float64 `json:"mapHeight"`
	InitialPlayerSize float64 `json:"initialPlayerSize"`
	FoodCount         int     `json:"foodCount"`
	FoodSize          float64 `json:"foodSize"`
	PlayerSpeedFactor float64 `json:"playerSpeedFactor"`
	EatRatio          float64 `json:"eatRatio"`
	TickRate          int     `json:"tickRate"`       // 每秒 Tick 数
	IntakeCapacity    int     `json:"intakeCapacity"` // 入站命令通道容量
}

// DefaultConfig 返回默认世界配置（2000×2000，30 TPS）
func DefaultConfig() Config {
	return Config{
		MapWidth:          2000,
		MapHeight:         2000,
		InitialPlayerSize: 20,
		FoodCount:         150,
		FoodSize:          8,
		PlayerSpeedFactor: 8,
		EatRatio:          1.1,
		TickRate:          30,
		IntakeCapacity:    1024,
	}
}

// TickInterval 单个 Tick 的时长
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.TickRate)
}
