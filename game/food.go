package game

import "math/rand"

// FoodManager 维持食物数量，ID 单调递增，存活食物之间不会冲突
type FoodManager struct {
	width  float64
	height float64
	size   float64
	rng    *rand.Rand
	nextID uint64
}

// NewFoodManager 按世界配置创建
func NewFoodManager(cfg Config, rng *rand.Rand) *FoodManager {
	return &FoodManager{
		width:  cfg.MapWidth,
		height: cfg.MapHeight,
		size:   cfg.FoodSize,
		rng:    rng,
	}
}

// TopUp 补足到 target 颗，返回新生成的数量
func (m *FoodManager) TopUp(s *Store, target int) int {
	spawned := 0
	for s.FoodCount() < target {
		s.InsertFood(m.spawn())
		spawned++
	}
	return spawned
}

func (m *FoodManager) spawn() Pellet {
	m.nextID++
	return Pellet{
		ID:    m.nextID,
		X:     uniform(m.rng, m.size, m.width),
		Y:     uniform(m.rng, m.size, m.height),
		Size:  m.size,
		Color: randomColor(m.rng),
	}
}
