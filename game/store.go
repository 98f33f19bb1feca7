package game

// Store 实体仓库：玩家与食物的唯一持有者，只允许 Tick 协程修改
type Store struct {
	players map[PlayerID]*Player
	order   []PlayerID // 加入顺序，决定各阶段的遍历顺序
	food    []Pellet
}

// Snapshot 某一时刻全部实体的值拷贝，可安全交给广播层
type Snapshot struct {
	Players []Player
	Food    []Pellet
}

// NewStore 创建空仓库
func NewStore() *Store {
	return &Store{players: make(map[PlayerID]*Player)}
}

// InsertPlayer 插入玩家；ID 已存在时返回 false 且不做修改
func (s *Store) InsertPlayer(p Player) bool {
	if _, ok := s.players[p.ID]; ok {
		return false
	}
	cp := p
	s.players[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return true
}

// RemovePlayer 移除玩家并返回其最后状态；不存在时为 no-op
func (s *Store) RemovePlayer(id PlayerID) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *p, true
}

// Player 返回可原地修改的玩家引用，引用不得跨 Tick 保留
func (s *Store) Player(id PlayerID) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// PlayerIDs 当前存活玩家 ID（加入顺序）的拷贝
func (s *Store) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *Store) PlayerCount() int { return len(s.players) }

// ForEachPlayer 按加入顺序遍历玩家
func (s *Store) ForEachPlayer(fn func(p *Player)) {
	for _, id := range s.order {
		fn(s.players[id])
	}
}

func (s *Store) InsertFood(f Pellet) {
	s.food = append(s.food, f)
}

// RemoveFood 删除给定 ID 的食物，返回实际删除数量
func (s *Store) RemoveFood(ids map[uint64]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	kept := s.food[:0]
	for _, f := range s.food {
		if _, gone := ids[f.ID]; !gone {
			kept = append(kept, f)
		}
	}
	removed := len(s.food) - len(kept)
	// 清掉尾部残留，避免旧值被误读
	for i := len(kept); i < len(s.food); i++ {
		s.food[i] = Pellet{}
	}
	s.food = kept
	return removed
}

// ForEachFood 按生成顺序遍历食物（值传递，食物不可变）
func (s *Store) ForEachFood(fn func(f Pellet)) {
	for _, f := range s.food {
		fn(f)
	}
}

func (s *Store) FoodCount() int { return len(s.food) }

// Snapshot 返回只读副本，下一次 Tick 修改仓库不会影响它
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Players: make([]Player, 0, len(s.order)),
		Food:    make([]Pellet, len(s.food)),
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, *s.players[id])
	}
	copy(snap.Food, s.food)
	return snap
}
