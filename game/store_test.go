package game

import (
	"math/rand"
	"testing"
)

func TestStoreKeepsJoinOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []PlayerID{"c", "a", "b"} {
		s.InsertPlayer(Player{ID: id, Size: 20})
	}
	s.RemovePlayer("a")
	s.InsertPlayer(Player{ID: "a", Size: 20})

	got := s.PlayerIDs()
	want := []PlayerID{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func TestStoreRejectsDuplicateInsert(t *testing.T) {
	s := NewStore()
	if !s.InsertPlayer(Player{ID: "a", Name: "one"}) {
		t.Fatalf("first insert rejected")
	}
	if s.InsertPlayer(Player{ID: "a", Name: "two"}) {
		t.Fatalf("duplicate insert accepted")
	}
	p, _ := s.Player("a")
	if p.Name != "one" || s.PlayerCount() != 1 {
		t.Fatalf("store mutated by duplicate insert: %+v", p)
	}
}

func TestStoreRemoveMissingIsNoop(t *testing.T) {
	s := NewStore()
	if _, ok := s.RemovePlayer("nobody"); ok {
		t.Fatalf("removing missing player reported success")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s := NewStore()
	s.InsertPlayer(Player{ID: "a", X: 1, Size: 20})
	s.InsertFood(Pellet{ID: 1, X: 5})

	snap := s.Snapshot()
	p, _ := s.Player("a")
	p.X = 99
	s.RemoveFood(map[uint64]struct{}{1: {}})
	s.InsertFood(Pellet{ID: 2, X: 7})

	if snap.Players[0].X != 1 {
		t.Fatalf("snapshot player aliased live store: %+v", snap.Players[0])
	}
	if len(snap.Food) != 1 || snap.Food[0].ID != 1 {
		t.Fatalf("snapshot food aliased live store: %+v", snap.Food)
	}
}

func TestRemoveFoodBySet(t *testing.T) {
	s := NewStore()
	for i := uint64(1); i <= 5; i++ {
		s.InsertFood(Pellet{ID: i})
	}
	n := s.RemoveFood(map[uint64]struct{}{2: {}, 4: {}, 42: {}})
	if n != 2 || s.FoodCount() != 3 {
		t.Fatalf("removed=%d count=%d, want 2 and 3", n, s.FoodCount())
	}
	var ids []uint64
	s.ForEachFood(func(f Pellet) { ids = append(ids, f.ID) })
	if ids[0] != 1 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("remaining ids = %v, want [1 3 5]", ids)
	}
}

func TestTopUpUniqueIDsWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	s := NewStore()
	m := NewFoodManager(cfg, rand.New(rand.NewSource(3)))

	if n := m.TopUp(s, cfg.FoodCount); n != cfg.FoodCount {
		t.Fatalf("spawned %d, want %d", n, cfg.FoodCount)
	}
	seen := map[uint64]bool{}
	s.ForEachFood(func(f Pellet) {
		if seen[f.ID] {
			t.Fatalf("duplicate id %d", f.ID)
		}
		seen[f.ID] = true
		if f.X < cfg.FoodSize || f.X > cfg.MapWidth-cfg.FoodSize || f.Y < cfg.FoodSize || f.Y > cfg.MapHeight-cfg.FoodSize {
			t.Fatalf("pellet out of range: %+v", f)
		}
		if f.Size != cfg.FoodSize {
			t.Fatalf("pellet size = %f, want %f", f.Size, cfg.FoodSize)
		}
	})

	s.RemoveFood(map[uint64]struct{}{1: {}, 2: {}})
	if n := m.TopUp(s, cfg.FoodCount); n != 2 {
		t.Fatalf("refill spawned %d, want 2", n)
	}
	s.ForEachFood(func(f Pellet) {
		if f.ID == 1 || f.ID == 2 {
			t.Fatalf("id %d reused after removal", f.ID)
		}
	})
	if n := m.TopUp(s, cfg.FoodCount); n != 0 {
		t.Fatalf("full store spawned %d", n)
	}
}

func TestClampEmptyRangeUsesMidpoint(t *testing.T) {
	if got := Clamp(5, 10, 0); got != 5 {
		t.Fatalf("Clamp(5, 10, 0) = %f, want 5", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Fatalf("Clamp(-3, 0, 10) = %f, want 0", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultName},
		{"alice", "alice"},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmno"},
		{"小小小小小小小小小小小小小小小小小", "小小小小小小小小小小小小小小小"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
