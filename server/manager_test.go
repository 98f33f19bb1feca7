package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"blobarena/game"
)

func newTestManager(t *testing.T, limits Limits) *ArenaManager {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.FoodCount = 5
	m := NewArenaManager(context.Background(), cfg, limits, zaptest.NewLogger(t).Sugar())
	t.Cleanup(m.Shutdown)
	return m
}

func waitDone(t *testing.T, a *Arena) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("arena %s still ticking", a.ID)
	}
}

func TestManagerCapsArenaCount(t *testing.T) {
	m := newTestManager(t, Limits{MaxArenas: 2})

	first, err := m.GetOrCreateArena("a")
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := m.GetOrCreateArena("b"); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := m.GetOrCreateArena("c"); !errors.Is(err, ErrTooManyArenas) {
		t.Fatalf("create c: err = %v, want ErrTooManyArenas", err)
	}
	if _, err := m.Attach("c", newFakeClient("x")); !errors.Is(err, ErrTooManyArenas) {
		t.Fatalf("attach c: err = %v, want ErrTooManyArenas", err)
	}
	again, err := m.GetOrCreateArena("a")
	if err != nil || again != first {
		t.Fatalf("existing arena not returned: %v", err)
	}
	if n := len(m.List()); n != 2 {
		t.Fatalf("arenas = %d, want 2", n)
	}
}

func TestReapIdleKeepsPinnedAndBusy(t *testing.T) {
	m := newTestManager(t, Limits{IdleTimeout: time.Minute})

	if _, err := m.Pin("lobby"); err != nil {
		t.Fatalf("pin: %v", err)
	}
	empty, err := m.GetOrCreateArena("empty")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	client := newFakeClient("p1")
	busy, err := m.Attach("busy", client)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	if n := m.ReapIdle(time.Now()); n != 0 {
		t.Fatalf("reaped %d arenas before timeout", n)
	}
	if n := m.ReapIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("reaped %d arenas, want 1", n)
	}
	if _, ok := m.Get("empty"); ok {
		t.Fatalf("idle arena still listed")
	}
	waitDone(t, empty)
	for _, id := range []string{"lobby", "busy"} {
		if _, ok := m.Get(id); !ok {
			t.Fatalf("arena %s removed", id)
		}
	}

	busy.Detach("p1")
	if n := m.ReapIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("reaped %d arenas after last client left, want 1", n)
	}
	waitDone(t, busy)
	if _, ok := m.Get("lobby"); !ok {
		t.Fatalf("pinned arena removed")
	}
}

func TestReapIdleDisabledWithoutTimeout(t *testing.T) {
	m := newTestManager(t, Limits{})
	if _, err := m.GetOrCreateArena("a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n := m.ReapIdle(time.Now().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("reaped %d arenas with reaping disabled", n)
	}
}

func TestArenaCloseBeforeStart(t *testing.T) {
	a := newTestArena(t)
	c := newFakeClient("c")
	a.Attach(c)

	a.Close()

	waitDone(t, a)
	if a.NumClients() != 0 {
		t.Fatalf("clients = %d after close", a.NumClients())
	}
	if c.Enqueue([]byte("x")) {
		t.Fatalf("client still open after arena close")
	}
	// 关闭后启动不再生效
	a.StartTicker()
}
