package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"blobarena/game"
)

func TestLoadDefaultsWithoutEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Game.FoodCount != 150 || cfg.Game.EatRatio != 1.1 || cfg.Game.TickRate != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9090")
	t.Setenv("ARENA_FOOD_COUNT", "42")
	t.Setenv("ARENA_EAT_RATIO", "1.5")
	t.Setenv("ARENA_LOG_STDERR", "true")
	t.Setenv("ARENA_CODEC", "msgpack")
	t.Setenv("ARENA_MAX_ARENAS", "3")
	t.Setenv("ARENA_IDLE_TIMEOUT", "90s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Game.FoodCount != 42 || cfg.Game.EatRatio != 1.5 || !cfg.Log.Stderr || cfg.DefaultCodec != "msgpack" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.MaxArenas != 3 || cfg.ArenaIdleTimeout != 90*time.Second {
		t.Fatalf("arena limits = %d, %s", cfg.MaxArenas, cfg.ArenaIdleTimeout)
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ARENA_MAP_WIDTH=3000\nARENA_TICK_RATE=60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv 不覆盖已存在的变量；先登记以便测试结束时恢复
	t.Setenv("ARENA_MAP_WIDTH", "")
	t.Setenv("ARENA_TICK_RATE", "")
	os.Unsetenv("ARENA_MAP_WIDTH")
	os.Unsetenv("ARENA_TICK_RATE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.MapWidth != 3000 || cfg.Game.TickRate != 60 {
		t.Fatalf(".env not applied: %+v", cfg.Game)
	}
}

func TestLoadReportsAllParseErrors(t *testing.T) {
	t.Setenv("ARENA_FOOD_COUNT", "many")
	t.Setenv("ARENA_EAT_RATIO", "big")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("errors = %d (%v), want 2", n, err)
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg := Default()
	cfg.Game.EatRatio = 1
	cfg.Game.MapWidth = 0
	cfg.DefaultCodec = "xml"

	err := cfg.Validate()
	errs := multierr.Errors(err)
	if len(errs) < 3 {
		t.Fatalf("errors = %v, want at least 3", errs)
	}
	if !strings.Contains(err.Error(), "eat ratio") {
		t.Fatalf("missing eat ratio error: %v", err)
	}
}

func TestValidateRejectsOversizedFoodCount(t *testing.T) {
	cfg := Default()
	cfg.Game.FoodCount = game.MaxFoodCount + 1
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "food count") {
		t.Fatalf("err = %v, want food count error", err)
	}
	cfg.Game.FoodCount = game.MaxFoodCount
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max food count rejected: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
