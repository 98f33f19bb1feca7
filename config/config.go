package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"blobarena/game"
	"blobarena/protocol"
)

// 环境变量前缀，如 ARENA_ADDR、ARENA_FOOD_COUNT
const envPrefix = "ARENA_"

// LogConfig 日志文件与滚动策略
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Stderr     bool // 同时输出到标准错误
}

// Config 进程级配置
type Config struct {
	Addr             string
	StaticDir        string
	DefaultRoom      string
	DefaultCodec     string
	ClientSendBuffer int
	MaxArenas        int           // 同时存在的竞技场上限
	ArenaIdleTimeout time.Duration // 无连接的竞技场保留时长，0 表示永不回收
	Log              LogConfig
	Game             game.Config
}

// Default 默认配置
func Default() Config {
	return Config{
		Addr:             ":8080",
		StaticDir:        "web",
		DefaultRoom:      "room-1",
		DefaultCodec:     "json",
		ClientSendBuffer: 64,
		MaxArenas:        64,
		ArenaIdleTimeout: 5 * time.Minute,
		Log: LogConfig{
			File:       "app.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Game: game.DefaultConfig(),
	}
}

// Load 先读取 envFile（不存在时忽略），再用 ARENA_* 环境变量覆盖默认值
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var errs error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &cfg.Addr)
	str("STATIC_DIR", &cfg.StaticDir)
	str("DEFAULT_ROOM", &cfg.DefaultRoom)
	str("CODEC", &cfg.DefaultCodec)
	integer("CLIENT_SEND_BUFFER", &cfg.ClientSendBuffer)
	integer("MAX_ARENAS", &cfg.MaxArenas)
	duration("IDLE_TIMEOUT", &cfg.ArenaIdleTimeout)

	str("LOG_FILE", &cfg.Log.File)
	str("LOG_LEVEL", &cfg.Log.Level)
	integer("LOG_MAX_SIZE_MB", &cfg.Log.MaxSizeMB)
	integer("LOG_MAX_BACKUPS", &cfg.Log.MaxBackups)
	integer("LOG_MAX_AGE_DAYS", &cfg.Log.MaxAgeDays)
	boolean("LOG_COMPRESS", &cfg.Log.Compress)
	boolean("LOG_STDERR", &cfg.Log.Stderr)

	float("MAP_WIDTH", &cfg.Game.MapWidth)
	float("MAP_HEIGHT", &cfg.Game.MapHeight)
	float("INITIAL_PLAYER_SIZE", &cfg.Game.InitialPlayerSize)
	integer("FOOD_COUNT", &cfg.Game.FoodCount)
	float("FOOD_SIZE", &cfg.Game.FoodSize)
	float("PLAYER_SPEED_FACTOR", &cfg.Game.PlayerSpeedFactor)
	float("EAT_RATIO", &cfg.Game.EatRatio)
	integer("TICK_RATE", &cfg.Game.TickRate)
	integer("INTAKE_CAPACITY", &cfg.Game.IntakeCapacity)

	if errs != nil {
		return Config{}, errs
	}
	return cfg, cfg.Validate()
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate 汇总所有非法项一次性返回
func (c Config) Validate() error {
	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}
	g := c.Game
	check(c.Addr != "", "addr must not be empty")
	check(c.DefaultRoom != "", "default room must not be empty")
	check(c.ClientSendBuffer > 0, "client send buffer must be > 0, got %d", c.ClientSendBuffer)
	check(c.MaxArenas > 0, "max arenas must be > 0, got %d", c.MaxArenas)
	check(c.ArenaIdleTimeout >= 0, "arena idle timeout must be >= 0, got %s", c.ArenaIdleTimeout)
	check(g.MapWidth > 0 && g.MapHeight > 0, "map size must be > 0, got %gx%g", g.MapWidth, g.MapHeight)
	check(g.InitialPlayerSize > 0, "initial player size must be > 0, got %g", g.InitialPlayerSize)
	check(2*g.InitialPlayerSize < g.MapWidth && 2*g.InitialPlayerSize < g.MapHeight,
		"initial player size %g leaves no spawn area", g.InitialPlayerSize)
	check(g.FoodSize > 0, "food size must be > 0, got %g", g.FoodSize)
	check(2*g.FoodSize < g.MapWidth && 2*g.FoodSize < g.MapHeight, "food size %g leaves no spawn area", g.FoodSize)
	check(g.FoodCount >= 0 && g.FoodCount <= game.MaxFoodCount,
		"food count must be in [0, %d], got %d", game.MaxFoodCount, g.FoodCount)
	check(g.PlayerSpeedFactor > 0, "player speed factor must be > 0, got %g", g.PlayerSpeedFactor)
	check(g.EatRatio > 1, "eat ratio must be > 1, got %g", g.EatRatio)
	check(g.TickRate > 0 && g.TickRate <= 1000, "tick rate must be in (0, 1000], got %d", g.TickRate)
	check(g.IntakeCapacity > 0, "intake capacity must be > 0, got %d", g.IntakeCapacity)
	if _, err := protocol.CodecByName(c.DefaultCodec); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
