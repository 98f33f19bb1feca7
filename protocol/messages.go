package protocol

import (
	"errors"
	"fmt"

	"blobarena/game"
)

// 消息类型
const (
	// 客户端 → 服务端
	MsgJoin  = "join"
	MsgMove  = "move"
	MsgLeave = "leave"

	// 服务端 → 客户端
	MsgGameSetup    = "game_setup"
	MsgCurrentState = "current_state"
	MsgPlayerJoined = "player_joined"
	MsgPlayerLeft   = "player_left"
	MsgPlayerEaten  = "player_eaten"
	MsgGameOver     = "game_over"
	MsgGameUpdate   = "game_update"
)

var (
	ErrEmptyMessage = errors.New("protocol: empty message")
	ErrUnknownType  = errors.New("protocol: unknown message type")
)

// Envelope 出站消息外层
type Envelope[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type Player struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

type Pellet struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// GameSetup 仅发给加入者
type GameSetup struct {
	PlayerID  string  `json:"playerId"`
	MapWidth  float64 `json:"mapWidth"`
	MapHeight float64 `json:"mapHeight"`
}

// WorldState current_state 与 game_update 共用的全量快照
type WorldState struct {
	Players []Player `json:"players"`
	Food    []Pellet `json:"food"`
}

type PlayerLeft struct {
	ID string `json:"id"`
}

type PlayerEaten struct {
	EatenID string `json:"eatenId"`
	EaterID string `json:"eaterId,omitempty"`
}

type GameOver struct {
	Message string `json:"message"`
}

func FromPlayer(p game.Player) Player {
	return Player{ID: string(p.ID), Name: p.Name, X: p.X, Y: p.Y, Size: p.Size, Color: p.Color}
}

// FromSnapshot 转为线上结构；空集合编码为 [] 而不是 null
func FromSnapshot(s game.Snapshot) WorldState {
	ws := WorldState{
		Players: make([]Player, 0, len(s.Players)),
		Food:    make([]Pellet, 0, len(s.Food)),
	}
	for _, p := range s.Players {
		ws.Players = append(ws.Players, FromPlayer(p))
	}
	for _, f := range s.Food {
		ws.Food = append(ws.Food, Pellet{ID: f.ID, X: f.X, Y: f.Y, Size: f.Size, Color: f.Color})
	}
	return ws
}

// Encode 封装并编码一条出站消息
func Encode(c Codec, t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("protocol: encode envelope with empty type")
	}
	if payload == nil {
		return nil, fmt.Errorf("protocol: encode %q with nil payload", t)
	}
	return c.Marshal(Envelope[any]{Type: t, Data: payload})
}

// Decode 解码出站消息（客户端与测试使用）
func Decode[T any](c Codec, b []byte) (Envelope[T], error) {
	var env Envelope[T]
	if len(b) == 0 {
		return env, ErrEmptyMessage
	}
	err := c.Unmarshal(b, &env)
	return env, err
}
