package server

import (
	"blobarena/game"
	"blobarena/protocol"
)

// message 一条出站消息，按编解码器惰性编码并缓存，广播时每种编码只做一次
type message struct {
	typ     string
	payload any
	encoded map[string][]byte
}

func newMessage(typ string, payload any) *message {
	return &message{typ: typ, payload: payload}
}

func (m *message) bytesFor(c protocol.Codec) ([]byte, error) {
	if b, ok := m.encoded[c.Name()]; ok {
		return b, nil
	}
	b, err := protocol.Encode(c, m.typ, m.payload)
	if err != nil {
		return nil, err
	}
	if m.encoded == nil {
		m.encoded = make(map[string][]byte, 2)
	}
	m.encoded[c.Name()] = b
	return b, nil
}

// publish 将一个 Tick 的输出分发给连接：定向欢迎 → 事件广播 → 定向 game_over → 全量状态
func (a *Arena) publish(f game.Frame) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cfg := a.engine.Config()
	for _, n := range f.Notices {
		if n.Kind != game.NoticeWelcome {
			continue
		}
		a.sendTo(n.Session, newMessage(protocol.MsgGameSetup, protocol.GameSetup{
			PlayerID:  string(n.Session),
			MapWidth:  cfg.MapWidth,
			MapHeight: cfg.MapHeight,
		}))
		if n.State != nil {
			a.sendTo(n.Session, newMessage(protocol.MsgCurrentState, protocol.FromSnapshot(*n.State)))
		}
	}

	for _, ev := range f.Events {
		switch ev.Kind {
		case game.EventJoined:
			a.broadcast(newMessage(protocol.MsgPlayerJoined, protocol.FromPlayer(ev.Player)), ev.PlayerID)
		case game.EventLeft:
			a.broadcast(newMessage(protocol.MsgPlayerLeft, protocol.PlayerLeft{ID: string(ev.PlayerID)}), "")
		case game.EventEaten:
			a.broadcast(newMessage(protocol.MsgPlayerEaten, protocol.PlayerEaten{
				EatenID: string(ev.PlayerID),
				EaterID: string(ev.EaterID),
			}), "")
		}
	}

	for _, n := range f.Notices {
		if n.Kind == game.NoticeGameOver {
			a.sendTo(n.Session, newMessage(protocol.MsgGameOver, protocol.GameOver{Message: n.Message}))
		}
	}

	a.broadcast(newMessage(protocol.MsgGameUpdate, protocol.FromSnapshot(f.State)), "")
}

// 调用方需持有 a.mu 读锁
func (a *Arena) sendTo(id game.PlayerID, m *message) {
	if c, ok := a.clients[id]; ok {
		a.deliver(c, m)
	}
}

// 调用方需持有 a.mu 读锁；except 为空表示发给所有人
func (a *Arena) broadcast(m *message, except game.PlayerID) {
	for id, c := range a.clients {
		if id == except {
			continue
		}
		a.deliver(c, m)
	}
}

func (a *Arena) deliver(c Client, m *message) {
	b, err := m.bytesFor(c.Codec())
	if err != nil {
		a.log.Errorw("encode failed", "type", m.typ, "codec", c.Codec().Name(), "err", err)
		return
	}
	if c.Enqueue(b) {
		a.metrics.IncMessagesSent()
	} else {
		// 慢客户端：丢弃，不阻塞 Tick
		a.metrics.IncMessagesDropped()
	}
}
