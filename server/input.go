package server

import (
	"blobarena/game"
	"blobarena/protocol"
)

// OnInbound 入站消息（不立即改变世界），解析为命令后排队等下一次 Tick 处理
func (a *Arena) OnInbound(id game.PlayerID, codec protocol.Codec, payload []byte) {
	in, err := protocol.DecodeInbound(codec, payload)
	if err != nil {
		a.metrics.IncDecodeErrors()
		a.log.Debugw("bad inbound message", "session", id, "err", err)
		return
	}
	cmd, err := in.Command(id)
	if err != nil {
		a.metrics.IncDecodeErrors()
		a.log.Debugw("unsupported inbound message", "session", id, "err", err)
		return
	}

	if _, ok := cmd.(game.Move); ok {
		// 移动意图可丢：下一条会覆盖它
		_ = a.Submit(cmd)
		return
	}
	if err := a.engine.SubmitWait(a.ctx, cmd); err != nil {
		a.log.Debugw("command not delivered", "session", id, "type", in.Type, "err", err)
	}
}
