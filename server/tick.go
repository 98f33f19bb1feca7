package server

import (
	"time"

	"blobarena/game"
)

// StartTicker 启动竞技场的 Tick 循环（单线程推进世界），重复调用无效
func (a *Arena) StartTicker() {
	a.startOnce.Do(func() {
		go a.run()
	})
}

func (a *Arena) run() {
	defer close(a.done)
	interval := a.engine.Config().TickInterval()
	// Ticker 在处理过慢时丢弃积压的 tick，不做追帧
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	a.log.Infow("arena ticker started", "interval", interval)

	for {
		select {
		case <-a.ctx.Done():
			a.log.Info("arena ticker stopped")
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick 核心循环：处理命令 → 推进世界 → 广播结果
func (a *Arena) tick() game.Frame {
	start := time.Now()
	f := a.engine.Step()
	a.publish(f)
	a.metrics.AddFrame(f, time.Since(start).Nanoseconds())
	return f
}
