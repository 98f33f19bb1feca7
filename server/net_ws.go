package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blobarena/game"
	"blobarena/protocol"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4 << 10 // 入站只有 join/move，4KB 足够
	maxRoomIDLen   = 64
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	id    game.PlayerID
	codec protocol.Codec
	ws    *websocket.Conn
	send  chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClientConn(ws *websocket.Conn, id game.PlayerID, codec protocol.Codec, buffer int) *ClientConn {
	return &ClientConn{
		id:     id,
		codec:  codec,
		ws:     ws,
		send:   make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

func (c *ClientConn) ID() game.PlayerID     { return c.id }
func (c *ClientConn) Codec() protocol.Codec { return c.codec }

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		return false
	}
}

// Close 关闭底层连接并通知写协程退出；可重复调用
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return c.ws.Close()
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()
	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(msgType, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，转换为命令注入竞技场
func (c *ClientConn) readPump(arena *Arena) {
	// 读泵退出时，通知竞技场在 Tick 线程中移除该玩家
	defer func() {
		arena.Detach(c.id)
		_ = c.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("ws read error", "session", c.id, "err", err)
			}
			return
		}
		arena.OnInbound(c.id, c.codec, payload)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&codec=json|msgpack
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = s.DefaultRoom
	}
	if len(roomID) > maxRoomIDLen {
		http.Error(w, "room id too long", http.StatusBadRequest)
		return
	}
	codecName := r.URL.Query().Get("codec")
	if codecName == "" {
		codecName = s.DefaultCodec
	}
	codec, err := protocol.CodecByName(codecName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 升级前先确认能进入竞技场，超出上限时还能回 HTTP 状态码
	if _, err := s.Arenas.GetOrCreateArena(roomID); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "err", err)
		return
	}

	// 会话 ID 由传输层分配，核心只把它当作不透明标识
	id := game.PlayerID(uuid.New().String())
	client := NewClientConn(ws, id, codec, s.SendBuffer)
	arena, err := s.Arenas.Attach(roomID, client)
	if err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()), time.Now().Add(writeWait))
		_ = client.Close()
		return
	}
	Log.Infow("client connected", "session", id, "arena", roomID, "codec", codec.Name(), "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump(arena)
}
