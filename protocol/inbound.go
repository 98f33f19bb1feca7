package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"blobarena/game"
)

// Inbound 客户端消息（扁平结构）
// 示例：{"type":"join","name":"alice"}、{"type":"move","x":12.5,"y":-3}
// 单个字段类型不对或数值越界时退回默认值，不拒绝整条消息
type Inbound struct {
	Type string `json:"type"`
	Name Text   `json:"name,omitempty"`
	X    Number `json:"x,omitempty"`
	Y    Number `json:"y,omitempty"`
}

// Number 宽松数值：非数字、越界、null 都解成 0
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// 包括 ErrRange（如 1e999）和字符串、对象等
		f = 0
	}
	*n = Number(f)
	return nil
}

func (n *Number) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	*n = Number(number(v))
	return nil
}

// Text 宽松字符串：非字符串解成空串
type Text string

func (s *Text) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		v = ""
	}
	*s = Text(v)
	return nil
}

func (s *Text) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	str, _ := v.(string)
	*s = Text(str)
	return nil
}

// DecodeInbound 解析一条入站消息
func DecodeInbound(c Codec, raw []byte) (Inbound, error) {
	var in Inbound
	if len(raw) == 0 {
		return in, ErrEmptyMessage
	}
	if err := c.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("protocol: decode inbound: %w", err)
	}
	in.Type = strings.ToLower(in.Type)
	return in, nil
}

// Command 转换为引擎命令，默认值只在这里应用一次
func (in Inbound) Command(session game.PlayerID) (game.Command, error) {
	switch in.Type {
	case MsgJoin:
		return game.NewJoin(session, string(in.Name)), nil
	case MsgMove:
		return game.NewMove(session, float64(in.X), float64(in.Y)), nil
	case MsgLeave:
		return game.Leave{Session: session}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
}

// number 兼容 JSON（float64）与 MessagePack（各种整型/浮点）
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}
