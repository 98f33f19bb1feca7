package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec 线协议编解码；同一连接收发使用同一种
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Binary 为 true 时以 WebSocket 二进制帧发送
	Binary() bool
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// CodecByName 按名称选择编解码器，空名默认 JSON
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown codec %q", name)
	}
}

// JSONCodec 文本 JSON
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return CodecJSON }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Binary() bool                       { return false }

// MsgpackCodec 二进制 MessagePack，沿用 json 标签保持字段名一致
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return CodecMsgpack }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (MsgpackCodec) Binary() bool { return true }
