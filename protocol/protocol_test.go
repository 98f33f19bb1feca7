package protocol

import (
	"errors"
	"testing"

	"blobarena/game"
)

func TestInboundDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want game.Command
	}{
		{"join without name", `{"type":"join"}`, game.Join{Session: "s", Name: "Blob"}},
		{"join with number name", `{"type":"join","name":42}`, game.Join{Session: "s", Name: "Blob"}},
		{"join truncates", `{"type":"join","name":"abcdefghijklmnopq"}`, game.Join{Session: "s", Name: "abcdefghijklmno"}},
		{"move without coords", `{"type":"move"}`, game.Move{Session: "s"}},
		{"move with string coord", `{"type":"move","x":"left","y":3}`, game.Move{Session: "s", DY: 3}},
		{"move with out-of-range coord", `{"type":"move","x":1e999,"y":3}`, game.Move{Session: "s", DY: 3}},
		{"move with null and object", `{"type":"move","x":null,"y":{"v":1}}`, game.Move{Session: "s"}},
		{"join with out-of-range name", `{"type":"join","name":1e999}`, game.Join{Session: "s", Name: "Blob"}},
		{"move", `{"type":"MOVE","x":-4.5,"y":2}`, game.Move{Session: "s", DX: -4.5, DY: 2}},
		{"leave", `{"type":"leave"}`, game.Leave{Session: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeInbound(JSONCodec{}, []byte(tt.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			cmd, err := in.Command("s")
			if err != nil {
				t.Fatalf("command: %v", err)
			}
			if cmd != tt.want {
				t.Fatalf("command = %#v, want %#v", cmd, tt.want)
			}
		})
	}
}

func TestInboundRejectsUnknownAndEmpty(t *testing.T) {
	if _, err := DecodeInbound(JSONCodec{}, nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty: err = %v", err)
	}
	if _, err := DecodeInbound(JSONCodec{}, []byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
	in, _ := DecodeInbound(JSONCodec{}, []byte(`{"type":"fly"}`))
	if _, err := in.Command("s"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type: err = %v", err)
	}
}

func TestMsgpackInboundIntegers(t *testing.T) {
	c := MsgpackCodec{}
	raw, err := c.Marshal(map[string]any{"type": "move", "x": 7, "y": int8(-2)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	in, err := DecodeInbound(c, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cmd, _ := in.Command("s")
	if cmd != (game.Move{Session: "s", DX: 7, DY: -2}) {
		t.Fatalf("command = %#v", cmd)
	}
}

func TestMsgpackInboundWrongTypesDefault(t *testing.T) {
	c := MsgpackCodec{}
	raw, err := c.Marshal(map[string]any{"type": "join", "name": []int{1, 2}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	in, err := DecodeInbound(c, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmd, _ := in.Command("s"); cmd != (game.Join{Session: "s", Name: "Blob"}) {
		t.Fatalf("command = %#v", cmd)
	}

	raw, err = c.Marshal(map[string]any{"type": "move", "x": "left", "y": uint16(9)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	in, err = DecodeInbound(c, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmd, _ := in.Command("s"); cmd != (game.Move{Session: "s", DY: 9}) {
		t.Fatalf("command = %#v", cmd)
	}
}

func TestEncodeDecodeEnvelope(t *testing.T) {
	for _, c := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := Encode(c, MsgPlayerEaten, PlayerEaten{EatenID: "b", EaterID: "a"})
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			env, err := Decode[PlayerEaten](c, b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Type != MsgPlayerEaten || env.Data.EatenID != "b" || env.Data.EaterID != "a" {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}
}

func TestEncodeRejectsMissingParts(t *testing.T) {
	if _, err := Encode(JSONCodec{}, "", GameOver{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if _, err := Encode(JSONCodec{}, MsgGameOver, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestFromSnapshotEmptyListsEncodeAsArrays(t *testing.T) {
	b, err := Encode(JSONCodec{}, MsgGameUpdate, FromSnapshot(game.Snapshot{}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"game_update","data":{"players":[],"food":[]}}`
	if string(b) != want {
		t.Fatalf("encoded = %s, want %s", b, want)
	}
}

func TestCodecByName(t *testing.T) {
	if c, err := CodecByName(""); err != nil || c.Name() != CodecJSON {
		t.Fatalf("default codec = %v, %v", c, err)
	}
	if c, err := CodecByName("MsgPack"); err != nil || !c.Binary() {
		t.Fatalf("msgpack codec = %v, %v", c, err)
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}
