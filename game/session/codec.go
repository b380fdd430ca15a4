package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes persisted sessions
type Codec interface {
	Name() string
	// Extension is the file suffix including the dot
	Extension() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores sessions as indented JSON
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return ".json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgpackCodec stores sessions as MessagePack
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string      { return "msgpack" }
func (MsgpackCodec) Extension() string { return ".msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// CodecByName returns the codec for name ("json" or "msgpack")
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack", "messagepack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown session codec %q", name)
	}
}
