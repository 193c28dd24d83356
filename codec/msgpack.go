package codec

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack is a binary codec backed by github.com/vmihailenco/msgpack/v5.
// Messages are 30 to 50 percent smaller than JSON.
type MsgPack struct{}

// Marshal encodes the value to msgpack.
func (MsgPack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Unmarshal decodes the msgpack data into v.
func (MsgPack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// NewEncoder returns a msgpack stream encoder.
func (MsgPack) NewEncoder(w io.Writer) Encoder { return msgpack.NewEncoder(w) }

// NewDecoder returns a msgpack stream decoder.
func (MsgPack) NewDecoder(r io.Reader) Decoder { return msgpack.NewDecoder(r) }

// Name returns the unique name of the codec ("msgpack").
func (MsgPack) Name() string { return "msgpack" }
