// Package codec centralizes wire encoding for the search server.
//
// Both codecs stream: a server reads requests with a Decoder and writes
// responses with an Encoder over the same pair of pipes.
package codec

import "io"

// Encoder writes values to a stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads values from a stream. Decode returns io.EOF when the stream
// ends cleanly.
type Decoder interface {
	Decode(v any) error
}

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use; the encoders and decoders
// they return are not.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "msgpack":
		return MsgPack{}, true
	default:
		return nil, false
	}
}

// Names lists the built-in codec names.
func Names() []string { return []string{"json", "msgpack"} }

// Default is the codec used when none is configured.
var Default Codec = JSON{}
