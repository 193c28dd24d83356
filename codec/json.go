package codec

import (
	"io"

	gojson "github.com/goccy/go-json"
)

// JSON is a JSON codec backed by github.com/goccy/go-json.
//
// Its encoder writes one value per line, so a stream of requests or
// responses is newline-delimited JSON.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// NewEncoder returns a newline-delimited JSON encoder.
func (JSON) NewEncoder(w io.Writer) Encoder { return gojson.NewEncoder(w) }

// NewDecoder returns a JSON stream decoder.
func (JSON) NewDecoder(r io.Reader) Decoder { return gojson.NewDecoder(r) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
