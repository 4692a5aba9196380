package protocol

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Decoder and Encoder alias json-iterator's streaming types so callers
// never import json-iterator directly; spec.md §6 calls for a
// streaming decoder on both ends of the connection, not a
// read-the-whole-message framing scheme.
type Decoder = jsoniter.Decoder
type Encoder = jsoniter.Encoder

// NewDecoder wraps r with the shared codec configuration, decoding one
// concatenated JSON value at a time off the stream.
func NewDecoder(r io.Reader) *Decoder {
	return JSON.NewDecoder(r)
}

// NewEncoder wraps w with the shared codec configuration.
func NewEncoder(w io.Writer) *Encoder {
	return JSON.NewEncoder(w)
}
