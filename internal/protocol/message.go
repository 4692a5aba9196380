// Package protocol defines the wire shapes exchanged with clients and
// the codec used to (de)serialize them, per spec.md §6.
//
// Grounded on the teacher's server/jsoniter.go and server/message.go:
// the same json-iterator codec, configured the same way (sorted map
// keys, compact float formatting), though the tagged Message envelope
// the teacher uses for its websocket protocol is unnecessary here —
// spec.md's transport distinguishes client requests by the "action"
// field on an unframed JSON object, unlike the teacher's {"type",
// "data"} envelope.
package protocol

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is the shared codec instance, configured like the teacher's
// (server/jsoniter.go): sorted map keys and 6-digit floats give
// deterministic, compact output, suitable for both the wire protocol
// and history snapshots.
var JSON = jsoniter.Config{
	EscapeHTML:              false,
	SortMapKeys:             true,
	MarshalFloatWith6Digits: true,
	ValidateJsonRawMessage:  true,
}.Froze()

// Hello is the first message a client sends: its chosen name
// (spec.md §6, message 1).
type Hello struct {
	Name string `json:"name"`
}

// Action is every subsequent client message: either a move or a fire
// (spec.md §6, message 2). Decoded once per JSON value; Action's Rotate and
// Speed are meaningless when IsFire is true.
type Action struct {
	ActionType string  `json:"action"`
	Rotate     float64 `json:"rotate"`
	Speed      float64 `json:"speed"`
}

const (
	ActionMove = "move"
	ActionFire = "fire"
)

func (a Action) IsFire() bool { return a.ActionType == ActionFire }
func (a Action) IsMove() bool { return a.ActionType == ActionMove }

// ViewHitWire is one ray's classified distance, as sent to the client.
type ViewHitWire struct {
	Object   string  `json:"object"`
	Distance float64 `json:"distance"`
}

// ViewMessage is the server's per-action response (spec.md §6).
type ViewMessage struct {
	View []ViewHitWire `json:"view"`
}

// ResultMessage is the server's terminal response (spec.md §6):
// either {"result":"win"} or {"result":"killed","by":"<name>"}.
type ResultMessage struct {
	Result string `json:"result"`
	By     string `json:"by,omitempty"`
}

const (
	ResultWin    = "win"
	ResultKilled = "killed"
)
