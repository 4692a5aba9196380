package protocol

import (
	"errors"
	"strings"

	"github.com/finnbear/moderation"
)

// ErrNameRejected is returned by ScreenName when a name scans as
// severely inappropriate and must not be accepted at all.
var ErrNameRejected = errors.New("protocol: player name rejected")

// maxNameLength bounds a player's display name; spec.md is silent on
// this, so a conservative bound matches the teacher's own handling of
// untrusted display strings.
const maxNameLength = 32

// ScreenName validates and sanitizes a client-supplied player name,
// grounded on the teacher's use of github.com/finnbear/moderation for
// the same purpose in server/chat_history.go and server/inbound.go
// (there applied to chat text and player names; here to the one name
// a client sends on connect). A name that scans as merely
// inappropriate is censored in place; one that scans as severely
// inappropriate is rejected outright.
func ScreenName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Anonymous"
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	result := moderation.Scan(name)
	if result.Is(moderation.Inappropriate & moderation.Severe) {
		return "", ErrNameRejected
	}
	if result.Is(moderation.Inappropriate) {
		censored, _ := moderation.Censor(name, moderation.Inappropriate)
		name = censored
	}
	return name, nil
}
