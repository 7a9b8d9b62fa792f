// Package net carries strokes between a host board and its clients over a
// websocket, and finds hosts on the local network.
package net

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"MandalaBoard/internal/state"
)

// Scheme prefixes share links.
const Scheme = "mandala://"

// Message types.
const (
	TypeStroke = "stroke"
	TypeReset  = "reset"
)

// ErrBadMessage is returned for frames that do not decode to a known
// message.
var ErrBadMessage = errors.New("bad message")

// Message is one frame on the wire. A stroke message carries the whole
// stroke; a reset carries only its Lamport time and sender.
type Message struct {
	Type    string        `json:"type"`
	Stroke  *state.Stroke `json:"stroke,omitempty"`
	Lamport uint64        `json:"lamport,omitempty"`
	OwnerID string        `json:"owner_id,omitempty"`
}

// StrokeMessage wraps s for sending.
func StrokeMessage(s state.Stroke) Message {
	return Message{Type: TypeStroke, Stroke: &s, Lamport: s.Lamport, OwnerID: s.OwnerID}
}

// ResetMessage announces a cleared board.
func ResetMessage(owner string, lamport uint64) Message {
	return Message{Type: TypeReset, Lamport: lamport, OwnerID: owner}
}

// Encode marshals m.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses and checks one frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	switch m.Type {
	case TypeStroke:
		if m.Stroke == nil {
			return Message{}, fmt.Errorf("%w: stroke message without stroke", ErrBadMessage)
		}
	case TypeReset:
	default:
		return Message{}, fmt.Errorf("%w: type %q", ErrBadMessage, m.Type)
	}
	return m, nil
}

// ShareLink builds the link a client opens to join host:port.
func ShareLink(host string, port int) string {
	return Scheme + net.JoinHostPort(host, fmt.Sprint(port))
}

// ParseLink returns the host:port inside a share link. A bare host:port is
// accepted as well.
func ParseLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrBadAddress, link, err)
	}
	return addr, nil
}
