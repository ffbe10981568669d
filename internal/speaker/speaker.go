// Package speaker parses the speaker labels the host attaches to private messages.
package speaker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedLabel is returned when a label does not split into marker,
// direction and name.
var ErrMalformedLabel = errors.New("malformed speaker label")

// Direction says which way a private message travelled.
type Direction string

const (
	To   Direction = "to"
	From Direction = "from"
)

// Label is a parsed private-message speaker such as "(PM from Jane Doe:".
type Label struct {
	Marker    string
	Direction Direction
	Peer      string
}

// ParsePrivate splits raw on single spaces. The first two tokens are the
// marker and direction; the rest is rejoined into the peer name and its
// trailing decoration character is dropped.
func ParsePrivate(raw string) (Label, error) {
	tokens := strings.Split(raw, " ")
	if len(tokens) < 3 {
		return Label{}, fmt.Errorf("%w: %q has %d tokens", ErrMalformedLabel, raw, len(tokens))
	}

	name := tokens[2]
	if len(tokens) > 3 {
		name = strings.Join(tokens[2:], " ")
	}
	_, size := utf8.DecodeLastRuneInString(name)
	name = name[:len(name)-size]
	if name == "" {
		return Label{}, fmt.Errorf("%w: %q has an empty name", ErrMalformedLabel, raw)
	}

	return Label{
		Marker:    tokens[0],
		Direction: Direction(tokens[1]),
		Peer:      name,
	}, nil
}

// String rebuilds the label in the host's format.
func (l Label) String() string {
	return l.Marker + " " + string(l.Direction) + " " + l.Peer + ":"
}

// Format returns the label the host prints for a private message with peer.
func Format(dir Direction, peer string) string {
	return Label{Marker: "(PM", Direction: dir, Peer: peer}.String()
}
