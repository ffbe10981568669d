// Package channel defines chat channel keys, messages and the per-channel history store.
package channel

import (
	"time"
)

// Key names a channel. Reserved keys are topic channels; any other key is a
// private conversation named after the peer.
type Key string

const (
	All    Key = "all"
	Game   Key = "game"
	Quest  Key = "quest"
	Public Key = "public"
)

// Reserved lists the topic channels in tab order.
var Reserved = []Key{All, Game, Quest, Public}

// IsReserved reports whether k is one of the topic channels.
func (k Key) IsReserved() bool {
	switch k {
	case All, Game, Quest, Public:
		return true
	}
	return false
}

// Type is the host's channel-type tag on an incoming message.
type Type string

const (
	TypeGame    Type = "game"
	TypePublic  Type = "public"
	TypeQuest   Type = "quest"
	TypePrivate Type = "private"
)

// Message is a rendered chat line built by the host. Its ID is the node
// identity on the rendering surface.
type Message struct {
	ID        string
	Type      Type
	Timestamp time.Time
	Speaker   string
	Text      string
	Icon      bool
}
