package host

import (
	"strings"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/eachlabs/chattabs/internal/speaker"
)

// FormatMessage renders a message as a single chat line. An empty layout
// leaves the timestamp out.
func FormatMessage(m *channel.Message, layout string) string {
	var b strings.Builder
	if layout != "" && !m.Timestamp.IsZero() {
		b.WriteString("[" + m.Timestamp.Format(layout) + "] ")
	}

	switch {
	case m.Speaker == "":
	case m.Type == channel.TypePrivate:
		// Private labels already end with their decoration.
		b.WriteString(m.Speaker + " ")
	default:
		b.WriteString(m.Speaker + ": ")
	}
	b.WriteString(m.Text)
	return b.String()
}

// Say builds a public message spoken by name.
func Say(name, text string) router.Incoming {
	return router.Incoming{Type: channel.TypePublic, Speaker: name, Text: text}
}

// Tell builds a private message received from peer.
func Tell(peer, text string) router.Incoming {
	return router.Incoming{Type: channel.TypePrivate, Speaker: speaker.Format(speaker.From, peer), Text: text}
}
