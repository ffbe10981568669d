package router

import (
	"time"

	"github.com/eachlabs/chattabs/internal/channel"
)

// Incoming is a chat event as the host delivers it, before rendering.
type Incoming struct {
	Type      channel.Type
	Timestamp time.Time
	Speaker   string
	Text      string
	Icon      bool
}

// FilterEvent carries the click that selected a filter button.
type FilterEvent struct {
	Button int
}

// Surface is the visible message list.
type Surface interface {
	// Clear removes every message from the surface.
	Clear()
	// Append adds msg at the bottom; display order is append order.
	Append(msg *channel.Message)
}

// Host is everything the controller needs from the game client.
type Host interface {
	Surface() Surface
	// Notice posts a system line into the visible chat.
	Notice(text string)
	// SendPrivate dispatches a private message action to peer.
	SendPrivate(peer, text string) error
	// LocalPlayer returns the logged-in character's display name.
	LocalPlayer() string
}

// Defaults are the host's own handlers for each interceptable event. The
// controller calls them when it decides not to override. They must not call
// back into the controller synchronously.
type Defaults struct {
	// AddMessage builds the message node and appends it to the default view.
	AddMessage func(in Incoming) *channel.Message
	// Send transmits text on the host's selected public channel.
	Send func(text string)
	// FilterClicked applies the host's own filter selection.
	FilterClicked func(filter string, ev FilterEvent)
}

// Interceptor receives every interceptable chat event. A host registers one
// interceptor and routes the events through it instead of its defaults.
type Interceptor interface {
	OnIncomingMessage(in Incoming) *channel.Message
	OnOutgoingSend(text string)
	OnFilterClicked(filter string, ev FilterEvent)
}
