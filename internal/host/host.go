// Package host is an in-memory game chat client: a rendering surface, system
// notices, a loopback network and the default handlers the router falls back
// to.
package host

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/eachlabs/chattabs/internal/speaker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAlreadyRegistered is returned when a second interceptor is registered.
var ErrAlreadyRegistered = errors.New("interceptor already registered")

var _ router.Host = (*Chat)(nil)

// Outgoing is an action the client put on the wire.
type Outgoing struct {
	Peer    string
	Text    string
	Private bool
}

// Responder produces a reply to a private message sent to peer.
type Responder func(peer, text string) (reply string, ok bool)

// Chat is the host client.
type Chat struct {
	mu          sync.Mutex
	player      string
	surface     *Surface
	notices     []string
	sent        []Outgoing
	filter      string
	queue       []router.Incoming
	interceptor router.Interceptor
	responder   Responder
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures a Chat.
type Option func(*Chat)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Chat) {
		c.log = log
	}
}

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(c *Chat) {
		c.now = now
	}
}

// WithResponder makes private messages sent to other players get answered.
func WithResponder(r Responder) Option {
	return func(c *Chat) {
		c.responder = r
	}
}

// EchoResponder answers private messages sent to any of peers by repeating
// them back. Names match case-insensitively.
func EchoResponder(peers []string) Responder {
	return func(peer, text string) (string, bool) {
		for _, p := range peers {
			if strings.EqualFold(p, peer) {
				return text, true
			}
		}
		return "", false
	}
}

// New creates a client logged in as player.
func New(player string, opts ...Option) *Chat {
	c := &Chat{
		player:  player,
		surface: &Surface{},
		filter:  string(channel.All),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "host").Logger()
	return c
}

// Register routes chat events through i from now on.
func (c *Chat) Register(i router.Interceptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interceptor != nil {
		return ErrAlreadyRegistered
	}
	c.interceptor = i
	return nil
}

// Defaults returns the client's own handlers for the interceptable events.
func (c *Chat) Defaults() router.Defaults {
	return router.Defaults{
		AddMessage:    c.addMessage,
		Send:          c.send,
		FilterClicked: c.filterClicked,
	}
}

// NewMessage builds a message node from an event.
func (c *Chat) NewMessage(in router.Incoming) *channel.Message {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	return &channel.Message{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Timestamp: ts,
		Speaker:   in.Speaker,
		Text:      in.Text,
		Icon:      in.Icon,
	}
}

// Surface returns the visible message list.
func (c *Chat) Surface() router.Surface {
	return c.surface
}

// Messages returns what the surface shows, top to bottom.
func (c *Chat) Messages() []*channel.Message {
	return c.surface.Messages()
}

// Notice prints a system line. Notices are not chat traffic and are never
// routed through the interceptor.
func (c *Chat) Notice(text string) {
	c.mu.Lock()
	c.notices = append(c.notices, text)
	c.mu.Unlock()

	c.surface.Append(&channel.Message{
		ID:        uuid.New().String(),
		Type:      channel.TypeGame,
		Timestamp: c.now(),
		Text:      text,
	})
}

// Notices returns every notice posted so far.
func (c *Chat) Notices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.notices))
	copy(out, c.notices)
	return out
}

// SendPrivate puts a private message on the wire. The server echo arrives
// later through Pump.
func (c *Chat) SendPrivate(peer, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, Outgoing{Peer: peer, Text: text, Private: true})
	c.queue = append(c.queue, router.Incoming{
		Type:    channel.TypePrivate,
		Speaker: speaker.Format(speaker.To, peer),
		Text:    text,
	})
	if c.responder != nil && peer != c.player {
		if reply, ok := c.responder(peer, text); ok {
			c.queue = append(c.queue, router.Incoming{
				Type:    channel.TypePrivate,
				Speaker: speaker.Format(speaker.From, peer),
				Text:    reply,
			})
		}
	}
	c.log.Debug().Str("peer", peer).Msg("private message sent")
	return nil
}

// Sent returns every outgoing action.
func (c *Chat) Sent() []Outgoing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outgoing, len(c.sent))
	copy(out, c.sent)
	return out
}

// LocalPlayer returns the logged-in character name.
func (c *Chat) LocalPlayer() string {
	return c.player
}

// Filter returns the client's own filter selection.
func (c *Chat) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Deliver hands an incoming event to the interceptor, or renders it directly
// when none is registered.
func (c *Chat) Deliver(in router.Incoming) *channel.Message {
	if i := c.registered(); i != nil {
		return i.OnIncomingMessage(in)
	}
	return c.addMessage(in)
}

// Send is the user pressing enter on plain text.
func (c *Chat) Send(text string) {
	if i := c.registered(); i != nil {
		i.OnOutgoingSend(text)
		return
	}
	c.send(text)
}

// ClickFilter is the user pressing a filter button.
func (c *Chat) ClickFilter(filter string, ev router.FilterEvent) {
	if i := c.registered(); i != nil {
		i.OnFilterClicked(filter, ev)
		return
	}
	c.filterClicked(filter, ev)
}

// Inject queues an event from the network.
func (c *Chat) Inject(in router.Incoming) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, in)
}

// Pending returns the number of queued events.
func (c *Chat) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Pump delivers queued events one at a time until the queue is empty and
// returns how many were delivered.
func (c *Chat) Pump() int {
	n := 0
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return n
		}
		in := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.Deliver(in)
		n++
	}
}

func (c *Chat) registered() router.Interceptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interceptor
}

func (c *Chat) addMessage(in router.Incoming) *channel.Message {
	msg := c.NewMessage(in)
	c.surface.Append(msg)
	return msg
}

func (c *Chat) send(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, Outgoing{Text: text})
	c.queue = append(c.queue, router.Incoming{
		Type:    channel.TypePublic,
		Speaker: c.player,
		Text:    text,
	})
}

func (c *Chat) filterClicked(filter string, _ router.FilterEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
}

// Surface is an ordered list of message nodes.
type Surface struct {
	mu      sync.Mutex
	msgs    []*channel.Message
	version int
}

// Clear removes every node.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	s.version++
}

// Append adds a node at the bottom.
func (s *Surface) Append(msg *channel.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	s.version++
}

// Messages returns a snapshot of the nodes, top to bottom.
func (s *Surface) Messages() []*channel.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*channel.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Version increases on every change.
func (s *Surface) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}
