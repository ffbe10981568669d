// Package router files incoming chat into per-conversation channels and
// decides, for each chat event, whether the host's default handling runs or
// is overridden.
package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/plugin"
	"github.com/eachlabs/chattabs/internal/speaker"
	"github.com/rs/zerolog"
)

const (
	// SettingEnable is the settings key of the enable toggle.
	SettingEnable = "Messaging.Enable"
	settingLabel  = "Messaging System"

	legacyPeer channel.Key = "Bill Dipperly"

	noticePrefix        = "messaging: "
	noticePrivateFilter = noticePrefix + "private channels are not supported via click, reply to a message or use /tab <name>"
)

// ErrMissingHandler is returned by New when a required collaborator is nil.
var ErrMissingHandler = errors.New("missing host handler")

var _ Interceptor = (*Controller)(nil)

// Controller owns the channel store, the active channel and the enable flag.
// Every operation holds one lock for its whole duration.
type Controller struct {
	mu       sync.Mutex
	host     Host
	defaults Defaults
	store    *channel.Store
	active   channel.Key
	enabled  bool
	log      zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// New creates a disabled controller showing the "all" channel.
func New(host Host, defaults Defaults, opts ...Option) (*Controller, error) {
	switch {
	case host == nil:
		return nil, fmt.Errorf("%w: host", ErrMissingHandler)
	case defaults.AddMessage == nil:
		return nil, fmt.Errorf("%w: add message", ErrMissingHandler)
	case defaults.Send == nil:
		return nil, fmt.Errorf("%w: send", ErrMissingHandler)
	case defaults.FilterClicked == nil:
		return nil, fmt.Errorf("%w: filter clicked", ErrMissingHandler)
	}

	c := &Controller{
		host:     host,
		defaults: defaults,
		store:    channel.NewStore(),
		active:   channel.All,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "router").Logger()
	return c, nil
}

// Install declares the enable setting and the channel commands on reg.
func (c *Controller) Install(reg *plugin.Registry) error {
	enabled := reg.AddSetting(SettingEnable, false, settingLabel, c.SetEnabled)
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()

	commands := []struct {
		name    string
		handler plugin.CommandHandler
	}{
		{"bill", func(string) { c.RenderChannel(legacyPeer) }},
		{"reset", func(string) { c.RenderChannel(channel.All) }},
		{"tab", c.tabCommand},
		{"channels", c.channelsCommand},
	}
	for _, cmd := range commands {
		if err := reg.RegisterCommand(cmd.name, cmd.handler); err != nil {
			return fmt.Errorf("install %s: %w", cmd.name, err)
		}
	}
	return nil
}

// Store returns the channel store.
func (c *Controller) Store() *channel.Store {
	return c.store
}

// Active returns the channel currently rendered.
func (c *Controller) Active() channel.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Enabled reports whether interception is on.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetEnabled switches interception on or off. Either way the view goes back
// to "all"; stored history is kept.
func (c *Controller) SetEnabled(state bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = state
	c.active = channel.All
	c.log.Info().Bool("enabled", state).Msg("interception toggled")
	c.render(channel.All)
}

// RenderChannel replaces the surface with key's history and makes key the
// active channel.
func (c *Controller) RenderChannel(key channel.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(key)
}

// OnIncomingMessage lets the host render the event, then files the result.
// Filing happens even while disabled so no history is lost.
func (c *Controller) OnIncomingMessage(in Incoming) *channel.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.defaults.AddMessage(in)
	if msg == nil {
		return nil
	}

	switched := c.file(msg, in)
	// An active channel with no history yet keeps the host's view as is.
	if c.enabled && !switched && c.store.Has(c.active) {
		c.render(c.active)
	}
	return msg
}

// OnOutgoingSend redirects plain text to the active peer when a private
// channel is showing.
func (c *Controller) OnOutgoingSend(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.active.IsReserved() {
		c.defaults.Send(text)
		return
	}

	peer := string(c.active)
	if err := c.host.SendPrivate(peer, text); err != nil {
		c.log.Error().Err(err).Str("peer", peer).Msg("private send failed")
		return
	}
	c.log.Debug().Str("peer", peer).Msg("send redirected to private")
}

// OnFilterClicked switches channels from the host's filter buttons.
func (c *Controller) OnFilterClicked(filter string, ev FilterEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		c.defaults.FilterClicked(filter, ev)
		return
	}

	if filter == string(channel.TypePrivate) {
		c.host.Notice(noticePrivateFilter)
		return
	}

	c.defaults.FilterClicked(filter, ev)
	c.render(channel.Key(filter))
}

// file stores msg under the channels its type maps to. It reports whether it
// already switched the view to a private conversation.
func (c *Controller) file(msg *channel.Message, in Incoming) bool {
	switch in.Type {
	case channel.TypeGame:
		c.store.Append(channel.Game, msg)
		c.store.Append(channel.All, msg)
	case channel.TypePublic:
		c.store.Append(channel.Public, msg)
		c.store.Append(channel.All, msg)
	case channel.TypeQuest:
		c.store.Append(channel.Quest, msg)
		c.store.Append(channel.All, msg)
	case channel.TypePrivate:
		label, err := speaker.ParsePrivate(in.Speaker)
		if err != nil {
			c.log.Warn().Err(err).Msg("private message not filed")
			return false
		}

		me := c.host.LocalPlayer()
		// Both directions compare against the local player the same way.
		if (label.Direction == speaker.From && label.Peer != me) ||
			(label.Direction == speaker.To && label.Peer != me) {
			key := channel.Key(label.Peer)
			c.store.Append(key, msg)
			if c.enabled && label.Direction == speaker.To {
				c.render(key)
				return true
			}
		}
	default:
		c.log.Debug().Str("type", string(in.Type)).Msg("unclassified message")
	}
	return false
}

func (c *Controller) render(key channel.Key) error {
	msgs, err := c.store.Get(key)
	if err != nil {
		c.host.Notice(noticePrefix + "no such channel: " + string(key))
		return err
	}

	surface := c.host.Surface()
	surface.Clear()
	c.active = key
	for _, m := range msgs {
		surface.Append(m)
	}
	return nil
}

func (c *Controller) tabCommand(args string) {
	if args == "" {
		c.mu.Lock()
		c.host.Notice(noticePrefix + "usage: /tab <channel>")
		c.mu.Unlock()
		return
	}
	c.RenderChannel(channel.Key(args))
}

func (c *Controller) channelsCommand(string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.store.Keys()
	if len(keys) == 0 {
		c.host.Notice(noticePrefix + "no channels yet")
		return
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		entry := fmt.Sprintf("%s (%s)", k, humanize.Comma(int64(c.store.Len(k))))
		if last, ok := c.store.Last(k); ok && !last.Timestamp.IsZero() {
			entry += " last " + humanize.Time(last.Timestamp)
		}
		if k == c.active {
			entry = "*" + entry
		}
		parts = append(parts, entry)
	}
	c.host.Notice(noticePrefix + strings.Join(parts, ", "))
}
