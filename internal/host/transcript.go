package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/router"
)

// ErrUnknownEvent is returned for transcript events with an unknown kind.
var ErrUnknownEvent = errors.New("unknown event kind")

// Event kinds understood in transcripts.
const (
	EventIncoming = "incoming"
	EventSend     = "send"
	EventFilter   = "filter"
	EventCommand  = "command"
	EventEnable   = "enable"
	EventDisable  = "disable"
)

// Transcript is a scripted chat session.
//
//	player = "Bob"
//	enabled = true
//
//	[[event]]
//	kind = "incoming"
//	type = "private"
//	speaker = "(PM from Jane Doe:"
//	text = "hi"
type Transcript struct {
	Player  string  `toml:"player"`
	Enabled bool    `toml:"enabled"`
	Events  []Event `toml:"event"`
}

// Event is one step of a transcript.
type Event struct {
	Kind    string    `toml:"kind"`
	Type    string    `toml:"type,omitempty"`
	Speaker string    `toml:"speaker,omitempty"`
	Text    string    `toml:"text,omitempty"`
	Icon    bool      `toml:"icon,omitempty"`
	Filter  string    `toml:"filter,omitempty"`
	Command string    `toml:"command,omitempty"`
	At      time.Time `toml:"at,omitempty"`
}

// LoadTranscript reads a transcript file.
func LoadTranscript(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ParseTranscript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTranscript decodes and validates a transcript.
func ParseTranscript(r io.Reader) (*Transcript, error) {
	var t Transcript
	if _, err := toml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	for i, ev := range t.Events {
		switch ev.Kind {
		case EventIncoming:
			if ev.Type == "" {
				return nil, fmt.Errorf("event %d: incoming event needs a type", i+1)
			}
		case EventFilter:
			if ev.Filter == "" {
				return nil, fmt.Errorf("event %d: filter event needs a filter", i+1)
			}
		case EventCommand:
			if ev.Command == "" {
				return nil, fmt.Errorf("event %d: command event needs a command", i+1)
			}
		case EventSend, EventEnable, EventDisable:
		default:
			return nil, fmt.Errorf("event %d: %w: %q", i+1, ErrUnknownEvent, ev.Kind)
		}
	}
	return &t, nil
}

// Apply runs one event and then drains the network queue.
func (s *Session) Apply(ev Event) error {
	switch ev.Kind {
	case EventIncoming:
		s.Chat.Inject(router.Incoming{
			Type:      channel.Type(ev.Type),
			Timestamp: ev.At,
			Speaker:   ev.Speaker,
			Text:      ev.Text,
			Icon:      ev.Icon,
		})
	case EventSend:
		s.Chat.Send(ev.Text)
	case EventFilter:
		s.Chat.ClickFilter(ev.Filter, router.FilterEvent{})
	case EventCommand:
		if err := s.Registry.Run(ev.Command); err != nil {
			return err
		}
	case EventEnable:
		if err := s.SetEnabled(true); err != nil {
			return err
		}
	case EventDisable:
		if err := s.SetEnabled(false); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	s.Chat.Pump()
	return nil
}

// Replay applies every event of t in order, stopping at the first failure.
func (s *Session) Replay(t *Transcript) error {
	if t.Enabled {
		if err := s.SetEnabled(true); err != nil {
			return err
		}
	}
	for i, ev := range t.Events {
		if err := s.Apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i+1, ev.Kind, err)
		}
	}
	return nil
}
