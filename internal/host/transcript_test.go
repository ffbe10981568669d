package host

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTranscript = `
player = "Bob"
enabled = true

[[event]]
kind = "incoming"
type = "public"
speaker = "Amy"
text = "anyone for the mines?"

[[event]]
kind = "incoming"
type = "private"
speaker = "(PM to Jane Doe:"
text = "hi"

[[event]]
kind = "send"
text = "want to group up?"

[[event]]
kind = "filter"
filter = "public"

[[event]]
kind = "send"
text = "lfg mines"

[[event]]
kind = "command"
command = "tab Jane Doe"
`

func TestParseTranscript(t *testing.T) {
	tr, err := ParseTranscript(strings.NewReader(sampleTranscript))
	require.NoError(t, err)

	assert.Equal(t, "Bob", tr.Player)
	assert.True(t, tr.Enabled)
	require.Len(t, tr.Events, 6)
	assert.Equal(t, EventFilter, tr.Events[3].Kind)
	assert.Equal(t, "public", tr.Events[3].Filter)
}

func TestParseTranscript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown kind", "[[event]]\nkind = \"dance\"\n"},
		{"incoming without type", "[[event]]\nkind = \"incoming\"\ntext = \"x\"\n"},
		{"filter without filter", "[[event]]\nkind = \"filter\"\n"},
		{"command without command", "[[event]]\nkind = \"command\"\n"},
		{"bad toml", "player = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranscript(strings.NewReader(tt.body))
			assert.Error(t, err)
		})
	}

	_, err := ParseTranscript(strings.NewReader("[[event]]\nkind = \"dance\"\n"))
	assert.True(t, errors.Is(err, ErrUnknownEvent))
}

func TestSession_Replay(t *testing.T) {
	tr, err := ParseTranscript(strings.NewReader(sampleTranscript))
	require.NoError(t, err)

	s := newTestSession(t)
	require.NoError(t, s.Replay(tr))

	jane, err := s.Controller.Store().Get("Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", "want to group up?"}, texts(jane))

	public, err := s.Controller.Store().Get(channel.Public)
	require.NoError(t, err)
	assert.Equal(t, []string{"anyone for the mines?", "lfg mines"}, texts(public))

	assert.Equal(t, channel.Key("Jane Doe"), s.Controller.Active())
	assert.Equal(t, []string{"hi", "want to group up?"}, surfaceTexts(s.Chat))
	assert.Equal(t, "public", s.Chat.Filter())
}

func TestSession_ReplayStopsOnUnknownCommand(t *testing.T) {
	s := newTestSession(t)
	tr := &Transcript{Events: []Event{
		{Kind: EventIncoming, Type: "game", Text: "welcome"},
		{Kind: EventCommand, Command: "dance"},
		{Kind: EventIncoming, Type: "game", Text: "never"},
	}}

	err := s.Replay(tr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, plugin.ErrUnknownCommand))
	assert.Contains(t, err.Error(), "event 2")
	assert.Equal(t, 1, s.Controller.Store().Len(channel.Game))
}

func TestSession_ReplayToggles(t *testing.T) {
	s := newTestSession(t)
	tr := &Transcript{Events: []Event{
		{Kind: EventIncoming, Type: "quest", Text: "quest accepted"},
		{Kind: EventEnable},
		{Kind: EventFilter, Filter: "quest"},
		{Kind: EventDisable},
	}}

	require.NoError(t, s.Replay(tr))
	assert.False(t, s.Controller.Enabled())
	assert.Equal(t, channel.All, s.Controller.Active())
	assert.Equal(t, 1, s.Controller.Store().Len(channel.All))
}

func TestLoadTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTranscript), 0644))

	tr, err := LoadTranscript(path)
	require.NoError(t, err)
	assert.Len(t, tr.Events, 6)

	_, err = LoadTranscript(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func texts(msgs []*channel.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestSession_ReplayCarriesIcon(t *testing.T) {
	tr, err := ParseTranscript(strings.NewReader(`
[[event]]
kind = "incoming"
type = "game"
text = "You have leveled up"
icon = true
`))
	require.NoError(t, err)

	s := newTestSession(t)
	require.NoError(t, s.Replay(tr))

	msgs, err := s.Controller.Store().Get(channel.Game)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Icon)
}
