package host

import (
	"errors"
	"testing"
	"time"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 20, 15, 0, 0, time.UTC)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := NewSession("Bob", nil, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return s
}

func surfaceTexts(c *Chat) []string {
	var out []string
	for _, m := range c.Messages() {
		out = append(out, m.Text)
	}
	return out
}

func TestChat_DefaultsWithoutInterceptor(t *testing.T) {
	c := New("Bob", WithClock(func() time.Time { return fixedNow }))

	m := c.Deliver(Say("Amy", "hello"))
	require.NotNil(t, m)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, fixedNow, m.Timestamp)

	c.Send("hi Amy")
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, 1, c.Pump())
	assert.Equal(t, []string{"hello", "hi Amy"}, surfaceTexts(c))
	assert.Equal(t, []Outgoing{{Text: "hi Amy"}}, c.Sent())

	c.ClickFilter("quest", router.FilterEvent{})
	assert.Equal(t, "quest", c.Filter())
}

func TestChat_RegisterOnce(t *testing.T) {
	s := newTestSession(t)
	err := s.Chat.Register(s.Controller)
	assert.True(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestChat_NoticeBypassesRouter(t *testing.T) {
	s := newTestSession(t)

	s.Chat.Notice("server restarting")

	assert.Equal(t, []string{"server restarting"}, s.Chat.Notices())
	assert.Equal(t, []string{"server restarting"}, surfaceTexts(s.Chat))
	assert.Empty(t, s.Controller.Store().Keys())
}

func TestChat_PrivateLoopbackAndResponder(t *testing.T) {
	s := newTestSession(t, WithResponder(func(peer, text string) (string, bool) {
		return "you said " + text, true
	}))
	require.NoError(t, s.SetEnabled(true))

	require.NoError(t, s.Chat.SendPrivate("Bill Dipperly", "hail"))
	assert.Equal(t, 2, s.Chat.Pump())

	msgs, err := s.Controller.Store().Get("Bill Dipperly")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "(PM to Bill Dipperly:", msgs[0].Speaker)
	assert.Equal(t, "(PM from Bill Dipperly:", msgs[1].Speaker)
	assert.Equal(t, "you said hail", msgs[1].Text)
	assert.Equal(t, channel.Key("Bill Dipperly"), s.Controller.Active())
}

func TestSession_RedirectedSend(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetEnabled(true))

	s.Chat.Inject(Tell("Jane Doe", "hi Bob"))
	s.Chat.Pump()
	require.NoError(t, s.Registry.Run("tab Jane Doe"))

	s.Chat.Send("hello")
	s.Chat.Pump()

	assert.Equal(t, []Outgoing{{Peer: "Jane Doe", Text: "hello", Private: true}}, s.Chat.Sent())
	assert.Equal(t, []string{"hi Bob", "hello"}, surfaceTexts(s.Chat))
}

func TestFormatMessage(t *testing.T) {
	ts := time.Date(2024, 5, 1, 20, 15, 0, 0, time.UTC)
	tests := []struct {
		name   string
		msg    *channel.Message
		layout string
		want   string
	}{
		{"public", &channel.Message{Type: channel.TypePublic, Speaker: "Amy", Text: "hi"}, "", "Amy: hi"},
		{"private", &channel.Message{Type: channel.TypePrivate, Speaker: "(PM from Amy:", Text: "hi"}, "", "(PM from Amy: hi"},
		{"notice", &channel.Message{Type: channel.TypeGame, Text: "welcome"}, "", "welcome"},
		{"timestamp", &channel.Message{Type: channel.TypeGame, Text: "welcome", Timestamp: ts}, "3:04PM", "[8:15PM] welcome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMessage(tt.msg, tt.layout))
		})
	}
}

func TestEchoResponder(t *testing.T) {
	r := EchoResponder([]string{"Bill Dipperly"})

	reply, ok := r("bill dipperly", "where is the ferry?")
	assert.True(t, ok)
	assert.Equal(t, "where is the ferry?", reply)

	_, ok = r("Jane Doe", "hi")
	assert.False(t, ok)
}
