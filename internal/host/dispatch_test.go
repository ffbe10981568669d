package host

import (
	"testing"

	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/stretchr/testify/assert"
)

func TestSession_Dispatch(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		line       string
		wantStatus string
		wantExit   bool
	}{
		{"", "", false},
		{"/filter", "usage: /filter <type>", false},
		{"/say Amy", "usage: /say <name> <msg>", false},
		{"/tell Jane hi", "usage: /tell <name>: <msg>", false},
		{"/toggle", "messaging system enabled: true", false},
		{"/toggle", "messaging system enabled: false", false},
		{"/dance", "unknown command: dance (try /help)", false},
		{"quit", "", true},
	}
	for _, tt := range tests {
		status, exit := s.Dispatch(tt.line)
		assert.Equal(t, tt.wantStatus, status, tt.line)
		assert.Equal(t, tt.wantExit, exit, tt.line)
	}
}

func TestSession_DispatchHelpListsCommands(t *testing.T) {
	s := newTestSession(t)
	status, _ := s.Dispatch("/help")
	assert.Contains(t, status, "/bill, /channels, /reset, /tab")
}

func TestSession_DispatchPrivateTab(t *testing.T) {
	s := newTestSession(t)
	s.Dispatch("/toggle")
	s.Dispatch("/tell Jane Doe: hi Bob")
	s.Dispatch("/tab Jane Doe")
	s.Dispatch("brb")

	assert.Equal(t, channel.Key("Jane Doe"), s.Controller.Active())
	assert.Equal(t, []string{"hi Bob", "brb"}, surfaceTexts(s.Chat))
}
