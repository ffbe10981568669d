package host

import (
	"fmt"

	"github.com/eachlabs/chattabs/internal/plugin"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/rs/zerolog"
)

// Session wires a client, the plugin registry and the message router
// together the way the game client loads a plugin at login.
type Session struct {
	Chat       *Chat
	Registry   *plugin.Registry
	Controller *router.Controller
}

// NewSession logs player in, installs the router into the registry and
// registers it as the chat interceptor. settings holds saved setting values.
func NewSession(player string, settings map[string]bool, log zerolog.Logger, opts ...Option) (*Session, error) {
	chat := New(player, append([]Option{WithLogger(log)}, opts...)...)
	reg := plugin.NewRegistry(settings, log)

	ctrl, err := router.New(chat, chat.Defaults(), router.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	if err := ctrl.Install(reg); err != nil {
		return nil, fmt.Errorf("failed to install router: %w", err)
	}
	if err := chat.Register(ctrl); err != nil {
		return nil, fmt.Errorf("failed to register router: %w", err)
	}

	return &Session{
		Chat:       chat,
		Registry:   reg,
		Controller: ctrl,
	}, nil
}

// SetEnabled flips the router's enable setting.
func (s *Session) SetEnabled(state bool) error {
	return s.Registry.Set(router.SettingEnable, state)
}

// ToggleEnabled flips the enable setting and returns the new value.
func (s *Session) ToggleEnabled() (bool, error) {
	return s.Registry.Toggle(router.SettingEnable)
}
