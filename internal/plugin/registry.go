// Package plugin is the host's extension surface: boolean settings with
// change callbacks and named chat commands.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownSetting is returned when setting a key that was never declared.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrUnknownCommand is returned when running a command nobody registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCommandExists is returned when a command name is already taken.
	ErrCommandExists = errors.New("command already registered")

	// ErrInvalidCommand is returned for empty names or names with spaces.
	ErrInvalidCommand = errors.New("invalid command name")
)

// CommandHandler runs a command with everything after its name.
type CommandHandler func(args string)

// Setting is a declared boolean toggle.
type Setting struct {
	Key     string
	Label   string
	Default bool
	Value   bool

	onChange func(bool)
}

// Registry holds the settings and commands registered by plugins.
type Registry struct {
	mu       sync.Mutex
	stored   map[string]bool
	settings map[string]*Setting
	commands map[string]CommandHandler
	log      zerolog.Logger
}

// NewRegistry creates a registry. stored carries previously saved setting
// values; keys that are never declared are ignored.
func NewRegistry(stored map[string]bool, log zerolog.Logger) *Registry {
	values := make(map[string]bool, len(stored))
	for k, v := range stored {
		values[k] = v
	}
	return &Registry{
		stored:   values,
		settings: make(map[string]*Setting),
		commands: make(map[string]CommandHandler),
		log:      log.With().Str("component", "plugin").Logger(),
	}
}

// AddSetting declares a boolean setting and returns its current value. A
// stored value wins over def. Declaring a key twice keeps the first
// declaration.
func (r *Registry) AddSetting(key string, def bool, label string, onChange func(bool)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.settings[key]; ok {
		return s.Value
	}

	value := def
	if v, ok := r.stored[key]; ok {
		value = v
	}
	r.settings[key] = &Setting{
		Key:      key,
		Label:    label,
		Default:  def,
		Value:    value,
		onChange: onChange,
	}
	r.log.Debug().Str("setting", key).Bool("value", value).Msg("setting declared")
	return value
}

// Set changes a setting. The change callback only runs when the value
// actually changes, and runs outside the registry lock.
func (r *Registry) Set(key string, value bool) error {
	r.mu.Lock()
	s, ok := r.settings[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if s.Value == value {
		r.mu.Unlock()
		return nil
	}
	s.Value = value
	onChange := s.onChange
	r.mu.Unlock()

	r.log.Info().Str("setting", key).Bool("value", value).Msg("setting changed")
	if onChange != nil {
		onChange(value)
	}
	return nil
}

// Toggle flips a setting and returns the new value.
func (r *Registry) Toggle(key string) (bool, error) {
	r.mu.Lock()
	s, ok := r.settings[key]
	var next bool
	if ok {
		next = !s.Value
	}
	r.mu.Unlock()

	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return next, r.Set(key, next)
}

// Get returns a setting's value and whether it was declared.
func (r *Registry) Get(key string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[key]
	if !ok {
		return false, false
	}
	return s.Value, true
}

// Settings returns a snapshot of all declared settings sorted by key.
func (r *Registry) Settings() []Setting {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Setting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, Setting{Key: s.Key, Label: s.Label, Default: s.Default, Value: s.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RegisterCommand adds a command. Names are case-insensitive.
func (r *Registry) RegisterCommand(name string, handler CommandHandler) error {
	name = strings.ToLower(name)
	if name == "" || strings.ContainsAny(name, " \t\n") || handler == nil {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; ok {
		return fmt.Errorf("%w: %s", ErrCommandExists, name)
	}
	r.commands[name] = handler
	return nil
}

// Run executes "name args". A leading slash is accepted.
func (r *Registry) Run(line string) error {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)

	r.mu.Lock()
	handler, ok := r.commands[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	r.log.Debug().Str("command", name).Str("args", args).Msg("running command")
	handler(strings.TrimSpace(args))
	return nil
}

// Commands returns the registered command names, sorted.
func (r *Registry) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
