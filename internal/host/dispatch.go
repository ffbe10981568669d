package host

import (
	"fmt"
	"strings"

	"github.com/eachlabs/chattabs/internal/command"
	"github.com/eachlabs/chattabs/internal/router"
)

// Dispatch runs one typed line against the session, drains the network queue
// and returns a status line for the user plus whether they asked to exit.
func (s *Session) Dispatch(line string) (status string, exit bool) {
	in := command.Parse(line)

	switch in.Kind {
	case command.Empty:
		return "", false
	case command.Exit:
		return "", true
	case command.Send:
		s.Chat.Send(in.Text)
	case command.Private:
		if err := s.Chat.SendPrivate(in.Peer, in.Text); err != nil {
			status = fmt.Sprintf("[ERROR] %v", err)
		}
	case command.Command:
		status = s.runCommand(in)
	}

	s.Chat.Pump()
	return status, false
}

// Help lists what can be typed.
func (s *Session) Help() string {
	lines := []string{
		"Commands:",
		"  /help                 - Show this help",
		"  /filter <type>        - Click a filter button (all, game, quest, public, private)",
		"  /toggle               - Toggle the messaging system",
		"  /say <name> <msg>     - Receive a public message from name",
		"  /tell <name>: <msg>   - Receive a private message from name",
		"  /" + strings.Join(s.Registry.Commands(), ", /"),
		"  @name: <msg>          - Send a private message",
		"  /exit                 - Exit",
	}
	return strings.Join(lines, "\n")
}

func (s *Session) runCommand(in command.Input) string {
	switch in.Name {
	case "help":
		return s.Help()
	case "filter":
		if in.Args == "" {
			return "usage: /filter <type>"
		}
		s.Chat.ClickFilter(in.Args, router.FilterEvent{})
	case "toggle":
		state, err := s.ToggleEnabled()
		if err != nil {
			return fmt.Sprintf("[ERROR] %v", err)
		}
		return fmt.Sprintf("messaging system enabled: %v", state)
	case "say":
		name, text, ok := strings.Cut(in.Args, " ")
		if !ok {
			return "usage: /say <name> <msg>"
		}
		s.Chat.Inject(Say(name, text))
	case "tell":
		peer, text, ok := strings.Cut(in.Args, ":")
		if !ok {
			return "usage: /tell <name>: <msg>"
		}
		s.Chat.Inject(Tell(strings.TrimSpace(peer), strings.TrimSpace(text)))
	default:
		if err := s.Registry.Run(in.Name + " " + in.Args); err != nil {
			return fmt.Sprintf("%v (try /help)", err)
		}
	}
	return ""
}
