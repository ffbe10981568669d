package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Terminal is a line-mode front end for a session.
type Terminal struct {
	session    *Session
	in         io.Reader
	out        io.Writer
	timeLayout string
	shown      int
}

// NewTerminal creates a terminal reading commands from in and printing the
// chat to out.
func NewTerminal(s *Session, in io.Reader, out io.Writer, timeLayout string) *Terminal {
	return &Terminal{
		session:    s,
		in:         in,
		out:        out,
		timeLayout: timeLayout,
		shown:      -1,
	}
}

// Run reads lines until EOF, an exit command, or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	t.session.Chat.Pump()
	t.refresh()
	for {
		fmt.Fprint(t.out, "\n> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			status, exit := t.session.Dispatch(line)
			if exit {
				return nil
			}
			if status != "" {
				fmt.Fprintln(t.out, status)
			}
			t.refresh()
		}
	}
}

// refresh prints the surface if it changed since the last call.
func (t *Terminal) refresh() {
	surface := t.session.Chat.surface
	v := surface.Version()
	if v == t.shown {
		return
	}
	t.shown = v

	ctrl := t.session.Controller
	status := "off"
	if ctrl.Enabled() {
		status = "on"
	}
	fmt.Fprintf(t.out, "\n── %s ── messaging %s\n", ctrl.Active(), status)
	for _, m := range surface.Messages() {
		fmt.Fprintln(t.out, FormatMessage(m, t.timeLayout))
	}
}
