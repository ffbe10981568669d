// Package command classifies lines typed into the chat input.
package command

import (
	"regexp"
	"strings"
)

// Kind says what a typed line asks for.
type Kind int

const (
	Empty   Kind = iota
	Send         // plain text for the current channel
	Command      // "/name args"
	Private      // "@Peer: text", the client's own tell syntax
	Exit
)

func (k Kind) String() string {
	switch k {
	case Send:
		return "send"
	case Command:
		return "command"
	case Private:
		return "private"
	case Exit:
		return "exit"
	}
	return "empty"
}

// Input is a parsed line.
type Input struct {
	Kind     Kind
	Original string
	Text     string // message body for Send and Private
	Name     string // lowercased command name
	Args     string
	Peer     string
}

var (
	// "@Jane Doe: hello" allows names with spaces.
	peerColonRe = regexp.MustCompile(`^@([^:]+):\s*(.*)$`)
	// "@Jane hello"
	peerWordRe = regexp.MustCompile(`^@(\S+)\s+(.*)$`)
)

// Parse classifies line.
func Parse(line string) Input {
	in := Input{Original: line}
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		in.Kind = Empty
		return in

	case trimmed == "exit" || trimmed == "quit":
		in.Kind = Exit
		return in

	case strings.HasPrefix(trimmed, "/"):
		name, args, _ := strings.Cut(strings.TrimPrefix(trimmed, "/"), " ")
		in.Name = strings.ToLower(name)
		in.Args = strings.TrimSpace(args)
		if in.Name == "exit" || in.Name == "quit" {
			in.Kind = Exit
			return in
		}
		if in.Name == "" {
			in.Kind = Send
			in.Text = trimmed
			return in
		}
		in.Kind = Command
		return in

	case strings.HasPrefix(trimmed, "@"):
		if m := peerColonRe.FindStringSubmatch(trimmed); len(m) == 3 && strings.TrimSpace(m[1]) != "" {
			in.Kind = Private
			in.Peer = strings.TrimSpace(m[1])
			in.Text = m[2]
			return in
		}
		if m := peerWordRe.FindStringSubmatch(trimmed); len(m) == 3 {
			in.Kind = Private
			in.Peer = m[1]
			in.Text = m[2]
			return in
		}
	}

	in.Kind = Send
	in.Text = trimmed
	return in
}
