package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/eachlabs/chattabs/internal/channel"
	"github.com/eachlabs/chattabs/internal/config"
	"github.com/eachlabs/chattabs/internal/host"
	"github.com/eachlabs/chattabs/internal/logging"
	"github.com/spf13/cobra"
)

var replayPlayer string

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Run a transcript and print every channel",
	Long: `Feed a TOML transcript of chat events through the router and print
the resulting channels.

Examples:
  chattabs replay session.toml
  chattabs replay session.toml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayPlayer, "player", "p", "", "override the transcript's player")
}

var (
	replayHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A855F7"))
	replayDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type replayMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Speaker   string    `json:"speaker,omitempty"`
	Text      string    `json:"text"`
}

type replayChannel struct {
	Key      string          `json:"key"`
	Messages []replayMessage `json:"messages"`
}

type replayResult struct {
	Player   string          `json:"player"`
	Enabled  bool            `json:"enabled"`
	Active   string          `json:"active"`
	Channels []replayChannel `json:"channels"`
	Notices  []string        `json:"notices,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tr, err := host.LoadTranscript(args[0])
	if err != nil {
		return err
	}
	player := tr.Player
	if replayPlayer != "" {
		player = replayPlayer
	}
	if player == "" {
		player = cfg.Player.Name
	}

	log, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	session, err := host.NewSession(player, nil, log,
		host.WithResponder(host.EchoResponder(cfg.Chat.EchoPeers)))
	if err != nil {
		return err
	}
	if err := session.Replay(tr); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	res := collectReplay(session)
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printReplay(cmd.OutOrStdout(), res, cfg)
	return nil
}

func collectReplay(s *host.Session) replayResult {
	ctrl := s.Controller
	res := replayResult{
		Player:  s.Chat.LocalPlayer(),
		Enabled: ctrl.Enabled(),
		Active:  string(ctrl.Active()),
		Notices: s.Chat.Notices(),
	}

	store := ctrl.Store()
	for _, k := range store.Keys() {
		msgs, err := store.Get(k)
		if err != nil {
			continue
		}
		ch := replayChannel{Key: string(k), Messages: make([]replayMessage, 0, len(msgs))}
		for _, m := range msgs {
			ch.Messages = append(ch.Messages, replayMessage{
				Type:      string(m.Type),
				Timestamp: m.Timestamp,
				Speaker:   m.Speaker,
				Text:      m.Text,
			})
		}
		res.Channels = append(res.Channels, ch)
	}
	return res
}

func printReplay(w io.Writer, res replayResult, cfg *config.Config) {
	state := "off"
	if res.Enabled {
		state = "on"
	}
	fmt.Fprintf(w, "%s %s\n", replayHeaderStyle.Render(res.Player),
		replayDimStyle.Render(fmt.Sprintf("(messaging %s, showing %s)", state, res.Active)))

	if len(res.Channels) == 0 {
		fmt.Fprintln(w, "No channels.")
	}
	for _, ch := range res.Channels {
		fmt.Fprintf(w, "\n%s %s\n", replayHeaderStyle.Render(ch.Key),
			replayDimStyle.Render(humanize.Comma(int64(len(ch.Messages)))+" messages"))
		for _, m := range ch.Messages {
			fmt.Fprintln(w, "  "+host.FormatMessage(&channel.Message{
				Type:      channel.Type(m.Type),
				Timestamp: m.Timestamp,
				Speaker:   m.Speaker,
				Text:      m.Text,
			}, cfg.TimeLayout()))
		}
	}

	if len(res.Notices) > 0 {
		fmt.Fprintf(w, "\n%s\n", replayHeaderStyle.Render("notices"))
		for _, n := range res.Notices {
			fmt.Fprintln(w, "  "+n)
		}
	}
}
