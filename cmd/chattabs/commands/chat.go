package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/eachlabs/chattabs/internal/config"
	"github.com/eachlabs/chattabs/internal/host"
	"github.com/eachlabs/chattabs/internal/logging"
	"github.com/eachlabs/chattabs/internal/router"
	"github.com/eachlabs/chattabs/internal/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	chatSimple bool
	chatPlayer string
	chatEnable bool
	chatWatch  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start interactive chat",
	Long: `Start an interactive chat session with channel tabs.

Examples:
  chattabs chat
  chattabs chat --player "Jane Doe" --enable
  chattabs chat --simple   # Use simple terminal mode
  chattabs chat --watch    # Follow messaging setting changes in the config file`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatSimple, "simple", false, "use simple terminal mode (no TUI)")
	chatCmd.Flags().StringVarP(&chatPlayer, "player", "p", "", "local player name")
	chatCmd.Flags().BoolVar(&chatEnable, "enable", false, "start with the messaging system on")
	chatCmd.Flags().BoolVar(&chatWatch, "watch", false, "reload the messaging setting when the config file changes")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Ensure directories exist
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if chatPlayer != "" {
		cfg.Player.Name = chatPlayer
	}
	if chatEnable {
		cfg.Settings[router.SettingEnable] = true
	}

	// The TUI owns the screen, so it logs to a file.
	logCfg := cfg.Logging
	var console io.Writer = os.Stderr
	if !chatSimple && logCfg.File == "" {
		logCfg.File = filepath.Join(config.LogsDir(), "chattabs.log")
	}
	log, closer, err := logging.New(logCfg, console)
	if err != nil {
		return err
	}
	defer closer.Close()

	session, err := host.NewSession(cfg.Player.Name, cfg.Settings, log,
		host.WithResponder(host.EchoResponder(cfg.Chat.EchoPeers)))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var updates chan bool
	if chatWatch {
		updates = make(chan bool)
		go watchSettings(ctx, log, updates)
	}

	if chatSimple {
		return runSimpleChat(ctx, session, cfg.TimeLayout(), updates)
	}
	return tui.RunChat(session, cfg.TimeLayout(), updates)
}

// watchSettings pushes the stored messaging toggle every time the config
// file changes.
func watchSettings(ctx context.Context, log zerolog.Logger, updates chan<- bool) {
	path := config.ConfigPath()
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config reload failed")
			return
		}
		select {
		case updates <- cfg.Settings[router.SettingEnable]:
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("config watcher stopped")
	}
}

func runSimpleChat(ctx context.Context, session *host.Session, timeLayout string, updates <-chan bool) error {
	fmt.Printf("chattabs - playing as %s\n", session.Chat.LocalPlayer())
	fmt.Println("Type /help for commands, /exit to quit")

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v := <-updates:
					if err := session.SetEnabled(v); err != nil {
						fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
					}
				}
			}
		}()
	}

	term := host.NewTerminal(session, os.Stdin, os.Stdout, timeLayout)
	if err := term.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("\nGoodbye!")
	return nil
}
