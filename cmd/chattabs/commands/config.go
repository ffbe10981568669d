package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/eachlabs/chattabs/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage chattabs configuration.

Subcommands:
  get [key]              Show configuration value(s)
  set <key> <value>      Set a configuration value
  edit                   Open config in $EDITOR
  path                   Show config file path`,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration",
	Long: `Show configuration values.

Examples:
  chattabs config get                    # Show all config
  chattabs config get player.name
  chattabs config get settings.Messaging.Enable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			// Show all config
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			enc := toml.NewEncoder(out)
			return enc.Encode(cfg)
		}

		// Get specific key
		key := args[0]
		value := getConfigValue(cfg, key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}

		if jsonOut {
			enc := json.NewEncoder(out)
			return enc.Encode(value)
		}

		fmt.Fprintf(out, "%v\n", value)
		return nil
	},
}

func getConfigValue(cfg *config.Config, key string) interface{} {
	section, rest, _ := strings.Cut(key, ".")

	switch section {
	case "player":
		switch rest {
		case "":
			return cfg.Player
		case "name":
			return cfg.Player.Name
		}

	case "chat":
		switch rest {
		case "":
			return cfg.Chat
		case "timestamps":
			return cfg.Chat.Timestamps
		case "timestamp_format":
			return cfg.Chat.TimestampFormat
		case "echo_peers":
			return cfg.Chat.EchoPeers
		}

	case "settings":
		if rest == "" {
			return cfg.Settings
		}
		// Setting keys contain dots themselves.
		if v, ok := cfg.Settings[rest]; ok {
			return v
		}

	case "logging":
		switch rest {
		case "":
			return cfg.Logging
		case "level":
			return cfg.Logging.Level
		case "file":
			return cfg.Logging.File
		}
	}

	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Examples:
  chattabs config set player.name "Jane Doe"
  chattabs config set settings.Messaging.Enable true
  chattabs config set chat.echo_peers "Bill Dipperly,Jane Doe"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := config.ReadFile(config.ConfigPath())
		if err != nil {
			return err
		}

		if err := setConfigValue(cfg, key, value); err != nil {
			return err
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

func setConfigValue(cfg *config.Config, key, value string) error {
	section, rest, _ := strings.Cut(key, ".")
	if rest == "" {
		return fmt.Errorf("invalid key: %s", key)
	}

	switch section {
	case "player":
		if rest != "name" {
			return fmt.Errorf("unknown field: %s", rest)
		}
		cfg.Player.Name = value

	case "chat":
		switch rest {
		case "timestamps":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			cfg.Chat.Timestamps = b
		case "timestamp_format":
			cfg.Chat.TimestampFormat = value
		case "echo_peers":
			var peers []string
			for _, p := range strings.Split(value, ",") {
				if p = strings.TrimSpace(p); p != "" {
					peers = append(peers, p)
				}
			}
			cfg.Chat.EchoPeers = peers
		default:
			return fmt.Errorf("unknown field: %s", rest)
		}

	case "settings":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Settings[rest] = b

	case "logging":
		switch rest {
		case "level":
			cfg.Logging.Level = value
		case "file":
			cfg.Logging.File = value
		default:
			return fmt.Errorf("unknown field: %s", rest)
		}

	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return nil
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config in editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vim"
		}

		// Ensure config exists
		cfg, err := config.ReadFile(config.ConfigPath())
		if err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}

		c := exec.Command(editor, config.ConfigPath())
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
	},
}
