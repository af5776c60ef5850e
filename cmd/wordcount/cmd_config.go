package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/nvandessel/wordcount/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wordcount configuration",
		Long: `View and modify wordcount configuration settings.

Configuration is stored in ~/.wordcount/config.yaml. Environment variables
(WORDCOUNT_LOG_LEVEL, WORDCOUNT_MODE, WORDCOUNT_TOP, WORDCOUNT_HISTORY,
WORDCOUNT_HISTORY_PATH) override the file.

Examples:
  wordcount config list                     # Show all settings
  wordcount config get count.mode           # Get a specific setting
  wordcount config set count.top 25         # Set a setting
  wordcount config set history.enabled true`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			historyPath, _ := cfg.HistoryPath()
			fmt.Fprintln(out, "Configuration (~/.wordcount/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  logging.level:    %s\n", valueOrDefault(cfg.Logging.Level, "(default)"))
			fmt.Fprintf(out, "  count.mode:       %s\n", cfg.Count.Mode)
			fmt.Fprintf(out, "  count.top:        %d\n", cfg.Count.Top)
			fmt.Fprintf(out, "  history.enabled:  %v\n", cfg.History.Enabled)
			fmt.Fprintf(out, "  history.path:     %s\n", valueOrDefault(cfg.History.Path, historyPath+" (default)"))
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			configPath, err := config.Path()
			if err != nil {
				return err
			}
			// Start from the file alone so environment overrides are not persisted.
			cfg, err := config.LoadFromFile(configPath)
			if errors.Is(err, fs.ErrNotExist) {
				cfg = config.Default()
			} else if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.SaveToFile(cfg, configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (interface{}, bool) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, true
	case "count.mode":
		return cfg.Count.Mode, true
	case "count.top":
		return cfg.Count.Top, true
	case "history.enabled":
		return cfg.History.Enabled, true
	case "history.path":
		return cfg.History.Path, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "logging.level":
		cfg.Logging.Level = value
	case "count.mode":
		if err := config.ValidateMode(value); err != nil {
			return err
		}
		cfg.Count.Mode = value
	case "count.top":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid top: %s (must be a non-negative integer)", value)
		}
		cfg.Count.Top = n
	case "history.enabled":
		cfg.History.Enabled = value == "true" || value == "1"
	case "history.path":
		cfg.History.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
