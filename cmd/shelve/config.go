package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/shelve/pkg/shelve/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage shelve configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/shelve/config.yaml (if set)
  2. ~/.config/shelve/config.yaml

Environment variables override config file settings using the SHELVE_ prefix:
  SHELVE_OUTPUT_ROOT=sorted
  SHELVE_SORT_BY_YEAR=false
  SHELVE_MOVE=true

The API key is read from SHELVE_LLM_API_KEY or OPENAI_API_KEY, which may be
kept in a .env file in the working directory or the config directory.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration from all sources. The API key is masked.`,
		RunE:  a.runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  `Create a default configuration file if one doesn't exist.`,
		RunE:  runConfigInit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE:  a.runConfigPath,
	})
	return cmd
}

// runConfigShow displays the current configuration.
func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	if _, err := a.loadConfig(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := a.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", used)
	} else {
		fmt.Fprintln(out, "Config file: (using defaults, no file found)")
		fmt.Fprintln(out)
	}

	settings := a.v.AllSettings()
	if llm, ok := settings["llm"].(map[string]interface{}); ok {
		if key, ok := llm["api_key"].(string); ok && key != "" {
			llm["api_key"] = maskSecret(key)
		}
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// runConfigInit creates a default configuration file.
func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := config.ConfigFile()
	if err != nil {
		return err
	}
	existed := fileExists(path)

	if _, err := config.WriteDefault(); err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
	return nil
}

// runConfigPath displays the configuration file path.
func (a *app) runConfigPath(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		fmt.Fprintln(cmd.OutOrStdout(), a.cfgFile)
		return nil
	}
	path, err := config.ConfigFile()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
