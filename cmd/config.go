package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tdx/internal/config"
	"github.com/oakwood-commons/tdx/pkg/settings"
)

// cliVersionString builds the version line for `tdx version` and --version.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, go %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, strings.TrimPrefix(runtime.Version(), "go"))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tdx version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tdx configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the merged configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ResolvePath(configFile), configFile != "")
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg, configOutput)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  "Write the built-in configuration to --config-file, or to the default path when unset. An existing file is kept unless --force is given.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultPath()
		}
		if path == "" {
			return usagef("cannot determine config path; pass --config-file")
		}
		if err := config.WriteDefault(path, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.ResolvePath(configFile)
		if path == "" {
			path = config.DefaultPath() + " (not found, using built-in defaults)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ResolvePath(configFile), configFile != "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Available themes (default: %s):\n", cfg.UI.Theme)
		for _, name := range cfg.ThemeNames() {
			fmt.Fprintf(out, " - %s\n", name)
		}
		return nil
	},
}

func writeConfig(w io.Writer, cfg config.Config, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	default:
		return usagef("invalid config output %q (expected yaml, json or toml)", format)
	}
}
