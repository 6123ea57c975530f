package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tdx/internal/formatter"
	"github.com/oakwood-commons/tdx/pkg/logger"
	"github.com/oakwood-commons/tdx/pkg/settings"
)

var (
	interactive    bool
	source         string
	sourceFormat   string
	searchFlag     string
	completedFlag  string
	output         string
	configOutput   string
	showLocation   bool
	configFile     string
	themeName      string
	noColor        bool
	debug          bool
	logFile        string
	renderSnapshot bool
	snapshotWidth  int
	snapshotHeight int
	maxURLLength   int
	timeout        time.Duration
	forceInit      bool
)

var (
	rootCtx = context.Background()
	logSink io.Closer
)

// usageError marks invalid flags and arguments; the process exits with 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [location]",
	Short: "Browse and filter a task list from the terminal",
	Long: `tdx fetches a task list and shows the tasks matching a title search and a
completion status. The filters live in the query string of a location such as
/todos?q=milk&completed=not-completed: pass one as the argument to open a
deep link, and use back/forward in the interactive view to step through
earlier filters.`,
	Example: "\n  tdx\n  tdx '/todos?q=aut&completed=completed' -o json\n  tdx -s todos.yaml --search milk\n  curl -s https://jsonplaceholder.typicode.com/todos | tdx -i -s -\n",
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		run := settings.NewCliParams()
		if debug {
			run.MinLogLevel = -1
		}
		run.Interactive = interactive
		run.NoColor = noColor
		lgr := logger.Get(run.MinLogLevel)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logger.Sync()
		if logSink != nil {
			_ = logSink.Close()
			logSink = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoot(cmd, args)
	},
}

// setupLogging picks the log sink before the logger is first built. The
// interactive view owns the terminal, so without --log-file it logs nowhere.
func setupLogging() error {
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logSink = f
		logger.SetOutput(f)
	case interactive && !renderSnapshot:
		logger.SetOutput(io.Discard)
	}
	return nil
}

func init() { //nolint:gochecknoinits
	flags := rootCmd.Flags()
	flags.BoolVarP(&interactive, "interactive", "i", false, "start the interactive view")
	flags.StringVarP(&source, "source", "s", "", "task source: http(s) URL, file (.json, .jsonc, .yaml, .toml) or - for stdin (default from config)")
	flags.StringVar(&sourceFormat, "source-format", "json", "format of stdin when --source is -: json|yaml|toml")
	flags.StringVar(&searchFlag, "search", "", "search titles (applied like typed input)")
	flags.StringVar(&completedFlag, "completed", "", "completion status: all|completed|not-completed (applied like selected input)")
	flags.StringVarP(&output, "output", "o", "", "output format: "+formatter.FormatNames()+" (default from config)")
	flags.BoolVar(&showLocation, "show-location", false, "print the final location to stderr (stdout after the interactive view)")
	flags.StringVar(&themeName, "theme", "", "theme name (default from config; see 'tdx themes')")
	flags.BoolVar(&noColor, "no-color", false, "disable color output")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	flags.BoolVar(&renderSnapshot, "snapshot", false, "render a single frame of the interactive view and exit; honors --width/--height")
	flags.IntVar(&snapshotWidth, "width", 0, "output width in columns (affects table output and the interactive layout)")
	flags.IntVar(&snapshotHeight, "height", 0, "output height in rows (interactive layout)")
	flags.IntVar(&maxURLLength, "max-url-length", 0, "reject locations longer than this (default from config)")
	flags.DurationVar(&timeout, "timeout", 0, "data load timeout (default from config)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	configCmd.PersistentFlags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|toml")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configGetCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(versionCmd, configCmd, themesCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
