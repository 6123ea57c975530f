package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tdx/internal/config"
	"github.com/oakwood-commons/tdx/internal/formatter"
	"github.com/oakwood-commons/tdx/internal/gateway"
	"github.com/oakwood-commons/tdx/internal/navigation"
	"github.com/oakwood-commons/tdx/internal/pipeline"
	"github.com/oakwood-commons/tdx/internal/session"
	"github.com/oakwood-commons/tdx/internal/ui"
	"github.com/oakwood-commons/tdx/pkg/logger"
	"github.com/oakwood-commons/tdx/pkg/settings"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := rootCtx
	lgr := logger.FromContext(ctx)
	run := settings.FromContextOrDefault(ctx)

	cfg, err := config.Load(config.ResolvePath(configFile), configFile != "")
	if err != nil {
		return err
	}
	switch {
	case len(args) > 0:
		run.Location = args[0]
	case cfg.Navigation.Path != "":
		run.Location = cfg.Navigation.Path
	}
	run.Source = cfg.Source.URL
	if cmd.Flags().Changed("source") {
		run.Source = source
	}
	ctx = settings.IntoContext(ctx, run)

	format, err := resolveFormat(cmd, cfg)
	if err != nil {
		return err
	}
	themeCfg, err := cfg.Theme(themeName)
	if err != nil {
		return usageError{err: err}
	}
	theme := ui.ThemeFromConfig(themeCfg)

	search, completed, err := filterFlags(cmd)
	if err != nil {
		return err
	}

	loadTimeout, err := cfg.Source.TimeoutDuration()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		loadTimeout = timeout
	}

	navOpts := navigation.Options{
		MaxURLLength: cfg.Navigation.MaxURLLength,
		MaxEntries:   cfg.Navigation.MaxEntries,
		Replace:      cfg.Navigation.Replace,
	}
	if cmd.Flags().Changed("max-url-length") {
		navOpts.MaxURLLength = maxURLLength
	}
	history, err := startHistory(ctx, navOpts)
	if err != nil {
		return err
	}
	src := buildSource(ctx, cfg)
	lgr.V(1).Info("starting", "source", run.Source, logger.LocationKey, history.String(), "interactive", run.Interactive)

	if run.Interactive || renderSnapshot {
		width, height := snapshotWidth, snapshotHeight
		if renderSnapshot {
			width, height = ui.TerminalSize(width, height)
		}
		m := ui.NewModel(ctx, history, src, ui.Options{
			AppName:     cfg.App.Name,
			Theme:       theme,
			Placeholder: cfg.UI.Placeholder,
			EmptyText:   cfg.UI.EmptyText,
			LoadingText: cfg.UI.LoadingText,
			ErrorText:   cfg.UI.ErrorText,
			TitleWidth:  cfg.UI.TitleWidth,
			Width:       width,
			Height:      height,
			Timeout:     loadTimeout,
			Logger:      lgr.WithName("ui"),
			Search:      search,
			Completed:   completed,
			ManualLoad:  renderSnapshot,
		})
		if renderSnapshot {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Snapshot(m))
			return nil
		}
		opts, cleanup := getProgramOptions()
		defer cleanup()
		err := ui.Run(m, opts...)
		lgr.V(1).Info("view closed", "bridge", m.Session().Bridge().Stats(), logger.LocationKey, history.String())
		if err != nil {
			return err
		}
		if showLocation {
			fmt.Fprintln(cmd.OutOrStdout(), history.String())
		}
		return nil
	}

	rows, err := loadRows(ctx, *lgr, history, src, loadTimeout, search, completed, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if showLocation {
		fmt.Fprintln(cmd.ErrOrStderr(), history.String())
	}
	return writeRows(ctx, cmd.OutOrStdout(), rows, formatter.Options{
		Format:     format,
		Marker:     pipeline.Marker{Open: cfg.UI.Highlight.Open, Close: cfg.UI.Highlight.Close},
		Width:      outputWidth(),
		TitleWidth: cfg.UI.TitleWidth,
		Colors:     theme.TableColors(),
		EmptyText:  cfg.UI.EmptyText,
	})
}

// startHistory opens the navigation history at the run's location.
func startHistory(ctx context.Context, opts navigation.Options) (*navigation.History, error) {
	run := settings.FromContextOrDefault(ctx)
	start, err := navigation.ParseLocation(run.Location)
	if err != nil {
		return nil, usageError{err: err}
	}
	return navigation.NewHistory(start, opts), nil
}

// writeRows formats rows for stdout. Color is off when the run asks for it
// or stdout is not a terminal.
func writeRows(ctx context.Context, w io.Writer, rows []pipeline.VisibleRow, opts formatter.Options) error {
	run := settings.FromContextOrDefault(ctx)
	opts.NoColor = run.NoColor || stdoutIsPiped()
	return formatter.Write(w, rows, opts)
}

// loadRows runs one mount of the view without a terminal: restore the
// filters from the location, apply flag input, load, derive.
func loadRows(ctx context.Context, lgr logr.Logger, history *navigation.History, src gateway.Source, loadTimeout time.Duration, search, completed *string, warn io.Writer) ([]pipeline.VisibleRow, error) {
	s := session.New(history, src, session.Options{
		Logger:  lgr.WithName("session"),
		Timeout: loadTimeout,
		OnNavigateError: func(err error) {
			fmt.Fprintf(warn, "warning: location not updated: %v\n", err)
		},
	})
	s.Mount(ctx, nil)
	defer s.Unmount()

	if search != nil {
		s.Store().SetSearchTerm(*search)
	}
	if completed != nil {
		s.Store().SetCompletionLiteral(*completed)
	}
	st := s.LoadNow(ctx)
	lgr.V(1).Info("loaded", "phase", st.Phase.String(), "bridge", s.Bridge().Stats())
	if st.IsFailed() {
		return nil, fmt.Errorf("load tasks: %w", st.Err)
	}
	return s.Rows(), nil
}

func resolveFormat(cmd *cobra.Command, cfg config.Config) (formatter.Format, error) {
	name := cfg.UI.Output
	if cmd.Flags().Changed("output") {
		name = output
	}
	if strings.TrimSpace(name) == "" {
		return formatter.FormatTable, nil
	}
	f, err := formatter.ParseFormat(name)
	if err != nil {
		return "", usageError{err: err}
	}
	return f, nil
}

// filterFlags returns the filter inputs given on the command line, nil
// when a flag was not set.
func filterFlags(cmd *cobra.Command) (search, completed *string, err error) {
	if cmd.Flags().Changed("search") {
		v := searchFlag
		search = &v
	}
	if cmd.Flags().Changed("completed") {
		v := strings.ToLower(strings.TrimSpace(completedFlag))
		if !todo.ValidLiteral(v) {
			return nil, nil, usagef("invalid --completed %q (expected %s, %s or %s)",
				completedFlag, todo.LiteralAll, todo.LiteralCompleted, todo.LiteralNotCompleted)
		}
		completed = &v
	}
	return search, completed, nil
}

// buildSource opens the run's source: "-" reads stdin, anything else is a
// URL or a file path.
func buildSource(ctx context.Context, cfg config.Config) gateway.Source {
	location := settings.FromContextOrDefault(ctx).Source
	if strings.TrimSpace(location) == "-" {
		return &gateway.ReaderSource{R: stdin, Format: sourceFormat}
	}
	src := gateway.NewSource(location)
	if h, ok := src.(*gateway.HTTPSource); ok {
		h.UserAgent = cfg.Source.UserAgent
		if h.UserAgent == "" {
			h.UserAgent = settings.CliBinaryName + "/" + settings.VersionInformation.BuildVersion
		}
	}
	return src
}

// outputWidth is --width, else the terminal width when stdout is a
// terminal, else unbounded.
func outputWidth() int {
	if snapshotWidth > 0 {
		return snapshotWidth
	}
	if stdoutIsPiped() {
		return 0
	}
	if w, _, err := termGetSize(int(os.Stdout.Fd())); err == nil {
		return w
	}
	return 0
}
