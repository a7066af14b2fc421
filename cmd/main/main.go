package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/log-console-tui/pkg/config"
	"github.com/user/log-console-tui/pkg/logging"
	"github.com/user/log-console-tui/pkg/source"
	"github.com/user/log-console-tui/pkg/ui"
)

type rootOptions struct {
	configPath   string
	maxNum       int
	levels       []string
	filter       string
	showHeader   bool
	sync         bool
	lowPower     bool
	follow       string
	fromStart    bool
	demo         bool
	demoInterval time.Duration
	noHistory    bool
	logFile      string
	logLevel     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "log-console-tui",
		Short: "Terminal log console with groups, filters and a virtualized view",
		Long: `log-console-tui shows log lines in a scrollable console.

Lines come from a followed file, from stdin when it is piped, or from the
built-in demo feed. Lines starting with ">> label" open a group, ">>+ label"
opens a collapsed group and "<<" closes it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, o)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/log-console-tui/config.json5)")
	f.IntVar(&o.maxNum, "max-num", 0, "maximum stored entries, 0 keeps everything")
	f.StringSliceVar(&o.levels, "level", nil, "active levels: verbose, info, warning, error")
	f.StringVar(&o.filter, "filter", "", "text filter, or /pattern/ for a regular expression")
	f.BoolVar(&o.showHeader, "show-header", false, "show timestamps and caller locations")
	f.BoolVar(&o.sync, "sync", false, "render every entry as it arrives instead of batching")
	f.BoolVar(&o.lowPower, "low-power", false, "use wider scroll tolerances to render less often")
	f.StringVar(&o.logFile, "log-file", "", "write diagnostics to this file")
	f.StringVar(&o.logLevel, "log-level", "info", "diagnostic level: debug, info, warn, error")

	cmd.Flags().StringVar(&o.follow, "follow", "", "follow a file like tail -f")
	cmd.Flags().BoolVar(&o.fromStart, "from-start", false, "with --follow, load the existing content first")
	cmd.Flags().BoolVar(&o.demo, "demo", false, "generate demo traffic")
	cmd.Flags().BoolVar(&o.noHistory, "no-history", false, "do not load or save prompt history")
	cmd.Flags().DurationVar(&o.demoInterval, "demo-interval", 200*time.Millisecond, "delay between demo records")

	cmd.AddCommand(newReplayCmd(o), newConfigCmd(o))
	return cmd
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(cmd *cobra.Command, o *rootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-num") {
		cfg.MaxNum = o.maxNum
	}
	if flags.Changed("level") {
		cfg.Levels = o.levels
	}
	if flags.Changed("filter") {
		cfg.Filter = o.filter
	}
	if flags.Changed("show-header") {
		cfg.ShowHeader = o.showHeader
	}
	if flags.Changed("sync") {
		cfg.AsyncRender = !o.sync
	}
	if flags.Changed("low-power") {
		cfg.LowPower = o.lowPower
	}
	return cfg, cfg.Validate()
}

// setupLogging sends diagnostics to --log-file; without one they are
// discarded so they never corrupt the terminal.
func setupLogging(o *rootOptions) (func(), error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	if o.logFile == "" {
		logging.Init(level, io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logging.Init(level, f)
	return func() { f.Close() }, nil
}

func stdinPiped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

func loadHistory(app *ui.App) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	return app.SetHistoryFile(path)
}

func runConsole(cmd *cobra.Command, o *rootOptions) error {
	closeLog, err := setupLogging(o)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	opts, err := cfg.ConsoleOptions()
	if err != nil {
		return err
	}

	app, err := ui.NewApp(opts, cfg.FrameInterval())
	if err != nil {
		return err
	}
	defer app.Close()
	app.SetVimMode(cfg.VimMode)
	if !o.noHistory {
		if err := loadHistory(app); err != nil {
			logging.Error("Main", err, "prompt history disabled")
		}
	}
	sink := source.ConsoleSink(app.Console())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(gctx)}

	if stdinPiped() {
		// keys come from the terminal while stdin carries the logs
		programOpts = append(programOpts, tea.WithInputTTY())
		// a blocked read cannot observe ctx, so this reader is not waited on
		go func() {
			n, err := source.ReadLines(gctx, os.Stdin, sink)
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error("Main", err, "stdin stopped after %d lines", n)
				return
			}
			logging.Info("Main", "stdin closed after %d lines", n)
		}()
	}

	if o.follow != "" {
		follower, err := source.NewFileFollower(o.follow, sink, source.FollowOptions{FromStart: o.fromStart})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return follower.Run(gctx)
		})
	}

	if o.demo {
		g.Go(func() error {
			return source.Demo{Interval: o.demoInterval}.Run(gctx, sink)
		})
	}

	program := tea.NewProgram(app, programOpts...)
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
