package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/log-console-tui/pkg/config"
	"github.com/user/log-console-tui/pkg/console"
	"github.com/user/log-console-tui/pkg/format"
	"github.com/user/log-console-tui/pkg/headless"
	"github.com/user/log-console-tui/pkg/source"
)

// flushLimit bounds the callbacks a replay runs before giving up
const flushLimit = 1 << 20

type replayOptions struct {
	width  int
	height int
	all    bool
	stats  bool
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	o := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Load a log file into a headless console and print the mounted window",
		Long: `replay feeds FILE ("-" for stdin) through the console engine without a
terminal UI, then prints the mounted window (the bottom aligned viewport
plus its tolerance margins) followed by a summary of the render state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(root)
			if err != nil {
				return err
			}
			defer closeLog()

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			return replay(cmd, cfg, in, cmd.OutOrStdout(), o)
		},
	}

	cmd.Flags().IntVar(&o.width, "width", 100, "viewport width in cells")
	cmd.Flags().IntVar(&o.height, "height", 40, "viewport height in rows")
	cmd.Flags().BoolVar(&o.all, "all", false, "print every displayed entry instead of the last window")
	cmd.Flags().BoolVar(&o.stats, "stats", true, "print the render summary")
	return cmd
}

func replay(cmd *cobra.Command, cfg config.Config, in io.Reader, out io.Writer, o *replayOptions) error {
	opts, err := cfg.ConsoleOptions()
	if err != nil {
		return err
	}

	scheduler := headless.NewScheduler(time.Now())
	surface := headless.NewSurface(nil)
	c, err := console.New(opts, console.Dependencies{
		Surface:   surface,
		Scheduler: scheduler,
		Formatter: format.Plain{},
	})
	if err != nil {
		return err
	}

	c.NotifyResize(o.width, o.height)
	n, err := source.ReadLines(cmd.Context(), in, source.ConsoleSink(c))
	if err != nil {
		return err
	}
	scheduler.Flush(flushLimit)

	if o.all {
		// a viewport as tall as the content mounts everything
		c.NotifyResize(o.width, c.Window().Total+1)
		scheduler.Flush(flushLimit)
	}

	if dump := surface.Dump(); dump != "" {
		fmt.Fprintln(out, dump)
	}
	if o.stats {
		writeReplayStats(out, n, c)
	}
	return nil
}

func writeReplayStats(out io.Writer, lines int, c *console.Console) {
	stats := c.Stats()
	window := c.Window()
	plan := c.LastBatchPlan()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("replay")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"lines read", lines},
		{"stored", stats.Stored},
		{"displayed", stats.Displayed},
		{"open groups", stats.Groups},
		{"mounted", len(window.Mounted)},
		{"top spacer", window.TopSpacer},
		{"bottom spacer", window.BottomSpacer},
		{"total height", window.Total},
		{"render passes", c.RenderPasses()},
		{"last batch", fmt.Sprintf("%d of %d, next in %s", plan.Batch, plan.Backlog, plan.Delay)},
	})
	t.Render()
}
