package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/logtree"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		interval  time.Duration
		heartbeat time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Write periodically while following config file changes",
		Long: `Watch keeps a file transport open, writes a record every --interval and
reloads the [file] section of --config whenever the file changes. Level,
format, prefix and rotation settings apply to the next record; file_name and
encoding cannot change while running. With --heartbeat the transport also
writes its own statistics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return fmt.Errorf("watch requires --config")
			}
			cfg, err := opts.fileConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, done, err := consoleLogger(cmd)
			if err != nil {
				return err
			}
			defer done()

			root := logtree.New("watch")
			file, err := root.CreateFileTransport(cfg)
			if err != nil {
				return err
			}
			defer file.Close()

			err = file.Watch(ctx, opts.configPath, func(err error) {
				if err != nil {
					report.Error("reload rejected:", err)
					return
				}
				report.Info("reloaded", opts.configPath, "level", file.Level())
			})
			if err != nil {
				return err
			}

			if heartbeat > 0 {
				if err := file.StartHeartbeat(ctx, root.CreateChild("heartbeat"), logtree.LevelInformation, heartbeat); err != nil {
					return err
				}
			}

			report.Info("writing to", file.FileName(), "every", interval)
			return tick(ctx, root, interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between records")
	cmd.Flags().DurationVar(&heartbeat, "heartbeat", 0, "heartbeat interval, 0 disables")
	return cmd
}

// tick writes one record per level cycle until ctx is done
func tick(ctx context.Context, node *logtree.Logger, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	levels := []logtree.Level{
		logtree.LevelTrace, logtree.LevelDebug, logtree.LevelInformation,
		logtree.LevelWarning, logtree.LevelError,
	}
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			level := levels[i%len(levels)]
			node.Write(level, "tick", i, "level", level)
		}
	}
}
