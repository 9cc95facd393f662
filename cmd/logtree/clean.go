package main

import (
	"time"

	"github.com/lixenwraith/logtree"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCleanCmd(opts *globalOptions) *cobra.Command {
	var (
		maxCount int
		maxAge   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run one retention pass over the rotation directory",
		Long: `Clean applies the archive count and age limits to the rotation directory
and renumbers the surviving archives from .2 upwards, leaving .1 free for
the next rotation. Limits default to max_archive_count and max_archive_age_ms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.fileConfig()
			if err != nil {
				return err
			}
			dir, base, err := archiveLocation(cfg)
			if err != nil {
				return err
			}

			policy := logtree.RetentionPolicy{
				MaxArchiveCount: int(cfg.MaxArchiveCount),
				MaxArchiveAge:   time.Duration(cfg.MaxArchiveAgeMs) * time.Millisecond,
			}
			if cmd.Flags().Changed("max-count") {
				policy.MaxArchiveCount = maxCount
			}
			if cmd.Flags().Changed("max-age") {
				policy.MaxArchiveAge = maxAge
			}

			report, done, err := consoleLogger(cmd)
			if err != nil {
				return err
			}
			defer done()

			deleted, err := logtree.CleanRotationDir(afero.NewOsFs(), dir, base, policy, time.Now())
			for _, a := range deleted {
				report.Info("deleted", a.Path)
			}
			if err != nil {
				report.Error(err)
				return err
			}
			report.Info("removed", len(deleted), "archives from", dir)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxCount, "max-count", 0, "archives to keep, 0 for unlimited")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "archive expiry, 0 disables")
	return cmd
}
