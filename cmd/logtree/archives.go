package main

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lixenwraith/logtree"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newArchivesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archives",
		Short: "List the rotation archives of the log file",
		Long: `Archives lists the numbered archives of the configured log file in its
rotation directory, oldest first. Entries without a usable modification time
are skipped, exactly as the retention pass skips them.`,
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

			fs := afero.NewOsFs()
			archives, err := logtree.ScanArchives(fs, dir, base)
			if err != nil {
				return err
			}
			if len(archives) == 0 {
				cmd.Printf("no archives of %s in %s\n", base, dir)
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("INDEX", "MODIFIED", "SIZE", "PATH")
			for _, a := range archives {
				size := "?"
				if fi, err := fs.Stat(a.Path); err == nil {
					size = strconv.FormatInt(fi.Size(), 10)
				}
				t.Row(strconv.Itoa(a.Index), a.Timestamp.Format(time.DateTime), size, a.Path)
			}
			cmd.Println(t.String())
			return nil
		},
	}
}

// archiveLocation returns the absolute rotation directory and archive base name
func archiveLocation(cfg *logtree.FileConfig) (string, string, error) {
	path, err := filepath.Abs(cfg.FileName)
	if err != nil {
		return "", "", err
	}
	dir := filepath.Dir(path)
	if cfg.RotationDir != "" {
		if dir, err = filepath.Abs(cfg.RotationDir); err != nil {
			return "", "", err
		}
	}
	return dir, filepath.Base(path), nil
}
