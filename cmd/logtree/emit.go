package main

import (
	"strings"

	"github.com/lixenwraith/logtree"
	"github.com/spf13/cobra"
)

func newEmitCmd(opts *globalOptions) *cobra.Command {
	var (
		levelName string
		name      string
		count     int
		echo      bool
	)

	cmd := &cobra.Command{
		Use:   "emit [message...]",
		Short: "Write records into the log file",
		Long: `Emit writes the message count times through a logger node attached to
the file transport, rotating the file whenever it reaches max_file_size.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logtree.ParseLevel(levelName)
			if err != nil {
				return err
			}
			cfg, err := opts.fileConfig()
			if err != nil {
				return err
			}

			report, done, err := consoleLogger(cmd)
			if err != nil {
				return err
			}
			defer done()

			node := logtree.New(name)
			file, err := node.CreateFileTransport(cfg)
			if err != nil {
				return err
			}
			file.OnRotated(func(rf logtree.RotationFile) {
				report.Info("rotated", rf.Path, rf.Size, "bytes")
			})
			if echo {
				report.Attach(node)
			}

			message := strings.Join(args, " ")
			for i := 0; i < count; i++ {
				node.Write(level, message)
			}

			if err := file.Close(); err != nil {
				return err
			}
			stats := file.Stats()
			report.Info("wrote", stats.Records, "records to", file.FileName())
			if stats.Dropped > 0 {
				report.Warning("dropped", stats.Dropped, "records")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&levelName, "level", "l", "information", "record level")
	cmd.Flags().StringVarP(&name, "logger", "n", "", "logger node name shown in the prefix")
	cmd.Flags().IntVar(&count, "count", 1, "number of times to write the message")
	cmd.Flags().BoolVar(&echo, "echo", false, "also print the records on the console")
	return cmd
}
