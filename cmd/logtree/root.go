package main

import (
	"github.com/lixenwraith/logtree"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	fileName   string
	overrides  []string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "logtree",
		Short: "Write, rotate and inspect logtree file logs",
		Long: `logtree drives the logtree file transport from the command line.

It writes records through a logger node into a rotating log file, lists and
prunes the numbered archives produced by rotation, and generates load to
observe the write queue and retention engine under pressure.

File transport settings come from the [file] section of --config, then
--file, then any --set key=value overrides.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML file with a [file] section")
	flags.StringVarP(&opts.fileName, "file", "f", "", "log file path (overrides file_name)")
	flags.StringArrayVar(&opts.overrides, "set", nil, "file transport override as key=value, repeatable")

	root.AddCommand(
		newEmitCmd(opts),
		newArchivesCmd(opts),
		newCleanCmd(opts),
		newStressCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(),
	)
	return root
}

// fileConfig resolves the file transport configuration from the global flags
func (o *globalOptions) fileConfig() (*logtree.FileConfig, error) {
	cfg := logtree.DefaultFileConfig()
	if o.configPath != "" {
		loaded, err := logtree.NewFileConfigFromFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := o.overrides
	if o.fileName != "" {
		overrides = append([]string{"file_name=" + o.fileName}, overrides...)
	}
	return cfg.ApplyOverrides(overrides...)
}

// consoleLogger returns a root node reporting to the command's output streams
func consoleLogger(cmd *cobra.Command) (*logtree.Logger, func(), error) {
	cfg := logtree.DefaultConsoleConfig()
	cfg.IncludeTimes = false
	cfg.IncludeLabelAlignment = false

	console, err := logtree.NewConsoleTransportWriters(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	node := logtree.New("logtree")
	console.Attach(node)
	return node, func() { _ = console.Close() }, nil
}
