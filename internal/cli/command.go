package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirtree/internal/config"
	"github.com/idelchi/dirtree/internal/dirstat"
	"github.com/idelchi/dirtree/internal/listing"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// mode selects which parts a command runs.
type mode int

const (
	modeTree mode = 1 << iota
	modeScan
	modeAll = modeTree | modeScan
)

// flags holds raw flag values; they override the config file only when set.
type flags struct {
	config   string
	workers  int
	order    string
	onError  string
	excludes []string
	follow   bool
	engine   string
	output   string
	debug    bool
}

// Execute runs the CLI.
func (c CLI) Execute(ctx context.Context) error {
	return fang.Execute(ctx, c.Command())
}

// Command builds the command tree.
func (c CLI) Command() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "dirtree [path]",
		Short: "Render a directory tree and aggregate its file statistics",
		Long: heredoc.Doc(`
			dirtree prints a directory hierarchy as a tree and counts the files
			and bytes below it.

			The tree is rendered by a single goroutine. The statistics are
			gathered concurrently: every subdirectory becomes a task on a pool
			of --workers goroutines, and tasks submit further tasks for their
			own subdirectories.

			Without a subcommand both the tree and the statistics are printed.
			The path defaults to the current directory.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, modeAll)
		},
	}

	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringSliceVarP(&f.excludes, "exclude", "e", nil, "Regex patterns to exclude")
	root.PersistentFlags().StringVar(&f.onError, "on-error", string(listing.Skip),
		fmt.Sprintf("What to do with unreadable subdirectories: one of %v", listing.Policies))
	root.PersistentFlags().BoolVarP(&f.follow, "follow", "L", false, "Descend into symlinks to directories")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug output")

	addTreeFlags(root, f)
	addScanFlags(root, f)

	treeCmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Render the directory tree",
		Long: heredoc.Doc(`
			Render the directory tree using ├──, └── and │ connectors.

			Entries are printed in the order the filesystem lists them unless
			--order name is given.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, modeTree)
		},
	}
	addTreeFlags(treeCmd, f)

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Count files and bytes concurrently",
		Long: heredoc.Doc(`
			Count every non-directory entry below the path and sum their sizes.

			Symbolic links are counted with their own size unless --follow is
			given, in which case links to directories are descended into.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, modeScan)
		},
	}
	addScanFlags(scanCmd, f)

	root.AddCommand(treeCmd, scanCmd)

	return root
}

func addTreeFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.order, "order", string(listing.Native),
		fmt.Sprintf("Order of entries within a directory: one of %v", listing.Orders))
}

func addScanFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Number of worker goroutines (default: number of CPUs)")
	cmd.Flags().StringVar(&f.engine, "engine", string(dirstat.EnginePool),
		fmt.Sprintf("Traversal engine: one of %v", dirstat.Engines))
	cmd.Flags().StringVarP(&f.output, "output", "o", "table",
		fmt.Sprintf("Output format: one of %v", config.Outputs))
}

// resolve merges the config file with the flags that were explicitly set.
func (f *flags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed

	if changed("workers") {
		cfg.Workers = f.workers
	}

	if changed("order") {
		cfg.Order = listing.Order(f.order)
	}

	if changed("on-error") {
		cfg.OnError = listing.ErrorPolicy(f.onError)
	}

	if changed("exclude") {
		cfg.Exclude = f.excludes
	}

	if changed("follow") {
		cfg.Follow = f.follow
	}

	if changed("engine") {
		cfg.Engine = dirstat.Engine(f.engine)
	}

	if changed("output") {
		cfg.Output = f.output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
