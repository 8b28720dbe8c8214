package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirtree/internal/config"
	"github.com/idelchi/dirtree/internal/dirstat"
	"github.com/idelchi/dirtree/internal/listing"
	"github.com/idelchi/dirtree/internal/tree"
)

func run(cmd *cobra.Command, args []string, f *flags, m mode) error {
	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if m == modeAll {
		fmt.Fprintf(stdout, "Target directory: %s\n\n", path)
	}

	if m&modeTree != 0 {
		report, err := tree.Render(stdout, path, tree.Options{
			Order:    cfg.Order,
			OnError:  cfg.OnError,
			Excludes: cfg.Exclude,
			Follow:   cfg.Follow,
			Debug:    f.debug,
		})
		if err != nil {
			return err
		}

		warnSkipped(stderr, report.Skipped)
	}

	if m&modeScan == 0 {
		return nil
	}

	if m == modeAll {
		fmt.Fprintln(stdout)
	}

	stats, err := scan(stderr, path, cfg, f.debug)
	if err != nil {
		return err
	}

	switch cfg.Output {
	case "json":
		return PrintJSON(stats, stdout)
	case "yaml":
		return PrintYAML(stats, stdout)
	default:
		return PrintTable(stats, stdout)
	}
}

func scan(stderr io.Writer, path string, cfg *config.Config, debug bool) (*dirstat.Stats, error) {
	enableProgress := cfg.Output == "table" &&
		!debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes uint64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes uint64) {
			msg := fmt.Sprintf("Scanning… %d files, %s", files, humanize.IBytes(bytes))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	stats, err := dirstat.Run(dirstat.Options{
		Path:             path,
		Workers:          cfg.Workers,
		Engine:           cfg.Engine,
		OnError:          cfg.OnError,
		Excludes:         cfg.Exclude,
		Follow:           cfg.Follow,
		ProgressInterval: cfg.ProgressInterval,
		Debug:            debug,
	}, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	return stats, err
}

func warnSkipped(w io.Writer, skipped []listing.Skipped) {
	if len(skipped) == 0 {
		return
	}

	fmt.Fprintf(w, "\n⚠ Could not list %d directories:\n", len(skipped))

	for _, s := range skipped {
		fmt.Fprintf(w, "  %s: %s\n", s.Path, s.Error)
	}
}
