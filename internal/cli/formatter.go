package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirtree/internal/dirstat"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs statistics in JSON format.
func PrintJSON(stats *dirstat.Stats, writer io.Writer) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintYAML outputs statistics in YAML format.
func PrintYAML(stats *dirstat.Stats, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)

	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return enc.Close()
}

// PrintTable outputs statistics in human-readable table format.
func PrintTable(stats *dirstat.Stats, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "Stats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", stats.FileCount)
	fmt.Fprintf(w, "Total directories:\t%d\n", stats.DirCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(stats.TotalBytes), stats.TotalBytes)

	if stats.ErrorCount > 0 {
		fmt.Fprintf(w, "Errors:\t%d\n", stats.ErrorCount)
	}

	if len(stats.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped directories:\t\t")

		for i, s := range stats.Skipped {
			fmt.Fprintf(w, "  %d) '%s'\t%s\n", i+1, s.Path, s.Error)
		}
	}

	fmt.Fprintf(w, "\nWorkers:\t%d (%s)\n", stats.Workers, stats.Engine)
	fmt.Fprintf(w, "Elapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}
