// Package cmd implements the topsis CLI commands using Cobra.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/report"
)

var (
	cfgFile string
	verbose bool
	format  string
	output  string
)

var rootCmd = &cobra.Command{
	Use:   "topsis",
	Short: "Multi-criteria ranking with TOPSIS",
	Long: `topsis ranks alternatives against weighted criteria using the
Technique for Order of Preference by Similarity to Ideal Solution.

It reads a CSV whose first column names the alternatives and whose other
columns hold numeric criteria, scores every row by its relative closeness
to the ideal solution, and writes the table back with score and rank
columns. It can also serve the same ranking over HTTP and email results.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: .topsis.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format (terminal|json|markdown|csv), overrides output.format")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write output to file instead of stdout")
}

func setupLogging(w io.Writer) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return nil
}

// selectFormatter returns the report formatter for the given format name.
func selectFormatter(name string) (interfaces.Formatter, error) {
	switch name {
	case "", "terminal":
		return report.NewTerminalFormatter(), nil
	case "json":
		return report.NewJSONFormatter(), nil
	case "markdown":
		return report.NewMarkdownFormatter(), nil
	case "csv":
		return report.NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json, markdown or csv)", name)
	}
}

// writeReport formats rpt to path, or to stdout when path is empty.
func writeReport(stdout io.Writer, rpt *interfaces.Report, formatName, path string) error {
	f, err := selectFormatter(formatName)
	if err != nil {
		return err
	}

	w := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close() // best-effort cleanup
		w = file
	}

	if err := f.Format(w, rpt); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
