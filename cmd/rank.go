package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/toyinlola/topsis/pkg/cli"
	"github.com/toyinlola/topsis/pkg/delivery"
	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/report"
	"github.com/toyinlola/topsis/pkg/table"
	"github.com/toyinlola/topsis/pkg/topsis"
)

var rankEmail string

var rankCmd = &cobra.Command{
	Use:   "rank <input.csv> <weights> <impacts> [output.csv]",
	Short: "Rank the alternatives in a CSV file",
	Long: `Rank scores every row of a CSV file with TOPSIS.

Weights and impacts are comma separated, one per criterion column:
  topsis rank data.csv "1,1,1,2" "+,+,-,+" result.csv

With an output file the input table is written back with "Topsis Score"
and "Rank" columns. Without one the ranking is printed using --format.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankEmail, "email", "", "also email the result CSV to this address")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Load configuration.
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	// 2. Parse parameters before touching the file.
	weights, err := topsis.ParseWeights(args[1])
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	impacts, err := topsis.ParseImpacts(args[2])
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	// 3. Read the table.
	slog.Debug("reading input", "path", args[0])
	tbl, err := table.NewParser().ParseFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	// 4. Score and build the report.
	rpt, err := report.NewGenerator().Evaluate(topsis.NewCalculator(), tbl, weights, impacts)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	slog.Debug("ranking computed",
		"alternatives", len(rpt.Alternatives),
		"criteria", len(rpt.Criteria),
		"weights", topsis.FormatWeights(weights),
		"impacts", topsis.FormatImpacts(impacts),
	)

	// 5. Write output. A positional output file always receives CSV.
	formatName, dest := format, output
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	if len(args) == 4 {
		formatName, dest = "csv", args[3]
	}
	if err := writeReport(cmd.OutOrStdout(), rpt, formatName, dest); err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	if dest != "" {
		slog.Info("results saved", "path", dest, "alternatives", len(rpt.Alternatives))
	}

	// 6. Optional delivery. Failure never fails the command.
	if rankEmail != "" {
		emailResult(ctx, cfg.Mail, rankEmail, rpt)
	}

	return nil
}

// emailResult sends the ranking as a CSV attachment and logs the outcome.
func emailResult(ctx context.Context, mailCfg cli.MailConfig, to string, rpt *interfaces.Report) {
	mailer, err := cli.NewMailer(mailCfg)
	if err != nil {
		slog.Error("email not sent", "error", err)
		return
	}
	if mailer == nil {
		slog.Warn("email not sent: mail.host is not configured")
		return
	}

	var buf bytes.Buffer
	if err := report.NewCSVFormatter().Format(&buf, rpt); err != nil {
		slog.Error("email not sent", "error", err)
		return
	}

	if err := mailer.Send(ctx, delivery.NewResultMessage(to, buf.Bytes())); err != nil {
		slog.Error("email not sent", "to", to, "error", err)
		return
	}
	slog.Info("result emailed", "to", to)
}
