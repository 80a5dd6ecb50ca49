package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cover-manager/core/reconcile"
	"cover-manager/feature/covers"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunRefresh bool
	yesConfirm    bool
)

// refreshCmd loads a record and reconciles its cover annotation.
var refreshCmd = &cobra.Command{
	Use:   "refresh <mms_id>",
	Short: "Reconcile the cover annotation of a record",
	Long: `Loads a record, extracts its identifiers and cover annotations and
compares them with the live covers of the cover resolver.

When the record has drifted the replacement annotation is shown and written
back after confirmation.

Examples:
  # Report only
  refresh 991234567890 --dry-run

  # Write back after interactive confirmation
  refresh 991234567890

  # Write back without prompting
  refresh 991234567890 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&dryRunRefresh, "dry-run", false, "Only report drift, never write the record")
	refreshCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm writes (non-interactive)")
	RootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	report, err := refreshRecord(ctx, a.covers.Service(), args[0], cmd.OutOrStdout(), a.logger)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

// refreshRecord runs a dry pass, then applies the decision once confirmed.
func refreshRecord(ctx context.Context, svc *covers.Service, mmsID string, out io.Writer, l *zap.Logger) (*covers.Report, error) {
	report, err := svc.Refresh(ctx, cliSession, mmsID, reconcile.Options{DryRun: true})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", mmsID, err)
	}
	printDecision(out, report.Decision)

	if !report.Decision.NeedsUpdate {
		return report, nil
	}
	if dryRunRefresh {
		l.Info("Dry-run mode: No changes were made.")
		return report, nil
	}
	if !confirmDestructiveAction(out, os.Stdin) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return report, nil
	}

	report, err = svc.Apply(ctx, cliSession, mmsID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply decision: %w", err)
	}
	return report, nil
}

// printDecision writes a short drift summary.
func printDecision(out io.Writer, d reconcile.Decision) {
	if !d.NeedsUpdate {
		fmt.Fprintln(out, "Record is in sync.")
		return
	}
	fmt.Fprintln(out, "Record needs an update:")
	for _, r := range d.Reasons {
		fmt.Fprintf(out, "  - %s\n", r)
	}
	payload, err := json.Marshal(d.Payload)
	if err == nil {
		fmt.Fprintf(out, "Replacement annotation: %s\n", payload)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(out io.Writer, in io.Reader) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to write the record: ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
