package cmd

import (
	"context"
	"fmt"
	"os"

	"cover-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deleteDryRun bool

// deleteCmd removes a cover from the cover server.
var deleteCmd = &cobra.Command{
	Use:   "delete <mms_id> <id_type> <id_code>",
	Short: "Delete a cover of a record",
	Long: `Deletes the cover registered under id_type/id_code (for example
"mmsid 991234567890" or "isbn 9783161484100") from the cover server, then
reconciles the record annotation with the refreshed live covers.

Examples:
  delete 991234567890 mmsid 991234567890 --yes`,
	Args: cobra.ExactArgs(3),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "Do not write the record after the deletion")
	deleteCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the deletion (non-interactive)")
	RootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mmsID, idType, idCode := args[0], args[1], args[2]

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	svc := a.covers.Service()

	if _, err := svc.Refresh(ctx, cliSession, mmsID, reconcile.Options{DryRun: true}); err != nil {
		return fmt.Errorf("failed to load %s: %w", mmsID, err)
	}

	if !confirmDestructiveAction(cmd.OutOrStdout(), os.Stdin) {
		a.logger.Warn("Operation cancelled by user. No changes were made.",
			zap.String("id_type", idType), zap.String("id_code", idCode))
		return nil
	}

	report, err := svc.Delete(ctx, cliSession, mmsID, idType, idCode, reconcile.Options{DryRun: deleteDryRun, Confirmed: true})
	if err != nil {
		return fmt.Errorf("failed to delete cover: %w", err)
	}

	printDecision(cmd.OutOrStdout(), report.Decision)
	return printJSON(cmd.OutOrStdout(), report)
}
