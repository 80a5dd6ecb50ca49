package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cover-manager/core/reconcile"
	"cover-manager/feature/covers"

	"github.com/spf13/cobra"
)

var (
	uploadFile    string
	uploadObject  string
	uploadConfirm bool
	uploadDryRun  bool
)

// uploadCmd sends a cover image for a record.
var uploadCmd = &cobra.Command{
	Use:   "upload <mms_id>",
	Short: "Upload a cover image for a record",
	Long: `Uploads an image smaller than 1 MiB as the cover of a record, then
reconciles the record annotation with the refreshed live covers.

The image is read from a local file (--file) or from the staging bucket (--object).
An existing primary cover is only replaced with --confirm.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "Local image file")
	uploadCmd.Flags().StringVar(&uploadObject, "object", "", "Staging bucket object key")
	uploadCmd.Flags().BoolVar(&uploadConfirm, "confirm", false, "Replace an existing primary cover")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Do not write the record after the upload")
	uploadCmd.MarkFlagsMutuallyExclusive("file", "object")
	uploadCmd.MarkFlagsOneRequired("file", "object")
	RootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mmsID := args[0]

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	svc := a.covers.Service()

	if _, err := svc.Refresh(ctx, cliSession, mmsID, reconcile.Options{DryRun: true}); err != nil {
		return fmt.Errorf("failed to load %s: %w", mmsID, err)
	}

	opts := reconcile.Options{DryRun: uploadDryRun, Confirmed: true}

	var report *covers.Report
	if uploadObject != "" {
		report, err = svc.UploadStaged(ctx, cliSession, mmsID, uploadObject, uploadConfirm, opts)
	} else {
		var data []byte
		data, err = os.ReadFile(uploadFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", uploadFile, err)
		}
		up := covers.Upload{Filename: filepath.Base(uploadFile), Data: data, Confirm: uploadConfirm}
		report, err = svc.Upload(ctx, cliSession, mmsID, up, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to upload cover: %w", err)
	}

	printDecision(cmd.OutOrStdout(), report.Decision)
	return printJSON(cmd.OutOrStdout(), report)
}
