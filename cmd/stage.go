package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	stageKey    string
	stagePrefix string
)

// stageCmd puts images into the staging bucket.
var stageCmd = &cobra.Command{
	Use:   "stage <file>...",
	Short: "Stage cover images in the object store",
	Long: `Stores cover images in the staging bucket so they can be uploaded
later with "upload --object". Without arguments the staged images are listed.`,
	RunE: runStage,
}

func init() {
	stageCmd.Flags().StringVar(&stageKey, "key", "", "Object key (single file only, defaults to the file name)")
	stageCmd.Flags().StringVar(&stagePrefix, "prefix", "", "Key prefix when listing")
	RootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	svc := a.covers.Service()

	if len(args) == 0 {
		staged, err := svc.Staged(ctx, stagePrefix)
		if err != nil {
			return fmt.Errorf("failed to list staged covers: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), staged)
	}

	if stageKey != "" && len(args) > 1 {
		return fmt.Errorf("--key requires a single file, got %d", len(args))
	}

	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		key := stageKey
		if key == "" {
			key = filepath.Base(file)
		}

		obj, err := svc.Stage(ctx, key, data)
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", file, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "staged %s (%d bytes, %s)\n", obj.Key, obj.Size, obj.ContentType)
	}
	return nil
}
