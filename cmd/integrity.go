package cmd

import (
	"context"
	"errors"
	"fmt"

	"cover-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the stores the cover workflow depends on",
	Long: `Checks the staging bucket, the reconciliation history table and the
catalog endpoint. With --fix invalid staged objects are removed and the
history table is migrated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		return runIntegrityChecks(ctx, a.integrity.Service(), a.logger)
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Repair the problems found")
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
	failed := false

	staging, err := svc.CheckStaging(ctx)
	switch {
	case errors.Is(err, integrity.ErrDisabled):
		l.Info("Staging check skipped: storage not configured")
	case err != nil:
		l.Error("Staging check failed", zap.Error(err))
		failed = true
	case len(staging.Invalid) == 0:
		l.Info("Staging bucket OK", zap.String("bucket", staging.Bucket), zap.Int("objects", staging.Objects))
	default:
		for _, obj := range staging.Invalid {
			l.Warn("Invalid staged object", zap.String("key", obj.Key), zap.String("reason", obj.Reason))
		}
		if fixFlag {
			if err := svc.FixStaging(ctx, staging.Invalid); err != nil {
				return fmt.Errorf("failed to clean staging bucket: %w", err)
			}
		} else {
			failed = true
		}
	}

	schema, err := svc.CheckHistory()
	switch {
	case errors.Is(err, integrity.ErrDisabled):
		l.Info("History check skipped: database not configured")
	case err != nil:
		l.Error("History check failed", zap.Error(err))
		failed = true
	case schema.Matched:
		l.Info("History table OK", zap.String("table", schema.Table))
	default:
		l.Warn("History table out of date",
			zap.String("table", schema.Table),
			zap.Bool("missing_table", schema.MissingTable),
			zap.Strings("missing_columns", schema.MissingColumns))
		if fixFlag {
			if err := svc.FixHistory(); err != nil {
				return fmt.Errorf("failed to migrate history table: %w", err)
			}
		} else {
			failed = true
		}
	}

	cat := svc.CheckCatalog(ctx)
	if cat.Reachable {
		l.Info("Catalog OK", zap.String("institution", cat.Institution), zap.Int64("latency_ms", cat.LatencyMS))
	} else {
		l.Error("Catalog unreachable", zap.String("error", cat.Error))
		failed = true
	}

	if failed {
		return errors.New("integrity checks failed")
	}
	return nil
}
