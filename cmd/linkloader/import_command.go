package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/importer"
	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/Belphemur/MovieLinks/internal/reporting"
)

func newImportCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Insert every row of the links file into the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runImport(cmd, cc.cfg)
			if summary != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			}
			if err != nil {
				reporting.CaptureRunError(err, summary)
				return err
			}
			if !summary.Clean() {
				return fmt.Errorf("%d of %d rows were not written", summary.Errors(), summary.Read)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("mode", "", "Write mode: insert or upsert")
	flags.Int("batch-size", 0, "Rows per database write")
	flags.Float64("max-error-ratio", 0, "Abort when the share of bad rows exceeds this ratio (0 disables)")
	flags.Bool("dry-run", false, "Parse and validate without writing")
	flags.Bool("create-table", false, "Create the destination table when missing")
	flags.String("lock-file", "", "Hold this lock file for the duration of the import")
	flags.String("ledger", "", "Seen-id ledger: none, memory or redis")

	bindFlags(flags, map[string]string{
		"import.mode":            "mode",
		"import.batch_size":      "batch-size",
		"import.max_error_ratio": "max-error-ratio",
		"import.dry_run":         "dry-run",
		"import.create_table":    "create-table",
		"import.lock_file":       "lock-file",
		"ledger.provider":        "ledger",
	})

	return cmd
}

func runImport(cmd *cobra.Command, cfg *config.Config) (*models.ImportSummary, error) {
	ctx := cmd.Context()
	runID := uuid.NewString()
	logger := config.GetLogger().With().Str("run_id", runID).Logger()

	mode, err := models.ParseWriteMode(cfg.Import.Mode)
	if err != nil {
		return nil, err
	}

	if cfg.Import.LockFile != "" {
		lock := flock.New(cfg.Import.LockFile)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another import holds %s", cfg.Import.LockFile)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn().Err(err).Msg("Failed to release lock")
			}
		}()
	}

	src, err := openSource(ctx, cfg, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if cfg.Import.CreateTable && !cfg.Import.DryRun {
		if err := st.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}

	ld, err := openLedger(cfg)
	if err != nil {
		return nil, err
	}
	defer ld.Close()

	im := importer.New(st, ld, importer.Options{
		Mode:          mode,
		BatchSize:     cfg.Import.BatchSize,
		MaxErrorRatio: cfg.Import.MaxErrorRatio,
		DryRun:        cfg.Import.DryRun,
		RunID:         runID,
		Retry: importer.RetryOptions{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       config.ParseDuration("retry.delay", cfg.Retry.Delay, 0),
			MaxDelay:    config.ParseDuration("retry.max_delay", cfg.Retry.MaxDelay, 0),
		},
	})
	return im.Run(ctx, src.Name(), src)
}
