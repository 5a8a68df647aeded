package cmd

import (
	"github.com/mintforge/revealer/src/recovery"
	"github.com/mintforge/revealer/src/utils/eth"
	"github.com/mintforge/revealer/src/utils/logger"
	"github.com/mintforge/revealer/src/utils/model"
	monitor_pipeline "github.com/mintforge/revealer/src/utils/monitoring/pipeline"

	"github.com/spf13/cobra"
)

func init() {
	recoverCmd.Flags().IntVar(&recoverLimit, "limit", 0, "max number of tokens to recover, 0 uses the configured batch size")
	recoverCmd.Flags().BoolVar(&recoverDryRun, "dry-run", false, "report what would be recovered, roll back instead of committing")
	RootCmd.AddCommand(recoverCmd)
}

var (
	recoverLimit  int
	recoverDryRun bool
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recreate db rows for tokens that exist on chain but are missing locally",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("recover-cmd")

		db, err := model.NewConnection(applicationCtx, conf, "recover")
		if err != nil {
			return
		}

		chainClient, err := eth.NewClient(&conf.Contract)
		if err != nil {
			return
		}

		reconciler := recovery.NewReconciler(conf).
			WithDb(db).
			WithChainClient(chainClient).
			WithMonitor(monitor_pipeline.NewMonitor(conf).WithMaxHistorySize(1))

		result, err := reconciler.Reconcile(applicationCtx, recoverLimit, recoverDryRun)
		if err != nil {
			return
		}

		log.WithField("on_chain", result.OnChainCount).
			WithField("missing", result.MissingCount).
			WithField("recovered", result.RecoveredCount).
			WithField("skipped_duplicates", result.SkippedDuplicates).
			WithField("dry_run", result.DryRun).
			Info("Reconciliation finished")
		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished recover command")
		applicationCtxCancel()
		return
	},
}
