package cmd

import (
	"strconv"

	"github.com/mintforge/revealer/src/utils/logger"
	"github.com/mintforge/revealer/src/utils/model"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset [token id]...",
	Short: "Put failed tokens back into the pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("reset-cmd")

		tokenIds := make([]int64, len(args))
		for i, arg := range args {
			tokenIds[i], err = strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return
			}
		}

		db, err := model.NewConnection(applicationCtx, conf, "reset")
		if err != nil {
			return
		}

		reset, err := model.ResetFailed(applicationCtx, db, tokenIds)
		if err != nil {
			return
		}

		log.WithField("requested", len(tokenIds)).
			WithField("reset", reset).
			Info("Failed tokens reset to detected")
		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished reset command")
		applicationCtxCancel()
		return
	},
}
