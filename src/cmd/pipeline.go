package cmd

import (
	"github.com/mintforge/revealer/src/pipeline"
	"github.com/mintforge/revealer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(pipelineCmd)
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the token processing pipeline",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := pipeline.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished pipeline command")
		applicationCtxCancel()
		return
	},
}
