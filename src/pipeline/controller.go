package pipeline

import (
	"github.com/mintforge/revealer/src/utils/ai"
	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/eth"
	"github.com/mintforge/revealer/src/utils/model"
	"github.com/mintforge/revealer/src/utils/monitoring"
	monitor_pipeline "github.com/mintforge/revealer/src/utils/monitoring/pipeline"
	"github.com/mintforge/revealer/src/utils/storage"
	"github.com/mintforge/revealer/src/utils/task"
)

// Main class that orchestrates the pipeline
type Controller struct {
	*task.Task
}

// Sets up the stage workers and the supporting tasks
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "pipeline")

	// Database connection, runs pending migrations
	db, err := model.NewConnection(self.Ctx, config, "pipeline")
	if err != nil {
		return
	}

	// Tokens inserted without provenance get attributed to this author
	_, err = model.EnsureDefaultAuthor(self.Ctx, db,
		config.Recovery.DefaultAuthorWallet,
		config.Recovery.DefaultAuthorPrompt)
	if err != nil {
		return
	}

	chainClient, err := eth.NewClient(&config.Contract)
	if err != nil {
		return
	}

	monitor := monitor_pipeline.NewMonitor(config).
		WithMaxHistorySize(30)

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	store := NewStore(config, db)

	generator := NewGenerator(config).
		WithStore(store).
		WithClient(ai.NewClient(&config.Ai)).
		WithMonitor(monitor)

	uploader := NewUploader(config).
		WithStore(store).
		WithStorage(storage.NewClient(&config.Storage)).
		WithMonitor(monitor)

	revealer := NewRevealer(config).
		WithStore(store).
		WithChainClient(chainClient).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithConditionalSubtask(config.RESTListenAddress != "", server.Task).
		WithSubtask(generator.Task).
		WithSubtask(uploader.Task).
		WithSubtask(revealer.Task)

	return
}
