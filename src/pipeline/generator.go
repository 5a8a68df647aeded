package pipeline

import (
	"context"
	"sync"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/model"
	"github.com/mintforge/revealer/src/utils/monitoring"
	"github.com/mintforge/revealer/src/utils/task"
)

type GeneratorStore interface {
	ClaimDetected(ctx context.Context, limit int) ([]model.Token, error)
	FailExhaustedGenerations(ctx context.Context) (int64, error)
	AuthorPrompt(ctx context.Context, authorId int64) (string, error)
	BumpGenerationAttempts(ctx context.Context, tokenId int64) error
	TokenGenerated(ctx context.Context, tokenId int64, imageUrl string) error
	TokenFailed(ctx context.Context, tokenId int64, message string) error
}

type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Claims detected tokens and turns the author's prompt into a hosted image.
// Tokens are processed concurrently through the worker pool, one claim batch
// at a time.
type Generator struct {
	*task.Task

	store   GeneratorStore
	client  GenerationClient
	monitor monitoring.Monitor
}

func NewGenerator(config *config.Config) (self *Generator) {
	self = new(Generator)

	self.Task = task.NewTask(config, "generator").
		WithRepeatedSubtaskFunc(config.Generator.PollInterval, self.handleNew).
		WithWorkerPool(config.Generator.NumWorkers)

	return
}

func (self *Generator) WithStore(store GeneratorStore) *Generator {
	self.store = store
	return self
}

func (self *Generator) WithClient(client GenerationClient) *Generator {
	self.client = client
	return self
}

func (self *Generator) WithMonitor(monitor monitoring.Monitor) *Generator {
	self.monitor = monitor
	return self
}

func (self *Generator) handleNew() (repeat bool, err error) {
	// Mutations outlive a stop request, shutdown waits for the iteration
	ctx := context.Background()

	failed, err := self.store.FailExhaustedGenerations(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to fail exhausted tokens")
		self.monitor.GetReport().Pipeline.Errors.GeneratorDbFailures.Inc()
		return
	}
	if failed > 0 {
		self.Log.WithField("count", failed).Warn("Tokens ran out of generation attempts")
		self.monitor.GetReport().Pipeline.State.GeneratorTokensFailed.Add(failed)
	}

	tokens, err := self.store.ClaimDetected(ctx, self.Config.Generator.BatchSize)
	if err != nil {
		self.Log.WithError(err).Error("Failed to claim detected tokens")
		self.monitor.GetReport().Pipeline.Errors.GeneratorClaimFailures.Inc()

		// Claim failures are retried on the next poll
		err = nil
		return
	}
	if len(tokens) == 0 {
		return
	}

	self.monitor.GetReport().Pipeline.State.GeneratorTokensClaimed.Add(int64(len(tokens)))

	var wg sync.WaitGroup
	wg.Add(len(tokens))
	for _, token := range tokens {
		token := token
		self.SubmitToWorker(func() {
			defer wg.Done()
			self.generate(ctx, &token)
		})
	}
	wg.Wait()

	// A full batch means there's probably more waiting
	repeat = len(tokens) == self.Config.Generator.BatchSize
	return
}

func (self *Generator) generate(ctx context.Context, token *model.Token) {
	log := self.Log.WithField("token_id", token.TokenId)

	prompt, err := self.store.AuthorPrompt(ctx, token.AuthorId)
	if err != nil {
		// Claim stays, the token is re-claimed once it ages out
		log.WithError(err).WithField("author_id", token.AuthorId).Error("Failed to load author prompt")
		self.monitor.GetReport().Pipeline.Errors.GeneratorDbFailures.Inc()
		return
	}

	// Attempts count when they start, a success on the last permitted try
	// leaves the counter at the configured max
	err = self.store.BumpGenerationAttempts(ctx, token.TokenId)
	if err != nil {
		log.WithError(err).Error("Failed to bump generation attempts")
		self.monitor.GetReport().Pipeline.Errors.GeneratorDbFailures.Inc()
		return
	}
	token.GenerationAttempts++

	imageUrl, err := self.client.Generate(ctx, prompt)
	if errs.IsContentPolicy(err) {
		// One retry with the neutral prompt, a second failure is final
		log.Warn("Prompt rejected by content policy, retrying with fallback prompt")
		self.monitor.GetReport().Pipeline.State.GeneratorFallbackPrompts.Inc()

		imageUrl, err = self.client.Generate(ctx, self.Config.Generator.FallbackPrompt)
		if err != nil {
			self.fail(ctx, token, "content policy: "+err.Error())
			return
		}
	}

	switch {
	case err == nil:
		err = self.store.TokenGenerated(ctx, token.TokenId, imageUrl)
		if err != nil {
			log.WithError(err).Error("Failed to save generated image url")
			self.monitor.GetReport().Pipeline.Errors.GeneratorDbFailures.Inc()
			return
		}
		self.monitor.GetReport().Pipeline.State.GeneratorTokensGenerated.Inc()

	case errs.IsTransient(err):
		log.WithError(err).Warn("Transient generation failure")
		self.monitor.GetReport().Pipeline.Errors.GeneratorTransientRetries.Inc()

		if self.Config.Generator.MaxAttempts > 0 && token.GenerationAttempts >= self.Config.Generator.MaxAttempts {
			self.fail(ctx, token, err.Error())
		}
		// Otherwise the token stays generating and ages back into the queue

	default:
		self.fail(ctx, token, err.Error())
	}
}

func (self *Generator) fail(ctx context.Context, token *model.Token, message string) {
	log := self.Log.WithField("token_id", token.TokenId)
	log.WithField("reason", message).Error("Token generation failed permanently")

	err := self.store.TokenFailed(ctx, token.TokenId, message)
	if err != nil {
		log.WithError(err).Error("Failed to mark token as failed")
		self.monitor.GetReport().Pipeline.Errors.GeneratorDbFailures.Inc()
		return
	}

	self.monitor.GetReport().Pipeline.Errors.GeneratorPermanentFailures.Inc()
	self.monitor.GetReport().Pipeline.State.GeneratorTokensFailed.Inc()
}
