package pipeline

import (
	"context"
	"time"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/eth"
	"github.com/mintforge/revealer/src/utils/model"
	"github.com/mintforge/revealer/src/utils/monitoring"
	"github.com/mintforge/revealer/src/utils/task"
)

type RevealerStore interface {
	ClaimReady(ctx context.Context, limit int) ([]model.Token, error)
	TokensRevealed(ctx context.Context, tokenIds []int64, txHash string) error
	ReleaseReady(ctx context.Context, tokenIds []int64) error
}

type ChainClient interface {
	SubmitBatchReveal(ctx context.Context, tokenIds []int64, metadataUris []string) (string, error)
	WaitForConfirmation(ctx context.Context, txHash string, timeout time.Duration) (eth.ConfirmationStatus, error)
}

// Collects ready tokens into a batch, reveals the whole batch in one contract
// call and waits for the transaction to be mined. Batches are sequential,
// there's never more than one reveal transaction in flight.
type Revealer struct {
	*task.Task

	store   RevealerStore
	chain   ChainClient
	monitor monitoring.Monitor
}

func NewRevealer(config *config.Config) (self *Revealer) {
	self = new(Revealer)

	self.Task = task.NewTask(config, "revealer").
		WithRepeatedSubtaskFunc(config.Revealer.PollInterval, self.handleNew)

	return
}

func (self *Revealer) WithStore(store RevealerStore) *Revealer {
	self.store = store
	return self
}

func (self *Revealer) WithChainClient(chain ChainClient) *Revealer {
	self.chain = chain
	return self
}

func (self *Revealer) WithMonitor(monitor monitoring.Monitor) *Revealer {
	self.monitor = monitor
	return self
}

func (self *Revealer) handleNew() (repeat bool, err error) {
	ctx := context.Background()

	batch, err := self.store.ClaimReady(ctx, self.Config.Revealer.MaxBatchTokens)
	if err != nil {
		self.Log.WithError(err).Error("Failed to claim ready tokens")
		self.monitor.GetReport().Pipeline.Errors.RevealerClaimFailures.Inc()
		err = nil
		return
	}
	if len(batch) == 0 {
		return
	}

	batch = self.fill(ctx, batch)
	self.reveal(ctx, batch)
	return
}

// Tops the batch up during the wait window so reveals amortize gas over as
// many tokens as possible. Cut short when the batch is full or we're stopping.
func (self *Revealer) fill(ctx context.Context, batch []model.Token) []model.Token {
	deadline := time.Now().Add(self.Config.Revealer.BatchWait)

	for len(batch) < self.Config.Revealer.MaxBatchTokens &&
		time.Now().Before(deadline) &&
		!self.IsStopping.Load() {

		select {
		case <-time.After(self.Config.Revealer.FillInterval):
		case <-self.StopChannel:
			return batch
		}

		more, err := self.store.ClaimReady(ctx, self.Config.Revealer.MaxBatchTokens-len(batch))
		if err != nil {
			self.Log.WithError(err).Error("Failed to top up reveal batch")
			self.monitor.GetReport().Pipeline.Errors.RevealerClaimFailures.Inc()
			break
		}
		batch = append(batch, more...)
	}
	return batch
}

func (self *Revealer) reveal(ctx context.Context, batch []model.Token) {
	tokenIds := make([]int64, len(batch))
	metadataUris := make([]string, len(batch))
	for i, token := range batch {
		tokenIds[i] = token.TokenId
		metadataUris[i] = "ipfs://" + token.MetadataCid.String
	}

	log := self.Log.WithField("batch_size", len(batch))

	txHash, err := self.chain.SubmitBatchReveal(ctx, tokenIds, metadataUris)
	if err != nil {
		log.WithError(err).Error("Failed to submit reveal transaction")
		self.monitor.GetReport().Pipeline.Errors.RevealerSubmitFailures.Inc()
		self.release(ctx, tokenIds)
		return
	}

	log = log.WithField("tx_hash", txHash)
	log.Info("Reveal transaction submitted")
	self.monitor.GetReport().Pipeline.State.RevealerBatchesSubmitted.Inc()

	status, err := self.chain.WaitForConfirmation(ctx, txHash, self.Config.Revealer.TransactionTimeout)
	if err != nil {
		log.WithError(err).Error("Failed waiting for reveal confirmation")
		self.monitor.GetReport().Pipeline.Errors.RevealerSubmitFailures.Inc()
		self.release(ctx, tokenIds)
		return
	}

	switch status {
	case eth.ConfirmationConfirmed:
		err = self.store.TokensRevealed(ctx, tokenIds, txHash)
		if err != nil {
			// The chain state is ahead of the db now, the next claim retries
			// the batch and the contract treats the second reveal as a no-op
			log.WithError(err).Error("Failed to mark batch as revealed")
			self.monitor.GetReport().Pipeline.Errors.RevealerDbFailures.Inc()
			self.release(ctx, tokenIds)
			return
		}
		log.Info("Batch revealed")
		self.monitor.GetReport().Pipeline.State.RevealerTokensRevealed.Add(int64(len(tokenIds)))

	case eth.ConfirmationReverted:
		log.Error("Reveal transaction reverted")
		self.monitor.GetReport().Pipeline.Errors.RevealerRevertedBatches.Inc()
		self.release(ctx, tokenIds)

	case eth.ConfirmationTimedOut:
		log.Warn("Reveal transaction not mined in time")
		self.monitor.GetReport().Pipeline.Errors.RevealerTimedOutBatches.Inc()
		self.release(ctx, tokenIds)
	}
}

// Tokens stay ready, they're just claimable again
func (self *Revealer) release(ctx context.Context, tokenIds []int64) {
	err := self.store.ReleaseReady(ctx, tokenIds)
	if err != nil {
		// The claims will age out on their own
		self.Log.WithError(err).Error("Failed to release ready tokens")
		self.monitor.GetReport().Pipeline.Errors.RevealerDbFailures.Inc()
	}
}
