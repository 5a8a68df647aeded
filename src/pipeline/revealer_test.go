package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/eth"
	"github.com/mintforge/revealer/src/utils/model"
	monitor_pipeline "github.com/mintforge/revealer/src/utils/monitoring/pipeline"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeRevealerStore struct {
	claimable [][]model.Token

	revealed    []int64
	revealedTx  string
	revealedErr error
	released    []int64
}

func (self *fakeRevealerStore) ClaimReady(ctx context.Context, limit int) ([]model.Token, error) {
	if len(self.claimable) == 0 {
		return nil, nil
	}
	tokens := self.claimable[0]
	self.claimable = self.claimable[1:]
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens, nil
}

func (self *fakeRevealerStore) TokensRevealed(ctx context.Context, tokenIds []int64, txHash string) error {
	if self.revealedErr != nil {
		return self.revealedErr
	}
	self.revealed = append(self.revealed, tokenIds...)
	self.revealedTx = txHash
	return nil
}

func (self *fakeRevealerStore) ReleaseReady(ctx context.Context, tokenIds []int64) error {
	self.released = append(self.released, tokenIds...)
	return nil
}

type fakeChainClient struct {
	submittedIds  []int64
	submittedUris []string
	submitErr     error
	status        eth.ConfirmationStatus
	waitErr       error
}

func (self *fakeChainClient) SubmitBatchReveal(ctx context.Context, tokenIds []int64, metadataUris []string) (string, error) {
	if self.submitErr != nil {
		return "", self.submitErr
	}
	self.submittedIds = tokenIds
	self.submittedUris = metadataUris
	return "0xabc", nil
}

func (self *fakeChainClient) WaitForConfirmation(ctx context.Context, txHash string, timeout time.Duration) (eth.ConfirmationStatus, error) {
	return self.status, self.waitErr
}

func TestRevealerTestSuite(t *testing.T) {
	suite.Run(t, new(RevealerTestSuite))
}

type RevealerTestSuite struct {
	suite.Suite
	ctx    context.Context
	config *config.Config

	store   *fakeRevealerStore
	chain   *fakeChainClient
	monitor *monitor_pipeline.Monitor
}

func (s *RevealerTestSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *RevealerTestSuite) SetupTest() {
	s.config = config.Default()
	s.config.Revealer.BatchWait = 20 * time.Millisecond
	s.config.Revealer.FillInterval = time.Millisecond
	s.store = &fakeRevealerStore{}
	s.chain = &fakeChainClient{}
	s.monitor = monitor_pipeline.NewMonitor(s.config).WithMaxHistorySize(1)
}

func (s *RevealerTestSuite) revealer() *Revealer {
	return NewRevealer(s.config).
		WithStore(s.store).
		WithChainClient(s.chain).
		WithMonitor(s.monitor)
}

func readyTokens(ids ...int64) (tokens []model.Token) {
	for _, id := range ids {
		tokens = append(tokens, model.Token{
			TokenId:     id,
			Status:      model.TokenStatusReady,
			MetadataCid: sql.NullString{String: "QmMeta", Valid: true},
		})
	}
	return
}

func (s *RevealerTestSuite) TestConfirmedBatchIsRevealed() {
	s.chain.status = eth.ConfirmationConfirmed

	s.revealer().reveal(s.ctx, readyTokens(1, 2, 3))

	require.Equal(s.T(), []int64{1, 2, 3}, s.chain.submittedIds)
	require.Equal(s.T(), []string{"ipfs://QmMeta", "ipfs://QmMeta", "ipfs://QmMeta"}, s.chain.submittedUris)
	require.Equal(s.T(), []int64{1, 2, 3}, s.store.revealed)
	require.Equal(s.T(), "0xabc", s.store.revealedTx)
	require.Empty(s.T(), s.store.released)
	require.Equal(s.T(), int64(3), s.monitor.GetReport().Pipeline.State.RevealerTokensRevealed.Load())
}

func (s *RevealerTestSuite) TestRevertedBatchIsReleased() {
	s.chain.status = eth.ConfirmationReverted

	s.revealer().reveal(s.ctx, readyTokens(1, 2))

	require.Empty(s.T(), s.store.revealed)
	require.Equal(s.T(), []int64{1, 2}, s.store.released)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Pipeline.Errors.RevealerRevertedBatches.Load())
}

func (s *RevealerTestSuite) TestTimedOutBatchIsReleased() {
	s.chain.status = eth.ConfirmationTimedOut

	s.revealer().reveal(s.ctx, readyTokens(1))

	require.Empty(s.T(), s.store.revealed)
	require.Equal(s.T(), []int64{1}, s.store.released)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Pipeline.Errors.RevealerTimedOutBatches.Load())
}

func (s *RevealerTestSuite) TestSubmitFailureReleasesBatch() {
	s.chain.submitErr = errors.New("rpc down")

	s.revealer().reveal(s.ctx, readyTokens(1, 2))

	require.Empty(s.T(), s.store.revealed)
	require.Equal(s.T(), []int64{1, 2}, s.store.released)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Pipeline.Errors.RevealerSubmitFailures.Load())
}

func (s *RevealerTestSuite) TestDbFailureAfterConfirmationReleasesBatch() {
	s.chain.status = eth.ConfirmationConfirmed
	s.store.revealedErr = errors.New("db gone")

	s.revealer().reveal(s.ctx, readyTokens(1))

	require.Equal(s.T(), []int64{1}, s.store.released)
	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Pipeline.Errors.RevealerDbFailures.Load())
}

func (s *RevealerTestSuite) TestFillTopsUpTheBatch() {
	s.config.Revealer.MaxBatchTokens = 3
	s.store.claimable = [][]model.Token{readyTokens(2), readyTokens(3)}

	batch := s.revealer().fill(s.ctx, readyTokens(1))

	require.Len(s.T(), batch, 3)
	require.Equal(s.T(), int64(1), batch[0].TokenId)
	require.Equal(s.T(), int64(2), batch[1].TokenId)
	require.Equal(s.T(), int64(3), batch[2].TokenId)
}

func (s *RevealerTestSuite) TestEmptyPollDoesNothing() {
	repeat, err := s.revealer().handleNew()
	require.Nil(s.T(), err)
	require.False(s.T(), repeat)
	require.Nil(s.T(), s.chain.submittedIds)
}
