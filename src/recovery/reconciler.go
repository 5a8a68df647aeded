package recovery

import (
	"context"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/logger"
	"github.com/mintforge/revealer/src/utils/model"
	"github.com/mintforge/revealer/src/utils/monitoring"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChainReader interface {
	NextTokenId(ctx context.Context) (int64, error)
}

// Summary of one reconciliation run
type Result struct {
	// Number of tokens minted on chain
	OnChainCount int64 `json:"on_chain_count"`

	// Minted tokens with no matching row, before the batch cap
	MissingCount int `json:"missing_count"`

	// Rows recreated in this run
	RecoveredCount int `json:"recovered_count"`

	// Rows that appeared concurrently between the diff and the insert
	SkippedDuplicates int `json:"skipped_duplicates"`

	// True when the run rolled back instead of committing
	DryRun bool `json:"dry_run"`
}

// Recreates db rows for tokens that exist on chain but are missing locally,
// typically after a db restore. Recovered tokens enter the pipeline at
// detected and flow through the normal stages.
type Reconciler struct {
	config  *config.Config
	log     *logrus.Entry
	db      *gorm.DB
	chain   ChainReader
	monitor monitoring.Monitor
}

func NewReconciler(config *config.Config) (self *Reconciler) {
	self = new(Reconciler)
	self.config = config
	self.log = logger.NewSublogger("reconciler")
	return
}

func (self *Reconciler) WithDb(db *gorm.DB) *Reconciler {
	self.db = db
	return self
}

func (self *Reconciler) WithChainClient(chain ChainReader) *Reconciler {
	self.chain = chain
	return self
}

func (self *Reconciler) WithMonitor(monitor monitoring.Monitor) *Reconciler {
	self.monitor = monitor
	return self
}

// Runs one reconciliation pass. limit caps the number of recreated rows,
// limit <= 0 falls back to the configured batch size, where 0 again means
// unbounded. Safe to re-run, a second pass over a consistent db is a no-op.
func (self *Reconciler) Reconcile(ctx context.Context, limit int, dryRun bool) (result Result, err error) {
	result.DryRun = dryRun

	if limit <= 0 {
		limit = self.config.Recovery.BatchSize
	}

	nextId, err := self.chain.NextTokenId(ctx)
	if err != nil {
		self.log.WithError(err).Error("Failed to read next token id from chain")
		self.monitor.GetReport().Recovery.Errors.ChainReadFailures.Inc()
		return
	}
	result.OnChainCount = nextId

	var existing []int64
	err = self.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("token_id < ?", nextId).
		Order("token_id ASC").
		Pluck("token_id", &existing).
		Error
	if err != nil {
		self.log.WithError(err).Error("Failed to list existing token ids")
		return
	}

	missing := missingTokenIds(existing, nextId)
	result.MissingCount = len(missing)
	if len(missing) == 0 {
		self.log.Info("No missing tokens, nothing to recover")
		return
	}

	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}

	self.log.WithField("on_chain", nextId).
		WithField("missing", result.MissingCount).
		WithField("recovering", len(missing)).
		Info("Recovering missing tokens")

	authorId, err := model.EnsureDefaultAuthor(ctx, self.db,
		self.config.Recovery.DefaultAuthorWallet,
		self.config.Recovery.DefaultAuthorPrompt)
	if err != nil {
		self.log.WithError(err).Error("Failed to ensure default author")
		return
	}

	// All inserts commit or roll back together
	tx := self.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		err = tx.Error
		return
	}

	for _, tokenId := range missing {
		token := model.Token{
			TokenId:  tokenId,
			Status:   model.TokenStatusDetected,
			AuthorId: authorId,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoNothing: true,
		}).Create(&token)
		if insert.Error != nil {
			tx.Rollback()
			self.log.WithError(insert.Error).WithField("token_id", tokenId).Error("Failed to insert recovered token")
			self.monitor.GetReport().Recovery.Errors.InsertFailures.Inc()
			err = insert.Error
			return
		}
		if insert.RowsAffected == 0 {
			// Someone inserted the row since the diff, not an error
			self.log.WithField("token_id", tokenId).Debug("Token already present, skipping")
			result.SkippedDuplicates++
			continue
		}
		result.RecoveredCount++
	}

	if dryRun {
		self.log.WithField("would_recover", result.RecoveredCount).Info("Dry run, rolling back")
		err = tx.Rollback().Error
		return
	}

	err = tx.Commit().Error
	if err != nil {
		self.log.WithError(err).Error("Failed to commit recovered tokens")
		self.monitor.GetReport().Recovery.Errors.InsertFailures.Inc()
		return
	}

	self.monitor.GetReport().Recovery.State.TokensRecovered.Add(int64(result.RecoveredCount))
	self.monitor.GetReport().Recovery.State.SkippedDuplicates.Add(int64(result.SkippedDuplicates))
	return
}
