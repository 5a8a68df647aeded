package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/logger"
	"github.com/mintforge/revealer/src/utils/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store owns every token mutation the stage workers perform. Claims are
// atomic: the claim query flips the row into its in-flight state and marks it
// claimed in the same statement, skipping rows locked by concurrent claimers.
// Ownership lives in the claimed_at column, so a worker crash never strands a
// claim - it just ages out.
type Store struct {
	config *config.Config
	log    *logrus.Entry
	db     *gorm.DB
}

func NewStore(config *config.Config, db *gorm.DB) (self *Store) {
	self = new(Store)
	self.config = config
	self.log = logger.NewSublogger("token-store")
	self.db = db
	return
}

// Attempt counter column of each in-flight stage
const (
	columnGenerationAttempts = "generation_attempts"
	columnUploadAttempts     = "upload_attempts"
)

// Claims up to limit tokens: fresh rows waiting in the pool status plus
// in-flight rows whose claim aged out (abandoned by a crashed worker or
// waiting out the transient retry window). maxAttempts <= 0 disables the
// attempt bound on re-claims.
func (self *Store) claim(ctx context.Context, pool, inFlight model.TokenStatus, attemptsColumn string, retryAfter time.Duration, maxAttempts, limit int) (tokens []model.Token, err error) {
	retryInterval := fmt.Sprintf("%d seconds", int(retryAfter.Seconds()))

	err = self.db.WithContext(ctx).
		Raw(fmt.Sprintf(`UPDATE tokens
			SET status = ?, claimed_at = NOW(), updated_at = NOW()
			WHERE token_id IN (SELECT token_id
				FROM tokens
				WHERE (status = ? AND claimed_at IS NULL)
				   OR (status = ? AND claimed_at < NOW() - ?::interval AND (? <= 0 OR %s < ?))
				ORDER BY updated_at ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED)
			RETURNING *`, attemptsColumn),
			inFlight, pool, inFlight, retryInterval, maxAttempts, maxAttempts, limit).
		Scan(&tokens).
		Error
	return
}

// Flips in-flight rows that ran out of attempts to failed. A crashed worker's
// tokens end up here too once their claim ages out.
func (self *Store) failExhausted(ctx context.Context, inFlight model.TokenStatus, attemptsColumn string, retryAfter time.Duration, maxAttempts int, message string) (failed int64, err error) {
	retryInterval := fmt.Sprintf("%d seconds", int(retryAfter.Seconds()))

	result := self.db.WithContext(ctx).
		Exec(fmt.Sprintf(`UPDATE tokens
			SET status = 'failed',
				generation_error = COALESCE(generation_error, ?),
				claimed_at = NULL,
				updated_at = NOW()
			WHERE status = ? AND claimed_at < NOW() - ?::interval AND %s >= ?`, attemptsColumn),
			message, inFlight, retryInterval, maxAttempts)

	return result.RowsAffected, result.Error
}

func (self *Store) ClaimDetected(ctx context.Context, limit int) ([]model.Token, error) {
	return self.claim(ctx,
		model.TokenStatusDetected,
		model.TokenStatusGenerating,
		columnGenerationAttempts,
		self.config.Generator.RetryAfter,
		self.config.Generator.MaxAttempts,
		limit)
}

func (self *Store) FailExhaustedGenerations(ctx context.Context) (int64, error) {
	return self.failExhausted(ctx,
		model.TokenStatusGenerating,
		columnGenerationAttempts,
		self.config.Generator.RetryAfter,
		self.config.Generator.MaxAttempts,
		"generation attempts exhausted")
}

// Uploading is both the pool and the in-flight status of the upload stage, a
// fresh row and an aged-out claim are claimed by the same query.
func (self *Store) ClaimUploading(ctx context.Context, limit int) ([]model.Token, error) {
	return self.claim(ctx,
		model.TokenStatusUploading,
		model.TokenStatusUploading,
		columnUploadAttempts,
		self.config.Uploader.RetryAfter,
		self.config.Uploader.MaxAttempts,
		limit)
}

func (self *Store) FailExhaustedUploads(ctx context.Context) (int64, error) {
	return self.failExhausted(ctx,
		model.TokenStatusUploading,
		columnUploadAttempts,
		self.config.Uploader.RetryAfter,
		self.config.Uploader.MaxAttempts,
		"upload attempts exhausted")
}

// Ready tokens are never failed by the reveal stage, so re-claims of aged-out
// claims are unbounded.
func (self *Store) ClaimReady(ctx context.Context, limit int) ([]model.Token, error) {
	return self.claim(ctx,
		model.TokenStatusReady,
		model.TokenStatusReady,
		columnGenerationAttempts,
		self.config.Revealer.RetryAfter,
		0,
		limit)
}

func (self *Store) AuthorPrompt(ctx context.Context, authorId int64) (prompt string, err error) {
	var author model.Author
	err = self.db.WithContext(ctx).
		First(&author, authorId).
		Error
	if err != nil {
		return
	}
	prompt = author.PromptText
	return
}

// Counts the attempt before the generation request goes out. This is a
// separate commit on purpose, the counter must survive a transient failure
// even though the iteration doesn't advance the token.
func (self *Store) BumpGenerationAttempts(ctx context.Context, tokenId int64) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET generation_attempts = generation_attempts + 1, updated_at = NOW()
			WHERE token_id = ?`, tokenId).
		Error
}

func (self *Store) BumpUploadAttempts(ctx context.Context, tokenId int64) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET upload_attempts = upload_attempts + 1, updated_at = NOW()
			WHERE token_id = ?`, tokenId).
		Error
}

func (self *Store) TokenGenerated(ctx context.Context, tokenId int64, imageUrl string) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET status = 'uploading', image_url = ?, claimed_at = NULL, updated_at = NOW()
			WHERE token_id = ? AND status = 'generating'`,
			imageUrl, tokenId).
		Error
}

func (self *Store) TokenUploaded(ctx context.Context, tokenId int64, imageCid, metadataCid string) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET status = 'ready', image_cid = ?, metadata_cid = ?, claimed_at = NULL, updated_at = NOW()
			WHERE token_id = ? AND status = 'uploading'`,
			imageCid, metadataCid, tokenId).
		Error
}

func (self *Store) TokenFailed(ctx context.Context, tokenId int64, message string) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET status = 'failed', generation_error = ?, claimed_at = NULL, updated_at = NOW()
			WHERE token_id = ? AND status IN ('generating', 'uploading')`,
			message, tokenId).
		Error
}

// The whole batch becomes revealed or none of it does
func (self *Store) TokensRevealed(ctx context.Context, tokenIds []int64, txHash string) (err error) {
	return self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			result := tx.Exec(`UPDATE tokens
				SET status = 'revealed', reveal_tx_hash = ?, claimed_at = NULL, updated_at = NOW()
				WHERE token_id = ANY(?) AND status = 'ready'`,
				txHash, pq.Int64Array(tokenIds))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != int64(len(tokenIds)) {
				// Rolls the whole update back
				return fmt.Errorf("reveal covered %d of %d tokens", result.RowsAffected, len(tokenIds))
			}
			return nil
		})
}

// Puts claimed ready tokens back into the pool after a failed batch
func (self *Store) ReleaseReady(ctx context.Context, tokenIds []int64) (err error) {
	return self.db.WithContext(ctx).
		Exec(`UPDATE tokens
			SET claimed_at = NULL, updated_at = NOW()
			WHERE token_id = ANY(?) AND status = 'ready'`,
			pq.Int64Array(tokenIds)).
		Error
}
