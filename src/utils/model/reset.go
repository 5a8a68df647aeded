package model

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Operator driven reset, the only way out of the failed status.
// Attempts and error text are wiped so the token goes through the whole
// pipeline again. Returns the number of tokens actually reset.
func ResetFailed(ctx context.Context, db *gorm.DB, tokenIds []int64) (reset int64, err error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE tokens
		SET status = 'detected',
			generation_attempts = 0,
			upload_attempts = 0,
			generation_error = NULL,
			claimed_at = NULL,
			updated_at = NOW()
		WHERE status = 'failed' AND token_id = ANY(?)`,
		pq.Int64Array(tokenIds))

	return result.RowsAffected, result.Error
}
