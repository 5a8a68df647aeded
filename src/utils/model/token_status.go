package model

import (
	"database/sql/driver"
	"fmt"
)

// CREATE TYPE token_status AS ENUM ('detected', 'generating', 'uploading', 'ready', 'revealed', 'failed');
type TokenStatus string

const (
	// Inserted by the mint detector or the recovery run, waiting for generation
	TokenStatusDetected TokenStatus = "detected"

	// Claimed by the generation worker
	TokenStatusGenerating TokenStatus = "generating"

	// Image generated, waiting for the storage upload
	TokenStatusUploading TokenStatus = "uploading"

	// Metadata pinned, waiting for the batch reveal
	TokenStatusReady TokenStatus = "ready"

	// Covered by a confirmed reveal transaction. Terminal.
	TokenStatusRevealed TokenStatus = "revealed"

	// Attempts exhausted or permanent error. Terminal unless reset by an operator.
	TokenStatusFailed TokenStatus = "failed"
)

// Drivers hand enum values back as either string or []byte
func (self *TokenStatus) Scan(value interface{}) error {
	switch value := value.(type) {
	case string:
		*self = TokenStatus(value)
	case []byte:
		*self = TokenStatus(value)
	default:
		return fmt.Errorf("cannot scan %T into TokenStatus", value)
	}
	return nil
}

func (self TokenStatus) Value() (driver.Value, error) {
	return string(self), nil
}

var validTransitions = map[TokenStatus][]TokenStatus{
	TokenStatusDetected:   {TokenStatusGenerating},
	TokenStatusGenerating: {TokenStatusUploading, TokenStatusFailed},
	TokenStatusUploading:  {TokenStatusReady, TokenStatusFailed},
	TokenStatusReady:      {TokenStatusRevealed},
	TokenStatusRevealed:   {},
	TokenStatusFailed:     {},
}

// Reports whether the status change follows the pipeline's state graph.
// Staying in place is always allowed, that's the transient retry loop.
func (self TokenStatus) CanAdvanceTo(next TokenStatus) bool {
	if self == next {
		return true
	}
	for _, allowed := range validTransitions[self] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (self TokenStatus) IsTerminal() bool {
	return len(validTransitions[self]) == 0
}
