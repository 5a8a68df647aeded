package report

import "go.uber.org/atomic"

type RecoveryErrors struct {
	ChainReadFailures atomic.Uint64 `json:"chain_read_failures"`
	InsertFailures    atomic.Uint64 `json:"insert_failures"`
}

type RecoveryState struct {
	TokensRecovered   atomic.Int64 `json:"tokens_recovered"`
	SkippedDuplicates atomic.Int64 `json:"skipped_duplicates"`
}

type RecoveryReport struct {
	State  RecoveryState  `json:"state"`
	Errors RecoveryErrors `json:"errors"`
}
