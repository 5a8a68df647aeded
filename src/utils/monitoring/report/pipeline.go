package report

import "go.uber.org/atomic"

type PipelineErrors struct {
	GeneratorClaimFailures     atomic.Uint64 `json:"generator_claim_failures"`
	GeneratorTransientRetries  atomic.Uint64 `json:"generator_transient_retries"`
	GeneratorPermanentFailures atomic.Uint64 `json:"generator_permanent_failures"`
	GeneratorDbFailures        atomic.Uint64 `json:"generator_db_failures"`
	UploaderClaimFailures      atomic.Uint64 `json:"uploader_claim_failures"`
	UploaderTransientRetries   atomic.Uint64 `json:"uploader_transient_retries"`
	UploaderPermanentFailures  atomic.Uint64 `json:"uploader_permanent_failures"`
	UploaderDbFailures         atomic.Uint64 `json:"uploader_db_failures"`
	RevealerClaimFailures      atomic.Uint64 `json:"revealer_claim_failures"`
	RevealerSubmitFailures     atomic.Uint64 `json:"revealer_submit_failures"`
	RevealerRevertedBatches    atomic.Uint64 `json:"revealer_reverted_batches"`
	RevealerTimedOutBatches    atomic.Uint64 `json:"revealer_timed_out_batches"`
	RevealerDbFailures         atomic.Uint64 `json:"revealer_db_failures"`
}

type PipelineState struct {
	GeneratorTokensClaimed   atomic.Int64 `json:"generator_tokens_claimed"`
	GeneratorTokensGenerated atomic.Int64 `json:"generator_tokens_generated"`
	GeneratorTokensFailed    atomic.Int64 `json:"generator_tokens_failed"`
	GeneratorFallbackPrompts atomic.Int64 `json:"generator_fallback_prompts"`
	UploaderTokensClaimed    atomic.Int64 `json:"uploader_tokens_claimed"`
	UploaderTokensUploaded   atomic.Int64 `json:"uploader_tokens_uploaded"`
	UploaderTokensFailed     atomic.Int64 `json:"uploader_tokens_failed"`
	RevealerBatchesSubmitted atomic.Int64 `json:"revealer_batches_submitted"`
	RevealerTokensRevealed   atomic.Int64 `json:"revealer_tokens_revealed"`
}

type PipelineReport struct {
	State  PipelineState  `json:"state"`
	Errors PipelineErrors `json:"errors"`
}
