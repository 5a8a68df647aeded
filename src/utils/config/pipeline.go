package config

import (
	"time"

	"github.com/spf13/viper"
)

type Generator struct {
	// How often new detected tokens are polled for
	PollInterval time.Duration

	// Max number of tokens claimed in one iteration
	BatchSize int

	// Number of workers generating images in parallel
	NumWorkers int

	// Max generation attempts per token before it's marked as failed
	MaxAttempts int

	// A claimed token whose claim is older than this becomes claimable again
	RetryAfter time.Duration

	// Prompt substituted after a content policy rejection
	FallbackPrompt string
}

type Uploader struct {
	// How often tokens waiting for upload are polled for
	PollInterval time.Duration

	// Max number of tokens claimed in one iteration
	BatchSize int

	// Number of workers uploading in parallel
	NumWorkers int

	// Max upload attempts per token before it's marked as failed
	MaxAttempts int

	// A claimed token whose claim is older than this becomes claimable again
	RetryAfter time.Duration

	// Timeout for downloading the generated image
	DownloadTimeout time.Duration
}

type Revealer struct {
	// How often ready tokens are polled for
	PollInterval time.Duration

	// Max number of tokens revealed in one transaction
	MaxBatchTokens int

	// How long the worker waits for the batch to fill up before submitting
	BatchWait time.Duration

	// How often the batch is topped up during the wait window
	FillInterval time.Duration

	// A claimed ready token whose claim is older than this becomes claimable again
	RetryAfter time.Duration

	// Max time to wait for the reveal transaction to be mined
	TransactionTimeout time.Duration
}

type Recovery struct {
	// Max number of missing tokens recreated in one run. 0 means no limit.
	BatchSize int

	// Wallet address the recovered tokens are attributed to
	DefaultAuthorWallet string

	// Prompt used for tokens recovered without provenance
	DefaultAuthorPrompt string
}

func setGeneratorDefaults() {
	viper.SetDefault("Generator.PollInterval", "1s")
	viper.SetDefault("Generator.BatchSize", "10")
	viper.SetDefault("Generator.NumWorkers", "5")
	viper.SetDefault("Generator.MaxAttempts", "3")
	viper.SetDefault("Generator.RetryAfter", "30s")
	viper.SetDefault("Generator.FallbackPrompt", "abstract geometric artwork, vivid colors, digital art")
}

func setUploaderDefaults() {
	viper.SetDefault("Uploader.PollInterval", "1s")
	viper.SetDefault("Uploader.BatchSize", "10")
	viper.SetDefault("Uploader.NumWorkers", "5")
	viper.SetDefault("Uploader.MaxAttempts", "3")
	viper.SetDefault("Uploader.RetryAfter", "30s")
	viper.SetDefault("Uploader.DownloadTimeout", "30s")
}

func setRevealerDefaults() {
	viper.SetDefault("Revealer.PollInterval", "1s")
	viper.SetDefault("Revealer.MaxBatchTokens", "50")
	viper.SetDefault("Revealer.BatchWait", "5s")
	viper.SetDefault("Revealer.FillInterval", "500ms")
	viper.SetDefault("Revealer.RetryAfter", "60s")
	viper.SetDefault("Revealer.TransactionTimeout", "2m")
}

func setRecoveryDefaults() {
	viper.SetDefault("Recovery.BatchSize", "500")
	viper.SetDefault("Recovery.DefaultAuthorWallet", "0x0000000000000000000000000000000000000000")
	viper.SetDefault("Recovery.DefaultAuthorPrompt", "abstract geometric artwork, vivid colors, digital art")
}
