package config

import (
	"time"

	"github.com/spf13/viper"
)

type Contract struct {
	// JSON-RPC endpoint of the chain node
	RpcUrl string

	// Address of the collection contract
	Address string

	// Chain id used for transaction signing
	ChainId int64

	// Hex encoded private key of the reveal operator
	PrivateKey string

	// Gas price strategy: fast, medium or slow
	GasStrategy string

	// Percent added on top of the estimated gas limit
	GasBufferPercent int64

	// How often the receipt is polled for while waiting for confirmation
	ConfirmationPollInterval time.Duration

	// Number of attempts for read-only RPC calls
	RetryMaxAttempts int

	// First interval of the RPC retry backoff, doubled on each attempt
	RetryInitialInterval time.Duration
}

func setContractDefaults() {
	viper.SetDefault("Contract.RpcUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Contract.Address", "")
	viper.SetDefault("Contract.ChainId", "1")
	viper.SetDefault("Contract.PrivateKey", "")
	viper.SetDefault("Contract.GasStrategy", "medium")
	viper.SetDefault("Contract.GasBufferPercent", "10")
	viper.SetDefault("Contract.ConfirmationPollInterval", "3s")
	viper.SetDefault("Contract.RetryMaxAttempts", "3")
	viper.SetDefault("Contract.RetryInitialInterval", "1s")
}
