package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/logger"
	"github.com/mintforge/revealer/src/utils/task"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Entry points of the collection contract consumed by the pipeline
const contractABIJson = `[
	{"type":"function","name":"nextTokenId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"batchReveal","stateMutability":"nonpayable","inputs":[{"name":"tokenIds","type":"uint256[]"},{"name":"metadataUris","type":"string[]"}],"outputs":[]}
]`

type ConfirmationStatus int

const (
	ConfirmationConfirmed ConfirmationStatus = iota
	ConfirmationReverted
	ConfirmationTimedOut
)

func (status ConfirmationStatus) String() string {
	switch status {
	case ConfirmationConfirmed:
		return "confirmed"
	case ConfirmationReverted:
		return "reverted"
	case ConfirmationTimedOut:
		return "timed_out"
	}
	return ""
}

type Client struct {
	config *config.Contract
	log    *logrus.Entry

	client          *ethclient.Client
	contractAbi     abi.ABI
	contractAddress common.Address
	privateKey      *ecdsa.PrivateKey
	senderAddress   common.Address
}

func NewClient(config *config.Contract) (self *Client, err error) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("eth-client")

	self.client, err = ethclient.Dial(config.RpcUrl)
	if err != nil {
		self.log.WithError(err).Error("Cannot dial the RPC node")
		return
	}

	self.contractAbi, err = abi.JSON(strings.NewReader(contractABIJson))
	if err != nil {
		return
	}

	self.contractAddress = common.HexToAddress(config.Address)

	if config.PrivateKey != "" {
		self.privateKey, err = crypto.HexToECDSA(strings.TrimPrefix(config.PrivateKey, "0x"))
		if err != nil {
			self.log.WithError(err).Error("Cannot parse the operator private key")
			return
		}
		self.senderAddress = crypto.PubkeyToAddress(self.privateKey.PublicKey)
	}

	return
}

// Reads the contract's next assignable token id, the exclusive upper bound of
// the minted id range. RPC failures are retried with bounded backoff.
func (self *Client) NextTokenId(ctx context.Context) (nextId int64, err error) {
	data, err := self.contractAbi.Pack("nextTokenId")
	if err != nil {
		return
	}

	var raw []byte
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxAttempts(uint64(self.config.RetryMaxAttempts)).
		WithInitialInterval(self.config.RetryInitialInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.log.WithError(err).Warn("Failed to read next token id, retrying...")
			return err
		}).
		Run(func() error {
			var err error
			raw, err = self.client.CallContract(ctx, ethereum.CallMsg{
				To:   &self.contractAddress,
				Data: data,
			}, nil)
			return err
		})
	if err != nil {
		err = errs.ChainConnection(err)
		return
	}

	values, err := self.contractAbi.Unpack("nextTokenId", raw)
	if err != nil {
		return
	}

	counter, ok := values[0].(*big.Int)
	if !ok {
		err = errors.New("unexpected nextTokenId return type")
		return
	}

	nextId = counter.Int64()
	return
}

// Multiplier applied to the node's suggested gas price, in percent
func gasPricePercent(strategy string) int64 {
	switch strategy {
	case "fast":
		return 150
	case "slow":
		return 100
	default:
		// medium
		return 120
	}
}

func applyPercent(value *big.Int, percent int64) *big.Int {
	out := new(big.Int).Mul(value, big.NewInt(percent))
	return out.Div(out, big.NewInt(100))
}

// Submits one reveal transaction covering the whole batch.
// Gas strategy and buffer come from configuration, not from the caller.
func (self *Client) SubmitBatchReveal(ctx context.Context, tokenIds []int64, metadataUris []string) (txHash string, err error) {
	if self.privateKey == nil {
		err = errors.New("operator private key not configured")
		return
	}
	if len(tokenIds) != len(metadataUris) {
		err = fmt.Errorf("token ids and metadata uris length mismatch: %d != %d", len(tokenIds), len(metadataUris))
		return
	}

	ids := make([]*big.Int, len(tokenIds))
	for i, id := range tokenIds {
		ids[i] = big.NewInt(id)
	}

	data, err := self.contractAbi.Pack("batchReveal", ids, metadataUris)
	if err != nil {
		return
	}

	nonce, err := self.client.PendingNonceAt(ctx, self.senderAddress)
	if err != nil {
		err = errs.ChainConnection(err)
		return
	}

	suggested, err := self.client.SuggestGasPrice(ctx)
	if err != nil {
		err = errs.ChainConnection(err)
		return
	}
	gasPrice := applyPercent(suggested, gasPricePercent(self.config.GasStrategy))

	gasLimit, err := self.client.EstimateGas(ctx, ethereum.CallMsg{
		From:     self.senderAddress,
		To:       &self.contractAddress,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		err = errs.ChainConnection(err)
		return
	}
	gasLimit = gasLimit * uint64(100+self.config.GasBufferPercent) / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &self.contractAddress,
		Data:     data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(self.config.ChainId)), self.privateKey)
	if err != nil {
		return
	}

	err = self.client.SendTransaction(ctx, signedTx)
	if err != nil {
		err = errs.ChainConnection(err)
		return
	}

	txHash = signedTx.Hash().Hex()
	self.log.WithField("tx_hash", txHash).WithField("num_tokens", len(tokenIds)).Info("Submitted batch reveal")
	return
}

// Polls for the receipt until the transaction is mined or the timeout passes
func (self *Client) WaitForConfirmation(ctx context.Context, txHash string, timeout time.Duration) (status ConfirmationStatus, err error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(self.config.ConfirmationPollInterval)
	defer ticker.Stop()

	for {
		receipt, receiptErr := self.client.TransactionReceipt(waitCtx, hash)
		if receiptErr == nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				status = ConfirmationConfirmed
			} else {
				status = ConfirmationReverted
			}
			return
		}
		if !errors.Is(receiptErr, ethereum.NotFound) && waitCtx.Err() == nil {
			err = errs.ChainConnection(receiptErr)
			return
		}

		select {
		case <-waitCtx.Done():
			status = ConfirmationTimedOut
			return
		case <-ticker.C:
			// pass through
		}
	}
}
