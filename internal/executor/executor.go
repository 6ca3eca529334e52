package executor

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"dexArb/internal/model"
)

// Backend is the node surface needed to sign, send and confirm transactions.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config controls receipt polling.
type Config struct {
	PollInterval   time.Duration
	ReceiptTimeout time.Duration
}

// SubmissionError reports a transaction that was not broadcast or was
// reverted on chain. TxHash is set whenever the transaction was signed.
type SubmissionError struct {
	TxHash  common.Hash
	Reason  error
	Receipt *types.Receipt
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.TxHash.Hex(), e.Reason)
}

func (e *SubmissionError) Unwrap() error {
	return e.Reason
}

var (
	// ErrReverted is the reason of a SubmissionError for a status 0 receipt.
	ErrReverted = errors.New("execution reverted")
	// ErrReceiptTimeout is the reason when no receipt arrived in time.
	ErrReceiptTimeout = errors.New("receipt timeout")
)

// Executor signs and submits transactions for a single key, one at a time.
type Executor struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	signer  types.Signer
	cfg     Config
	logger  *zap.Logger

	mu sync.Mutex
}

// New reads the chain ID once and binds the signer to it.
func New(ctx context.Context, backend Backend, key *ecdsa.PrivateKey, cfg Config, logger *zap.Logger) (*Executor, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if key == nil {
		return nil, fmt.Errorf("private key is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 2 * time.Minute
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	return &Executor{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.LatestSignerForChainID(chainID),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// From returns the signing address.
func (e *Executor) From() common.Address {
	return e.from
}

// EstimateGas estimates a call from the signing address.
func (e *Executor) EstimateGas(ctx context.Context, to common.Address, data []byte) (uint64, error) {
	return e.backend.EstimateGas(ctx, ethereum.CallMsg{From: e.from, To: &to, Data: data})
}

// Submit signs req with the current pending nonce, broadcasts it and waits for
// its receipt. Calls are serialized so at most one transaction is in flight.
func (e *Executor) Submit(ctx context.Context, req model.TransactionRequest) (model.TransactionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	nonce, err := e.backend.PendingNonceAt(ctx, e.from)
	if err != nil {
		return model.TransactionResult{}, &SubmissionError{Reason: fmt.Errorf("pending nonce: %w", err)}
	}
	req.From = e.from
	req.Nonce = nonce

	gasPrice := req.GasPrice
	if gasPrice == nil {
		gasPrice = new(big.Int)
	}
	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		To:       &to,
		Gas:      req.GasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, e.signer, e.key)
	if err != nil {
		return model.TransactionResult{}, &SubmissionError{Reason: fmt.Errorf("sign: %w", err)}
	}
	hash := signed.Hash()

	if err := e.backend.SendTransaction(ctx, signed); err != nil {
		return model.TransactionResult{}, &SubmissionError{TxHash: hash, Reason: err}
	}
	e.logger.Debug("transaction sent",
		zap.String("tx", hash.Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", req.GasLimit),
		zap.String("gas_price", gasPrice.String()),
	)

	receipt, err := e.waitReceipt(ctx, hash)
	if err != nil {
		return model.TransactionResult{}, &SubmissionError{TxHash: hash, Reason: err}
	}

	result := model.TransactionResult{
		TxHash:            hash,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		Success:           receipt.Status == types.ReceiptStatusSuccessful,
	}
	if result.EffectiveGasPrice == nil {
		result.EffectiveGasPrice = new(big.Int).Set(gasPrice)
	}
	if !result.Success {
		return result, &SubmissionError{TxHash: hash, Reason: ErrReverted, Receipt: receipt}
	}
	return result, nil
}

func (e *Executor) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := e.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			e.logger.Debug("receipt poll failed", zap.String("tx", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrReceiptTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
