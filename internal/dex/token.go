package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
	Name     string
}

// TokenDecimals reads an ERC20's decimals.
func TokenDecimals(ctx context.Context, caller Caller, token common.Address) (uint8, error) {
	parsed, err := erc20ABIString.get()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// BalanceOf reads an ERC20 balance.
func BalanceOf(ctx context.Context, caller Caller, token, owner common.Address) (*big.Int, error) {
	return callBigInt(ctx, caller, token, erc20ABIString, "balanceOf", owner)
}

// PackTransfer encodes an ERC20 transfer.
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return pack(erc20ABIString, "transfer", to, amount)
}

// FetchTokenMeta loads token metadata via ERC20 calls. Symbol and name fall
// back to bytes32 encodings and are left empty if both fail.
func FetchTokenMeta(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) (TokenMeta, error) {
	meta := TokenMeta{Address: token}

	decimals, err := TokenDecimals(ctx, caller, token)
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	meta.Symbol = readText(ctx, caller, token, "symbol", logger)
	meta.Name = readText(ctx, caller, token, "name", logger)
	return meta, nil
}

func readText(ctx context.Context, caller Caller, token common.Address, method string, logger *zap.Logger) string {
	stringABI, err := erc20ABIString.get()
	if err != nil {
		return ""
	}
	if values, err := callMethod(ctx, caller, token, stringABI, method); err == nil {
		if text, ok := values[0].(string); ok {
			return text
		}
	}

	bytes32ABI, err := erc20ABIBytes32.get()
	if err != nil {
		return ""
	}
	values, err := callMethod(ctx, caller, token, bytes32ABI, method)
	if err != nil {
		if logger != nil {
			logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		}
		return ""
	}
	text, _ := bytes32ToString(values[0])
	return text
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

// TokenMetaCache keeps recently used token metadata.
type TokenMetaCache struct {
	cache  *lru.Cache
	caller Caller
	logger *zap.Logger
}

func NewTokenMetaCache(size int, caller Caller, logger *zap.Logger) (*TokenMetaCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("token cache: %w", err)
	}
	return &TokenMetaCache{cache: cache, caller: caller, logger: logger}, nil
}

// Get returns cached metadata, loading it on a miss.
func (c *TokenMetaCache) Get(ctx context.Context, token common.Address) (TokenMeta, error) {
	if v, ok := c.cache.Get(token); ok {
		return v.(TokenMeta), nil
	}
	meta, err := FetchTokenMeta(ctx, c.caller, token, c.logger)
	if err != nil {
		return meta, err
	}
	c.cache.Add(token, meta)
	return meta, nil
}
