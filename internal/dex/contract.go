package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TradeCheck is the flash contract's own opportunity assessment.
type TradeCheck struct {
	AToB     bool
	AmountIn *big.Int // token1 units
	Profit   *big.Int // token0 units
}

// FlashContract is the flash-loan execution contract.
type FlashContract struct {
	Address common.Address
	caller  Caller
}

func NewFlashContract(caller Caller, address common.Address) *FlashContract {
	return &FlashContract{Address: address, caller: caller}
}

// CheckTrading asks the contract for the best route and size.
func (f *FlashContract) CheckTrading(ctx context.Context, token0, token1 common.Address) (TradeCheck, error) {
	parsed, err := flashArbitrageABI.get()
	if err != nil {
		return TradeCheck{}, fmt.Errorf("parse flash abi: %w", err)
	}
	values, err := callMethod(ctx, f.caller, f.Address, parsed, "checkTrading", token0, token1)
	if err != nil {
		return TradeCheck{}, err
	}
	if len(values) != 3 {
		return TradeCheck{}, fmt.Errorf("checkTrading return size %d", len(values))
	}
	aToB, ok := values[0].(bool)
	if !ok {
		return TradeCheck{}, fmt.Errorf("checkTrading unexpected type %T", values[0])
	}
	amountIn, err := asBigInt(values[1])
	if err != nil {
		return TradeCheck{}, fmt.Errorf("checkTrading amount: %w", err)
	}
	profit, err := asBigInt(values[2])
	if err != nil {
		return TradeCheck{}, fmt.Errorf("checkTrading profit: %w", err)
	}
	return TradeCheck{AToB: aToB, AmountIn: amountIn, Profit: profit}, nil
}

// Routers returns the contract's configured venue routers.
func (f *FlashContract) Routers(ctx context.Context) (common.Address, common.Address, error) {
	a, err := callAddress(ctx, f.caller, f.Address, flashArbitrageABI, "aRouter")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b, err := callAddress(ctx, f.caller, f.Address, flashArbitrageABI, "bRouter")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return a, b, nil
}

// PackFlashTrade encodes trade(token0, token1, aToB, amountIn).
func PackFlashTrade(token0, token1 common.Address, aToB bool, amountIn *big.Int) ([]byte, error) {
	return pack(flashArbitrageABI, "trade", token0, token1, aToB, amountIn)
}

// PackSetRouters encodes setRouters(a, b).
func PackSetRouters(a, b common.Address) ([]byte, error) {
	return pack(flashArbitrageABI, "setRouters", a, b)
}

// PackNormalTrade encodes trade(token0, token1, amountIn, forward).
func PackNormalTrade(token0, token1 common.Address, amountIn *big.Int, forward bool) ([]byte, error) {
	return pack(normalArbitrageABI, "trade", token0, token1, amountIn, forward)
}
