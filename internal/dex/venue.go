package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Venue is a constant-product exchange reached through its router.
type Venue struct {
	Name    string
	Router  common.Address
	Factory common.Address

	caller Caller
}

// NewVenue resolves the router's factory.
func NewVenue(ctx context.Context, caller Caller, name string, router common.Address) (*Venue, error) {
	factory, err := callAddress(ctx, caller, router, routerABI, "factory")
	if err != nil {
		return nil, fmt.Errorf("%s factory: %w", name, err)
	}
	return &Venue{Name: name, Router: router, Factory: factory, caller: caller}, nil
}

// PairFor returns the pool address for tokenA/tokenB, or ErrPairNotFound.
func (v *Venue) PairFor(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	pair, err := callAddress(ctx, v.caller, v.Factory, factoryABI, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	if pair == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s %s/%s: %w", v.Name, tokenA.Hex(), tokenB.Hex(), ErrPairNotFound)
	}
	return pair, nil
}

// AmountOut quotes a single swap through the router, venue fee included.
func (v *Venue) AmountOut(ctx context.Context, amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	return callBigInt(ctx, v.caller, v.Router, routerABI, "getAmountOut", amountIn, reserveIn, reserveOut)
}

// PairsLength returns the number of pools created by the factory.
func (v *Venue) PairsLength(ctx context.Context) (uint64, error) {
	n, err := callBigInt(ctx, v.caller, v.Factory, factoryABI, "allPairsLength")
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("pairs length overflow: %s", n)
	}
	return n.Uint64(), nil
}

// PairAt returns the pool at a factory index.
func (v *Venue) PairAt(ctx context.Context, index uint64) (common.Address, error) {
	return callAddress(ctx, v.caller, v.Factory, factoryABI, "allPairs", new(big.Int).SetUint64(index))
}
