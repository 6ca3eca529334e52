package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"dexArb/internal/model"
)

// Pool is a constant-product pair contract.
type Pool struct {
	Address common.Address
	Token0  common.Address
	Token1  common.Address

	caller Caller
}

// NewPool reads the pool's token addresses.
func NewPool(ctx context.Context, caller Caller, address common.Address) (*Pool, error) {
	token0, err := callAddress(ctx, caller, address, pairABI, "token0")
	if err != nil {
		return nil, err
	}
	token1, err := callAddress(ctx, caller, address, pairABI, "token1")
	if err != nil {
		return nil, err
	}
	return &Pool{Address: address, Token0: token0, Token1: token1, caller: caller}, nil
}

// Reserves returns the raw reserves in pool order.
func (p *Pool) Reserves(ctx context.Context) (model.PairReserves, error) {
	parsed, err := pairABI.get()
	if err != nil {
		return model.PairReserves{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.Address, parsed, "getReserves")
	if err != nil {
		return model.PairReserves{}, err
	}
	if len(values) < 2 {
		return model.PairReserves{}, fmt.Errorf("getReserves return size %d", len(values))
	}
	r0, err := asBigInt(values[0])
	if err != nil {
		return model.PairReserves{}, fmt.Errorf("reserve0: %w", err)
	}
	r1, err := asBigInt(values[1])
	if err != nil {
		return model.PairReserves{}, fmt.Errorf("reserve1: %w", err)
	}
	return model.PairReserves{TokenA: r0, TokenB: r1}, nil
}

// ReservesFor returns reserves with TokenA set to base's side of the pool.
func (p *Pool) ReservesFor(ctx context.Context, base common.Address) (model.PairReserves, error) {
	if base != p.Token0 && base != p.Token1 {
		return model.PairReserves{}, fmt.Errorf("token %s not in pool %s", base.Hex(), p.Address.Hex())
	}
	r, err := p.Reserves(ctx)
	if err != nil {
		return model.PairReserves{}, err
	}
	if base == p.Token1 {
		return r.Flip(), nil
	}
	return r, nil
}
