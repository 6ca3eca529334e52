// Package dextest provides an in-memory contract backend for exercising dex
// callers without a node.
package dextest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"dexArb/internal/dex"
)

// Handler produces the outputs of a contract method from its decoded inputs.
type Handler func(args []interface{}) ([]interface{}, error)

type route struct {
	method  abi.Method
	handler Handler
}

// Chain answers eth_call requests from registered handlers.
type Chain struct {
	mu       sync.Mutex
	routes   map[common.Address]map[string]route
	balances map[common.Address]map[common.Address]*big.Int
	reserves map[common.Address][2]*big.Int
	pairs    map[common.Address][]common.Address
	lookup   map[common.Address]map[[2]common.Address]common.Address
	calls    int
}

func New() *Chain {
	return &Chain{
		routes:   make(map[common.Address]map[string]route),
		balances: make(map[common.Address]map[common.Address]*big.Int),
		reserves: make(map[common.Address][2]*big.Int),
		pairs:    make(map[common.Address][]common.Address),
		lookup:   make(map[common.Address]map[[2]common.Address]common.Address),
	}
}

// Handle registers a method handler on a contract address.
func (c *Chain) Handle(to common.Address, parsed abi.ABI, method string, h Handler) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("dextest: unknown method %s", method))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.routes[to] == nil {
		c.routes[to] = make(map[string]route)
	}
	c.routes[to][string(m.ID)] = route{method: m, handler: h}
}

// Return registers constant outputs for a method.
func (c *Chain) Return(to common.Address, parsed abi.ABI, method string, values ...interface{}) {
	c.Handle(to, parsed, method, func([]interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// Fail makes every call to a method return err.
func (c *Chain) Fail(to common.Address, parsed abi.ABI, method string, err error) {
	c.Handle(to, parsed, method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}

// Calls returns the number of eth_call requests served.
func (c *Chain) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// CallContract implements dex.Caller.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("dextest: malformed call")
	}
	c.mu.Lock()
	c.calls++
	r, ok := c.routes[*msg.To][string(msg.Data[:4])]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("dextest: no handler for %s selector %x", msg.To.Hex(), msg.Data[:4])
	}
	args, err := r.method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("dextest: unpack %s: %w", r.method.Name, err)
	}
	out, err := r.handler(args)
	if err != nil {
		return nil, err
	}
	return r.method.Outputs.Pack(out...)
}

// AddToken registers an ERC20 with mutable balances.
func (c *Chain) AddToken(token common.Address, decimals uint8, symbol string) {
	parsed := mustABI(dex.ERC20ABI())
	c.Return(token, parsed, "decimals", decimals)
	c.Return(token, parsed, "symbol", symbol)
	c.Return(token, parsed, "name", symbol+" Token")
	c.Handle(token, parsed, "balanceOf", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{c.BalanceOf(token, args[0].(common.Address))}, nil
	})
}

// SetBalance sets an ERC20 balance.
func (c *Chain) SetBalance(token, owner common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balances[token] == nil {
		c.balances[token] = make(map[common.Address]*big.Int)
	}
	c.balances[token][owner] = new(big.Int).Set(amount)
}

// BalanceOf returns an ERC20 balance, zero when unset.
func (c *Chain) BalanceOf(token, owner common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bal, ok := c.balances[token][owner]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// AddVenue registers a router and its factory. The router quotes with a 0.3%
// constant-product fee.
func (c *Chain) AddVenue(router, factory common.Address) {
	routerABI := mustABI(dex.RouterABI())
	factoryABI := mustABI(dex.FactoryABI())

	c.Return(router, routerABI, "factory", factory)
	c.Handle(router, routerABI, "getAmountOut", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{GetAmountOut(args[0].(*big.Int), args[1].(*big.Int), args[2].(*big.Int))}, nil
	})

	c.mu.Lock()
	c.lookup[factory] = make(map[[2]common.Address]common.Address)
	c.mu.Unlock()

	c.Handle(factory, factoryABI, "getPair", func(args []interface{}) ([]interface{}, error) {
		a, b := args[0].(common.Address), args[1].(common.Address)
		c.mu.Lock()
		defer c.mu.Unlock()
		return []interface{}{c.lookup[factory][[2]common.Address{a, b}]}, nil
	})
	c.Handle(factory, factoryABI, "allPairsLength", func([]interface{}) ([]interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return []interface{}{big.NewInt(int64(len(c.pairs[factory])))}, nil
	})
	c.Handle(factory, factoryABI, "allPairs", func(args []interface{}) ([]interface{}, error) {
		idx := args[0].(*big.Int).Int64()
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < 0 || idx >= int64(len(c.pairs[factory])) {
			return nil, fmt.Errorf("dextest: allPairs index %d out of range", idx)
		}
		return []interface{}{c.pairs[factory][idx]}, nil
	})
}

// AddPool lists a pair on a factory with the given pool-order reserves.
func (c *Chain) AddPool(factory, pair, token0, token1 common.Address, reserve0, reserve1 *big.Int) {
	parsed := mustABI(dex.PairABI())
	c.Return(pair, parsed, "token0", token0)
	c.Return(pair, parsed, "token1", token1)
	c.Handle(pair, parsed, "getReserves", func([]interface{}) ([]interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		r := c.reserves[pair]
		return []interface{}{new(big.Int).Set(r[0]), new(big.Int).Set(r[1]), uint32(0)}, nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reserves[pair] = [2]*big.Int{new(big.Int).Set(reserve0), new(big.Int).Set(reserve1)}
	c.pairs[factory] = append(c.pairs[factory], pair)
	if c.lookup[factory] == nil {
		c.lookup[factory] = make(map[[2]common.Address]common.Address)
	}
	c.lookup[factory][[2]common.Address{token0, token1}] = pair
	c.lookup[factory][[2]common.Address{token1, token0}] = pair
}

// SetReserves replaces a pool's reserves.
func (c *Chain) SetReserves(pair common.Address, reserve0, reserve1 *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reserves[pair] = [2]*big.Int{new(big.Int).Set(reserve0), new(big.Int).Set(reserve1)}
}

func mustABI(parsed abi.ABI, err error) abi.ABI {
	if err != nil {
		panic(err)
	}
	return parsed
}
