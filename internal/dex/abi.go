package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const pairABIJSON = `[
  {"inputs": [], "name": "getReserves", "outputs": [
    {"internalType": "uint112", "name": "_reserve0", "type": "uint112"},
    {"internalType": "uint112", "name": "_reserve1", "type": "uint112"},
    {"internalType": "uint32", "name": "_blockTimestampLast", "type": "uint32"}
  ], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const routerABIJSON = `[
  {"inputs": [], "name": "factory", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [
    {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
    {"internalType": "uint256", "name": "reserveIn", "type": "uint256"},
    {"internalType": "uint256", "name": "reserveOut", "type": "uint256"}
  ], "name": "getAmountOut", "outputs": [{"internalType": "uint256", "name": "amountOut", "type": "uint256"}], "stateMutability": "pure", "type": "function"}
]`

const factoryABIJSON = `[
  {"inputs": [
    {"internalType": "address", "name": "tokenA", "type": "address"},
    {"internalType": "address", "name": "tokenB", "type": "address"}
  ], "name": "getPair", "outputs": [{"internalType": "address", "name": "pair", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "name": "allPairs", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "allPairsLength", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [
    {"internalType": "address", "name": "to", "type": "address"},
    {"internalType": "uint256", "name": "amount", "type": "uint256"}
  ], "name": "transfer", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const flashArbitrageABIJSON = `[
  {"inputs": [
    {"internalType": "address", "name": "token0", "type": "address"},
    {"internalType": "address", "name": "token1", "type": "address"}
  ], "name": "checkTrading", "outputs": [
    {"internalType": "bool", "name": "", "type": "bool"},
    {"internalType": "uint256", "name": "", "type": "uint256"},
    {"internalType": "uint256", "name": "", "type": "uint256"}
  ], "stateMutability": "view", "type": "function"},
  {"inputs": [
    {"internalType": "address", "name": "token0", "type": "address"},
    {"internalType": "address", "name": "token1", "type": "address"},
    {"internalType": "bool", "name": "aToB", "type": "bool"},
    {"internalType": "uint256", "name": "amountIn", "type": "uint256"}
  ], "name": "trade", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "aRouter", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "bRouter", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [
    {"internalType": "address", "name": "_aRouter", "type": "address"},
    {"internalType": "address", "name": "_bRouter", "type": "address"}
  ], "name": "setRouters", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

const normalArbitrageABIJSON = `[
  {"inputs": [
    {"internalType": "address", "name": "token0", "type": "address"},
    {"internalType": "address", "name": "token1", "type": "address"},
    {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
    {"internalType": "bool", "name": "forward", "type": "bool"}
  ], "name": "trade", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

type lazyABI struct {
	raw    string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.raw))
	})
	return l.parsed, l.err
}

var (
	pairABI            = &lazyABI{raw: pairABIJSON}
	routerABI          = &lazyABI{raw: routerABIJSON}
	factoryABI         = &lazyABI{raw: factoryABIJSON}
	erc20ABIString     = &lazyABI{raw: erc20ABIStringJSON}
	erc20ABIBytes32    = &lazyABI{raw: erc20ABIBytes32JSON}
	flashArbitrageABI  = &lazyABI{raw: flashArbitrageABIJSON}
	normalArbitrageABI = &lazyABI{raw: normalArbitrageABIJSON}
)

// PairABI returns the parsed constant-product pair ABI.
func PairABI() (abi.ABI, error) { return pairABI.get() }

// RouterABI returns the parsed router ABI.
func RouterABI() (abi.ABI, error) { return routerABI.get() }

// FactoryABI returns the parsed factory ABI.
func FactoryABI() (abi.ABI, error) { return factoryABI.get() }

// ERC20ABI returns the parsed ERC20 ABI.
func ERC20ABI() (abi.ABI, error) { return erc20ABIString.get() }

// FlashArbitrageABI returns the parsed flash-loan execution contract ABI.
func FlashArbitrageABI() (abi.ABI, error) { return flashArbitrageABI.get() }

// NormalArbitrageABI returns the parsed funded execution contract ABI.
func NormalArbitrageABI() (abi.ABI, error) { return normalArbitrageABI.get() }
