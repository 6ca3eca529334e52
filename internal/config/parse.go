package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// ParseAddress converts an optional hex address. Empty input yields the zero address.
func ParseAddress(key, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", key, input)
	}
	return common.HexToAddress(input), nil
}

// addressSetting reads an address key from v. YAML decodes an unquoted hex
// value that fits in 64 bits as an integer, so integers are taken as the
// numeric address rather than reformatted in decimal.
func addressSetting(v *viper.Viper, key string) (common.Address, error) {
	var n *big.Int
	switch raw := v.Get(key).(type) {
	case int:
		n = big.NewInt(int64(raw))
	case int32:
		n = big.NewInt(int64(raw))
	case int64:
		n = big.NewInt(raw)
	case uint:
		n = new(big.Int).SetUint64(uint64(raw))
	case uint32:
		n = new(big.Int).SetUint64(uint64(raw))
	case uint64:
		n = new(big.Int).SetUint64(raw)
	default:
		return ParseAddress(key, v.GetString(key))
	}
	if n.Sign() < 0 {
		return common.Address{}, fmt.Errorf("invalid %s address: %s (quote hex addresses in config files)", key, n)
	}
	return common.BigToAddress(n), nil
}
