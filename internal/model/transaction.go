package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionRequest describes a contract call to sign and broadcast. Nonce is
// assigned by the executor right before signing.
type TransactionRequest struct {
	From     common.Address
	To       common.Address
	Data     []byte
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
}

// TransactionResult is the receipt summary of a mined transaction.
type TransactionResult struct {
	TxHash            common.Hash
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	Success           bool
}

// Fee returns gasUsed * effectiveGasPrice in wei.
func (r TransactionResult) Fee() *big.Int {
	if r.EffectiveGasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(r.GasUsed), r.EffectiveGasPrice)
}
