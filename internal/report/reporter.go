// Package report writes the operator-facing record stream.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"

	"dexArb/internal/model"
	"dexArb/internal/units"
)

// Publisher mirrors records to an external channel.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Reporter writes account, trade and transaction records as JSON lines. It
// must share its writer with the logger so lines never interleave.
type Reporter struct {
	out    zapcore.WriteSyncer
	mirror Publisher
	now    func() time.Time
}

func NewReporter(out zapcore.WriteSyncer, mirror Publisher) *Reporter {
	return &Reporter{out: out, mirror: mirror, now: time.Now}
}

// Account announces the monitored balance holder.
func (r *Reporter) Account(ctx context.Context, address, currency common.Address) error {
	return r.emit(ctx, model.AccountRecord{
		Command: model.CommandAccount,
		Account: model.AccountInfo{Address: address.Hex(), Currency: currency.Hex()},
	})
}

// Trade records a completed arbitrage.
func (r *Reporter) Trade(ctx context.Context, pre, post, fee decimal.Decimal, tx common.Hash) error {
	return r.emit(ctx, model.TradeRecord{
		Command:     model.CommandTrade,
		Time:        r.now().UnixMilli(),
		PreBalance:  units.Float(pre),
		PostBalance: units.Float(post),
		TxnFee:      units.Float(fee),
		Txn:         tx.Hex(),
	})
}

// Transfer records a completed funding transfer.
func (r *Reporter) Transfer(ctx context.Context, amount, balance, fee decimal.Decimal, tx common.Hash) error {
	return r.emit(ctx, model.TransferRecord{
		Command: model.CommandTransaction,
		Time:    r.now().UnixMilli(),
		Amount:  units.Float(amount),
		Balance: units.Float(balance),
		TxnFee:  units.Float(fee),
		Txn:     tx.Hex(),
	})
}

func (r *Reporter) emit(ctx context.Context, record interface{}) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := r.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if r.mirror != nil {
		if err := r.mirror.Publish(ctx, line); err != nil {
			return fmt.Errorf("mirror record: %w", err)
		}
	}
	return nil
}
