package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &m), string(line))
		out = append(out, m)
	}
	return out
}

func TestLoggerWritesLogRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(zapcore.AddSync(&buf), "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("init done", zap.String("pair", "0xabc"))
	_ = logger.Sync()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "log", lines[0]["command"])
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "init done", lines[0]["log"])
	assert.Equal(t, "0xabc", lines[0]["pair"])
	_, isNumber := lines[0]["time"].(float64)
	assert.True(t, isNumber)
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(zapcore.AddSync(&bytes.Buffer{}), "loud")
	assert.Error(t, err)
}

func TestReporterRecords(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(zapcore.AddSync(&buf), nil)
	r.now = func() time.Time { return time.UnixMilli(1700000000123) }
	ctx := context.Background()

	contract := common.HexToAddress("0x00000000000000000000000000000000000000c1")
	token := common.HexToAddress("0x00000000000000000000000000000000000000d0")
	tx := common.HexToHash("0x01")

	require.NoError(t, r.Account(ctx, contract, token))
	require.NoError(t, r.Trade(ctx, decimal.RequireFromString("100"), decimal.RequireFromString("100.5"), decimal.RequireFromString("0.0003"), tx))
	require.NoError(t, r.Transfer(ctx, decimal.RequireFromString("12.1"), decimal.RequireFromString("112.1"), decimal.RequireFromString("0.0001"), tx))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "account", lines[0]["command"])
	account := lines[0]["account"].(map[string]interface{})
	assert.Equal(t, contract.Hex(), account["address"])
	assert.Equal(t, token.Hex(), account["currency"])

	assert.Equal(t, "trade", lines[1]["command"])
	assert.Equal(t, float64(1700000000123), lines[1]["time"])
	assert.Equal(t, 100.0, lines[1]["preBalance"])
	assert.Equal(t, 100.5, lines[1]["postBalance"])
	assert.Equal(t, 0.0003, lines[1]["txnFee"])
	assert.Equal(t, tx.Hex(), lines[1]["txn"])

	assert.Equal(t, "transaction", lines[2]["command"])
	assert.Equal(t, 12.1, lines[2]["amount"])
	assert.Equal(t, 112.1, lines[2]["balance"])
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []byte) error { return errors.New("down") }

func TestReporterWritesBeforeMirror(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(zapcore.AddSync(&buf), failingPublisher{})

	err := r.Account(context.Background(), common.Address{}, common.Address{})
	assert.Error(t, err)
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewRedisPublisher(ctx, mr.Addr(), "arb:records")
	require.NoError(t, err)
	defer pub.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()
	ps := sub.Subscribe(ctx, "arb:records")
	defer ps.Close()
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewReporter(zapcore.AddSync(&buf), pub)
	require.NoError(t, r.Trade(ctx, decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.Zero, common.HexToHash("0x02")))

	select {
	case msg := <-ps.Channel():
		assert.Contains(t, msg.Payload, `"command":"trade"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisherRequiresChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	_, err := NewRedisPublisher(context.Background(), mr.Addr(), "")
	assert.Error(t, err)
}
