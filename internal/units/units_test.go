package units

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToReadable(t *testing.T) {
	raw, _ := new(big.Int).SetString("1500000000000000000", 10)
	got := ToReadable(raw, 18)
	if !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("readable mismatch: %s", got)
	}
	if !ToReadable(nil, 18).IsZero() {
		t.Fatalf("nil should be zero")
	}
}

func TestToRawRounds(t *testing.T) {
	got := ToRaw(decimal.RequireFromString("1.2345675"), 6)
	if got.String() != "1234568" {
		t.Fatalf("raw mismatch: %s", got)
	}
	got = ToRaw(decimal.RequireFromString("2"), 0)
	if got.String() != "2" {
		t.Fatalf("raw mismatch: %s", got)
	}
}

func TestWeiToEther(t *testing.T) {
	got := WeiToEther(big.NewInt(21000 * 5_000_000_000))
	if !got.Equal(decimal.RequireFromString("0.000105")) {
		t.Fatalf("ether mismatch: %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(big.NewInt(-1234), 3); got != "-1.234" {
		t.Fatalf("format mismatch: %s", got)
	}
	if got := FormatAmount(big.NewInt(42), 0); got != "42" {
		t.Fatalf("format mismatch: %s", got)
	}
	if got := FormatAmount(nil, 6); got != "0" {
		t.Fatalf("format mismatch: %s", got)
	}
}
