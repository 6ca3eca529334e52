package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dexArb/internal/model"
)

func snapshot(index uint64, name string) model.PairSnapshot {
	return model.PairSnapshot{
		RunID: "run-1",
		Index: index,
		Name:  name,
		A:     model.VenueStats{Venue: "PancakeSwap", Price: 2},
		B:     model.VenueStats{Venue: "SushiSwap", Price: 2.1},
	}
}

func TestJsonlAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pairs.jsonl")
	sink := NewJsonlStorage(path)
	ctx := context.Background()

	if err := sink.PutSnapshots(ctx, []model.PairSnapshot{snapshot(0, "WBNB/USDT")}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutSnapshots(ctx, []model.PairSnapshot{snapshot(1, "CAKE/WBNB"), snapshot(2, "ETH/WBNB")}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	var names []string
	err := ReadSnapshots(path, func(s model.PairSnapshot) error {
		names = append(names, s.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(names) != 3 || names[0] != "WBNB/USDT" || names[2] != "ETH/WBNB" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestJsonlReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	sink := NewJsonlStorage(path)
	if err := sink.PutSnapshots(context.Background(), []model.PairSnapshot{snapshot(0, "A/B")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := sink.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("file not truncated: %d bytes", info.Size())
	}
}

func TestReadSnapshotsStopAndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	content := `{"name":"A/B","index":0}` + "\n\n" + `{"name":"C/D","index":1}` + "\n" + `not json` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	seen := 0
	err := ReadSnapshots(path, func(model.PairSnapshot) error {
		seen++
		return ErrStop
	})
	if err != nil || seen != 1 {
		t.Fatalf("stop: seen=%d err=%v", seen, err)
	}

	err = ReadSnapshots(path, func(model.PairSnapshot) error { return nil })
	if err == nil {
		t.Fatalf("expected error for malformed line")
	}

	boom := errors.New("boom")
	if err := ReadSnapshots(path, func(model.PairSnapshot) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("callback error not returned: %v", err)
	}
}

type failingSink struct{ err error }

func (f failingSink) PutSnapshots(context.Context, []model.PairSnapshot) error { return f.err }

func TestFanoutStopsAtFirstError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	boom := errors.New("db down")
	fan := Fanout{failingSink{err: boom}, NewJsonlStorage(path)}

	if err := fan.PutSnapshots(context.Background(), []model.PairSnapshot{snapshot(0, "A/B")}); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("second sink should not have run")
	}
}
