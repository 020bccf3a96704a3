package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"trading-dashboard/internal/store"
	"trading-dashboard/internal/types"
)

func testLedger() *Ledger {
	fixed := time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC)
	return New(store.NewMemory()).WithClock(func() time.Time { return fixed })
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPnLSigns(t *testing.T) {
	cases := []struct {
		side    types.Side
		entry   float64
		current float64
		size    float64
		want    float64
	}{
		{types.Long, 0.0901, 0.0890, 1755, -1.9305},
		{types.Long, 0.0890, 0.0901, 1755, 1.9305},
		{types.Short, 0.0901, 0.0890, 1755, 1.9305},
		{types.Short, 0.0890, 0.0901, 1755, -1.9305},
		{types.Long, 1.0, 1.0, 500, 0},
		{types.Short, 1.0, 1.0, 500, 0},
	}

	for _, tc := range cases {
		got := PnL(tc.side, tc.entry, tc.current, tc.size)
		if !almostEqual(got, tc.want) {
			t.Errorf("PnL(%s, %v, %v, %v) = %v, want %v", tc.side, tc.entry, tc.current, tc.size, got, tc.want)
		}
	}
}

func TestOpenOrUpdateKeepsOneOpenRow(t *testing.T) {
	ctx := context.Background()
	l := testLedger()

	cur := 0.0890
	if _, err := l.OpenOrUpdate(ctx, "alice", "CHRUSDT", types.Long, 0.0901, 1755, nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := l.OpenOrUpdate(ctx, "alice", "CHRUSDT", types.Long, 0.0901, 1755, &cur); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := l.OpenOrUpdate(ctx, "alice", "CHRUSDT", types.Long, 0.0901, 1755, &cur); err != nil {
		t.Fatalf("second update: %v", err)
	}

	open, err := l.OpenPositions(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected exactly one open row, got %d", len(open))
	}
	if !almostEqual(open[0].UnrealizedPnl, -1.9305) {
		t.Errorf("Expected unrealized PnL -1.9305, got %v", open[0].UnrealizedPnl)
	}
}

func TestCloseThenReopenCreatesNewRow(t *testing.T) {
	ctx := context.Background()
	l := testLedger()

	if _, err := l.OpenOrUpdate(ctx, "alice", "CHRUSDT", types.Short, 0.0901, 1755, nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	closed, err := l.Close(ctx, "alice", "CHRUSDT", 0.0890)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != types.StatusClosed {
		t.Errorf("Expected CLOSED, got %s", closed.Status)
	}
	if closed.ExitPrice == nil || *closed.ExitPrice != 0.0890 {
		t.Errorf("Exit price not stamped: %+v", closed.ExitPrice)
	}
	if closed.ClosedAt == nil {
		t.Error("ClosedAt not stamped")
	}
	if !almostEqual(closed.RealizedPnl, 1.9305) {
		t.Errorf("Expected realized PnL 1.9305, got %v", closed.RealizedPnl)
	}

	reopened, err := l.OpenOrUpdate(ctx, "alice", "CHRUSDT", types.Short, 0.0950, 1000, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.ID == closed.ID {
		t.Error("Reopen must create a distinct row")
	}

	open, err := l.OpenPositions(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].EntryPrice != 0.0950 {
		t.Errorf("Expected one new open row at 0.0950, got %+v", open)
	}
}

func TestCloseWithoutOpenReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	l := testLedger()

	_, err := l.Close(ctx, "alice", "CHRUSDT", 0.0890)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestApplyRecord(t *testing.T) {
	ctx := context.Background()
	l := testLedger()

	rec := &types.PositionRecord{
		Symbol:        "CHRUSDT",
		Side:          types.Long,
		Size:          1755,
		EntryPrice:    0.0901,
		CurrentPrice:  0.0890,
		PriceMovement: -1.22,
		HasSize:       true,
		HasEntry:      true,
		HasCurrent:    true,
		HasMovement:   true,
	}

	p, err := l.ApplyRecord(ctx, "alice", rec)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Symbol != "CHRUSDT" || p.User != "alice" {
		t.Errorf("Identity wrong: %+v", p)
	}
	if !almostEqual(p.UnrealizedPnl, -1.9305) {
		t.Errorf("Expected unrealized PnL -1.9305, got %v", p.UnrealizedPnl)
	}
	if p.Notes != "Price Movement: -1.22%" {
		t.Errorf("Expected movement note, got %q", p.Notes)
	}
}

func TestApplyRecordNilAndEmpty(t *testing.T) {
	ctx := context.Background()
	l := testLedger()

	if p, err := l.ApplyRecord(ctx, "alice", nil); err != nil || p != nil {
		t.Errorf("Nil record must be a no-op, got %v / %v", p, err)
	}
	if p, err := l.ApplyRecord(ctx, "alice", &types.PositionRecord{}); err != nil || p != nil {
		t.Errorf("Record without symbol must be a no-op, got %v / %v", p, err)
	}
}
