package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"trading-dashboard/internal/models"
	"trading-dashboard/internal/store"
	"trading-dashboard/internal/types"
)

var testNow = time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC)

func testService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := New(mem, mem).WithClock(func() time.Time { return testNow })
	return svc, mem
}

func addClosed(t *testing.T, mem *store.Memory, user, side string, pnl float64, closedAt time.Time) {
	t.Helper()
	exit := 1.0
	p := &models.Position{
		User:       user,
		Symbol:     "CHRUSDT",
		Side:       side,
		EntryPrice: 1.0,
		ExitPrice:  &exit,
		Size:       100,
		Status:     types.StatusClosed,
		Pnl:        pnl,
		CreatedAt:  closedAt.Add(-time.Hour),
		ClosedAt:   &closedAt,
	}
	if err := mem.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func addOpen(t *testing.T, mem *store.Memory, user, side string, pnl float64) {
	t.Helper()
	p := &models.Position{
		User:       user,
		Symbol:     "ALPINEUSDT",
		Side:       side,
		EntryPrice: 1.0,
		Size:       100,
		Status:     types.StatusOpen,
		Pnl:        pnl,
		CreatedAt:  testNow.Add(-time.Hour),
	}
	if err := mem.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestUserStatsWinRate(t *testing.T) {
	svc, mem := testService(t)

	// 4 closed trades, 3 profitable.
	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-24*time.Hour))
	addClosed(t, mem, "alice", "LONG", 5, testNow.Add(-23*time.Hour))
	addClosed(t, mem, "alice", "SHORT", 15, testNow.Add(-22*time.Hour))
	addClosed(t, mem, "alice", "SHORT", -6, testNow.Add(-21*time.Hour))

	st, err := svc.UserStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if st.TotalTrades != 4 {
		t.Errorf("Expected 4 trades, got %d", st.TotalTrades)
	}
	if st.WinRate != 75.0 {
		t.Errorf("Expected win rate 75.0, got %v", st.WinRate)
	}
	if st.SuccessfulTrades != 3 || st.FailedTrades != 1 {
		t.Errorf("Win/loss split wrong: %d/%d", st.SuccessfulTrades, st.FailedTrades)
	}
	if st.LongTrades != 2 || st.ShortTrades != 2 {
		t.Errorf("Side split wrong: %d/%d", st.LongTrades, st.ShortTrades)
	}
	if math.Abs(st.ProfitFactor-5.0) > 1e-9 {
		t.Errorf("Expected profit factor 30/6=5, got %v", st.ProfitFactor)
	}
	if math.Abs(st.AvgProfit-10.0) > 1e-9 {
		t.Errorf("Expected avg profit 10, got %v", st.AvgProfit)
	}
	if math.Abs(st.AvgLoss-6.0) > 1e-9 {
		t.Errorf("Expected avg loss 6, got %v", st.AvgLoss)
	}
}

func TestUserStatsNoTrades(t *testing.T) {
	svc, _ := testService(t)

	st, err := svc.UserStats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if st.TotalTrades != 0 || st.WinRate != 0 || st.ProfitFactor != 0 {
		t.Errorf("Expected zero-value stats, got %+v", st)
	}
}

func TestUserStatsByPeriodFiltersCreation(t *testing.T) {
	svc, mem := testService(t)

	// Two positions today (one still open), one from 20 days ago.
	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-2*time.Hour))
	addClosed(t, mem, "alice", "LONG", -5, testNow.AddDate(0, 0, -20))
	addOpen(t, mem, "alice", "LONG", 0)

	st, err := svc.UserStatsByPeriod(context.Background(), "alice", "today")
	if err != nil {
		t.Fatalf("stats by period: %v", err)
	}
	if st.TotalTrades != 2 {
		t.Errorf("Expected 2 trades today, got %d", st.TotalTrades)
	}
	if st.OpenPositions != 1 {
		t.Errorf("Expected 1 open position, got %d", st.OpenPositions)
	}
}

func TestUserStatsYesterdayExcludesToday(t *testing.T) {
	svc, mem := testService(t)

	// One position created yesterday, one created today.
	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-24*time.Hour))
	addClosed(t, mem, "alice", "SHORT", -3, testNow.Add(-2*time.Hour))

	st, err := svc.UserStatsByPeriod(context.Background(), "alice", "yesterday")
	if err != nil {
		t.Fatalf("stats by period: %v", err)
	}
	if st.TotalTrades != 1 {
		t.Errorf("Expected 1 trade yesterday, got %d", st.TotalTrades)
	}
	if st.SuccessfulTrades != 1 || st.FailedTrades != 0 {
		t.Errorf("Win/loss split wrong: %d/%d", st.SuccessfulTrades, st.FailedTrades)
	}

	today, err := svc.UserStatsByPeriod(context.Background(), "alice", "today")
	if err != nil {
		t.Fatalf("stats by period: %v", err)
	}
	if today.TotalTrades != 1 || today.FailedTrades != 1 {
		t.Errorf("Today window wrong: %+v", today)
	}
}

func TestComparisonLongVsShort(t *testing.T) {
	svc, mem := testService(t)

	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-2*time.Hour))
	addClosed(t, mem, "alice", "LONG", -4, testNow.Add(-3*time.Hour))
	addClosed(t, mem, "bob", "SHORT", 7, testNow.Add(-4*time.Hour))

	cmp, err := svc.Comparison(context.Background(), "week")
	if err != nil {
		t.Fatalf("comparison: %v", err)
	}
	if cmp.TotalPositions != 3 {
		t.Errorf("Expected 3 positions, got %d", cmp.TotalPositions)
	}
	if cmp.Long.Positions != 2 || cmp.Long.Profitable != 1 {
		t.Errorf("Long side wrong: %+v", cmp.Long)
	}
	if cmp.Short.Positions != 1 || cmp.Short.Profitable != 1 {
		t.Errorf("Short side wrong: %+v", cmp.Short)
	}
	if cmp.Long.SuccessRate != 50 || cmp.Short.SuccessRate != 100 {
		t.Errorf("Rates wrong: long=%v short=%v", cmp.Long.SuccessRate, cmp.Short.SuccessRate)
	}
	if math.Abs(cmp.Long.TotalPnl-6) > 1e-9 {
		t.Errorf("Expected long pnl 6, got %v", cmp.Long.TotalPnl)
	}
}

func TestDailyPnlSeriesZeroFills(t *testing.T) {
	svc, mem := testService(t)

	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-24*time.Hour))
	addClosed(t, mem, "alice", "LONG", 2, testNow.Add(-25*time.Hour))

	series, err := svc.DailyPnlSeries(context.Background(), "alice", 7)
	if err != nil {
		t.Fatalf("pnl series: %v", err)
	}
	if len(series) != 8 {
		t.Fatalf("Expected 8 points for a 7-day window, got %d", len(series))
	}

	var nonZero int
	for _, pt := range series {
		if pt.Pnl != 0 {
			nonZero++
			if pt.Date != "2025-09-26" {
				t.Errorf("PnL landed on wrong day: %+v", pt)
			}
			if math.Abs(pt.Pnl-12) > 1e-9 {
				t.Errorf("Expected 12 on close day, got %v", pt.Pnl)
			}
		}
	}
	if nonZero != 1 {
		t.Errorf("Expected exactly one non-zero day, got %d", nonZero)
	}
}

func TestTradeHistoryNewestFirst(t *testing.T) {
	svc, mem := testService(t)

	addClosed(t, mem, "alice", "LONG", 1, testNow.Add(-3*time.Hour))
	addClosed(t, mem, "alice", "SHORT", 2, testNow.Add(-1*time.Hour))

	rows, err := svc.TradeHistory(context.Background(), "week")
	if err != nil {
		t.Fatalf("trade history: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].CreatedAt.Before(rows[1].CreatedAt) {
		t.Error("Expected newest-first ordering")
	}
}

func TestRefreshStatsPersistsRow(t *testing.T) {
	svc, mem := testService(t)

	addClosed(t, mem, "alice", "LONG", 10, testNow.Add(-2*time.Hour))

	if err := svc.RefreshStats(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	row, err := mem.GetStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if row.TotalTrades != 1 || row.WinRate != 100 {
		t.Errorf("Persisted stats wrong: %+v", row)
	}
	if !row.LastUpdated.Equal(testNow) {
		t.Errorf("Expected LastUpdated %v, got %v", testNow, row.LastUpdated)
	}
}
