// Package analytics is the read side over persisted positions: win rates,
// profit factors, period comparisons and chart series for the dashboard.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/models"
	"trading-dashboard/internal/types"
)

// UserStats is the full per-user report. Zero values stand in for missing
// data; absence of trades is never an error.
type UserStats struct {
	User             string  `json:"user"`
	Period           string  `json:"period,omitempty"`
	TotalTrades      int     `json:"total_trades"`
	SuccessfulTrades int     `json:"successful_trades"`
	FailedTrades     int     `json:"failed_trades"`
	LongTrades       int     `json:"long_trades"`
	ShortTrades      int     `json:"short_trades"`
	OpenPositions    int     `json:"open_positions"`
	TotalPnl         float64 `json:"total_pnl"`
	WinRate          float64 `json:"win_rate"`
	AvgProfit        float64 `json:"avg_profit"`
	AvgLoss          float64 `json:"avg_loss"`
	ProfitFactor     float64 `json:"profit_factor"`
}

// SideStats summarizes one side of a long-vs-short comparison.
type SideStats struct {
	Positions   int     `json:"positions"`
	Profitable  int     `json:"profitable"`
	TotalPnl    float64 `json:"total_pnl"`
	SuccessRate float64 `json:"success_rate"`
}

// PeriodComparison is the long-vs-short breakdown for one period.
type PeriodComparison struct {
	Period             string    `json:"period"`
	TotalPositions     int       `json:"total_positions"`
	Long               SideStats `json:"long"`
	Short              SideStats `json:"short"`
	OverallSuccessRate float64   `json:"overall_success_rate"`
}

// PnlPoint is one day in a daily PnL chart series.
type PnlPoint struct {
	Date string  `json:"date"`
	Pnl  float64 `json:"pnl"`
}

type Service struct {
	positions interfaces.PositionStore
	stats     interfaces.StatsStore
	now       func() time.Time
}

func New(positions interfaces.PositionStore, stats interfaces.StatsStore) *Service {
	return &Service{positions: positions, stats: stats, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UserStats computes all-time statistics for one user.
func (s *Service) UserStats(ctx context.Context, user string) (UserStats, error) {
	rows, err := s.positions.ListPositions(ctx, interfaces.PositionFilter{User: user})
	if err != nil {
		return UserStats{User: user}, fmt.Errorf("list positions for %s: %w", user, err)
	}
	st := computeStats(user, rows)
	return st, nil
}

// UserStatsByPeriod restricts UserStats to positions created within the
// named period: today, yesterday, week, month, year or all.
func (s *Service) UserStatsByPeriod(ctx context.Context, user, period string) (UserStats, error) {
	since, until := s.periodBounds(period)
	rows, err := s.positions.ListPositions(ctx, interfaces.PositionFilter{User: user, CreatedSince: since, CreatedUntil: until})
	if err != nil {
		return UserStats{User: user, Period: period}, fmt.Errorf("list positions for %s: %w", user, err)
	}
	st := computeStats(user, rows)
	st.Period = period
	return st, nil
}

// Comparison breaks the period's positions down by side.
func (s *Service) Comparison(ctx context.Context, period string) (PeriodComparison, error) {
	since, until := s.periodBounds(period)
	rows, err := s.positions.ListPositions(ctx, interfaces.PositionFilter{CreatedSince: since, CreatedUntil: until})
	if err != nil {
		return PeriodComparison{Period: period}, fmt.Errorf("list positions: %w", err)
	}

	cmp := PeriodComparison{Period: period, TotalPositions: len(rows)}
	for _, p := range rows {
		side := &cmp.Long
		if p.Side == string(types.Short) {
			side = &cmp.Short
		}
		side.Positions++
		side.TotalPnl += p.Pnl
		if p.Pnl > 0 {
			side.Profitable++
		}
	}
	cmp.Long.SuccessRate = rate(cmp.Long.Profitable, cmp.Long.Positions)
	cmp.Short.SuccessRate = rate(cmp.Short.Profitable, cmp.Short.Positions)
	cmp.OverallSuccessRate = rate(cmp.Long.Profitable+cmp.Short.Profitable, cmp.TotalPositions)
	return cmp, nil
}

// DailyPnlSeries sums realized PnL of closed positions per calendar day
// over the trailing window, filling quiet days with zeros so charts stay
// continuous.
func (s *Service) DailyPnlSeries(ctx context.Context, user string, days int) ([]PnlPoint, error) {
	if days <= 0 {
		days = 30
	}
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)

	rows, err := s.positions.ListPositions(ctx, interfaces.PositionFilter{
		User:        user,
		Status:      types.StatusClosed,
		ClosedSince: start,
		ClosedUntil: end,
	})
	if err != nil {
		return nil, fmt.Errorf("list closed positions for %s: %w", user, err)
	}

	byDay := make(map[string]float64)
	for _, p := range rows {
		if p.ClosedAt == nil {
			continue
		}
		byDay[p.ClosedAt.UTC().Format("2006-01-02")] += p.Pnl
	}

	series := make([]PnlPoint, 0, days+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		series = append(series, PnlPoint{Date: key, Pnl: byDay[key]})
	}
	return series, nil
}

// TradeHistory lists positions created within the period, newest first.
func (s *Service) TradeHistory(ctx context.Context, period string) ([]models.Position, error) {
	since, until := s.periodBounds(period)
	rows, err := s.positions.ListPositions(ctx, interfaces.PositionFilter{CreatedSince: since, CreatedUntil: until})
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	// Stores return chronological order; the dashboard wants newest first.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// RefreshStats recomputes and persists the TradingStats row for each user.
func (s *Service) RefreshStats(ctx context.Context, users []string) error {
	for _, user := range users {
		st, err := s.UserStats(ctx, user)
		if err != nil {
			return err
		}
		row := &models.TradingStats{
			User:             user,
			TotalTrades:      st.TotalTrades,
			SuccessfulTrades: st.SuccessfulTrades,
			FailedTrades:     st.FailedTrades,
			LongTrades:       st.LongTrades,
			ShortTrades:      st.ShortTrades,
			TotalPnl:         st.TotalPnl,
			WinRate:          st.WinRate,
			LastUpdated:      s.now().UTC(),
		}
		if err := s.stats.UpsertStats(ctx, row); err != nil {
			return fmt.Errorf("upsert stats for %s: %w", user, err)
		}
		logger.Debug(ctx, "Trading stats refreshed", "user", user, "total_trades", st.TotalTrades)
	}
	return nil
}

func computeStats(user string, rows []models.Position) UserStats {
	st := UserStats{User: user, TotalTrades: len(rows)}

	var closed, winning int
	var profits, losses float64
	var profitCount, lossCount int
	for _, p := range rows {
		st.TotalPnl += p.Pnl
		switch p.Side {
		case string(types.Short):
			st.ShortTrades++
		default:
			st.LongTrades++
		}
		if p.Status == types.StatusOpen {
			st.OpenPositions++
			continue
		}
		if p.Status != types.StatusClosed {
			continue
		}
		closed++
		if p.Pnl > 0 {
			winning++
			profits += p.Pnl
			profitCount++
		} else {
			st.FailedTrades++
			if p.Pnl < 0 {
				losses += math.Abs(p.Pnl)
				lossCount++
			}
		}
	}
	st.SuccessfulTrades = winning
	st.WinRate = rate(winning, closed)
	if profitCount > 0 {
		st.AvgProfit = profits / float64(profitCount)
	}
	if lossCount > 0 {
		st.AvgLoss = losses / float64(lossCount)
	}
	if losses > 0 {
		st.ProfitFactor = profits / losses
	}
	return st
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// periodBounds returns the [since, until) window for a named period. A zero
// until means unbounded; only "yesterday" needs an upper bound, every other
// period runs up to now.
func (s *Service) periodBounds(period string) (since, until time.Time) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case "today":
		return midnight, time.Time{}
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight
	case "week":
		return now.AddDate(0, 0, -7), time.Time{}
	case "month":
		return now.AddDate(0, 0, -30), time.Time{}
	case "year":
		return now.AddDate(0, 0, -365), time.Time{}
	default: // all
		return time.Time{}, time.Time{}
	}
}
