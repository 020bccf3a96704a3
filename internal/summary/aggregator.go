// Package summary rolls persisted status records up into daily, weekly and
// monthly summaries. Each run fully recomputes its period from the next
// finer grain and upserts by period key, so re-running never double-counts.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/models"
)

// ErrNoData distinguishes "period had zero activity" from a failed
// computation.
var ErrNoData = errors.New("no data for period")

// ErrUnknownPeriod is returned by History for a granularity it does not
// recognize.
var ErrUnknownPeriod = errors.New("unknown history period")

type Aggregator struct {
	status    interfaces.StatusStore
	summaries interfaces.SummaryStore
}

func New(status interfaces.StatusStore, summaries interfaces.SummaryStore) *Aggregator {
	return &Aggregator{status: status, summaries: summaries}
}

// SummarizeDaily aggregates the status records of [date 00:00, date+1 00:00).
// Success/failure counters are monotone within a bot's lifetime, so the day
// total is the maximum observed value, not a sum over duplicate snapshots.
// Tracking gauges are averaged, and uptime hours assume uniform sampling.
func (a *Aggregator) SummarizeDaily(ctx context.Context, date time.Time) (*models.DailySummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	records, err := a.status.ListStatusBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list status records for %s: %w", dayStart.Format("2006-01-02"), err)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	s := &models.DailySummary{Date: dayStart}
	var buyCoins, sellCoins float64
	var buyUp, sellUp, apiUp int
	for _, r := range records {
		s.TotalBuySuccess = maxInt(s.TotalBuySuccess, r.BuySuccessCount)
		s.TotalBuyFailures = maxInt(s.TotalBuyFailures, r.BuyStopLossCount)
		s.TotalSellSuccess = maxInt(s.TotalSellSuccess, r.SellSuccessCount)
		s.TotalSellFailures = maxInt(s.TotalSellFailures, r.SellStopLossCount)
		s.TotalLiveTradesSuccess = maxInt(s.TotalLiveTradesSuccess, r.LiveTradeSuccessCount)
		s.TotalLiveTradesFailure = maxInt(s.TotalLiveTradesFailure, r.LiveTradeFailureCount)
		buyCoins += float64(r.BuyCoinsTracking)
		sellCoins += float64(r.SellCoinsTracking)
		if r.BuyContainerRunning {
			buyUp++
		}
		if r.SellContainerRunning {
			sellUp++
		}
		if r.APICallsEnabled {
			apiUp++
		}
	}
	n := float64(len(records))
	s.AvgBuyCoinsTracking = buyCoins / n
	s.AvgSellCoinsTracking = sellCoins / n
	s.BuyContainerUptime = float64(buyUp) / n * 24
	s.SellContainerUptime = float64(sellUp) / n * 24
	s.APIEnabledDuration = float64(apiUp) / n * 24

	if err := a.summaries.UpsertDaily(ctx, s); err != nil {
		return nil, fmt.Errorf("upsert daily summary: %w", err)
	}
	logger.Info(ctx, "Daily summary generated", "date", dayStart.Format("2006-01-02"), "records", len(records))
	return s, nil
}

// SummarizeWeekly sums the daily summaries of [weekStart, weekStart+7d).
// Daily rows already hold per-day maxima, so summing across days is the
// correct rollup.
func (a *Aggregator) SummarizeWeekly(ctx context.Context, weekStart time.Time) (*models.WeeklySummary, error) {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	dailies, err := a.summaries.ListDailyBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries from %s: %w", start.Format("2006-01-02"), err)
	}
	if len(dailies) == 0 {
		return nil, ErrNoData
	}

	s := &models.WeeklySummary{WeekStart: start, WeekEnd: start.AddDate(0, 0, 6)}
	var buyCoins, sellCoins float64
	for _, d := range dailies {
		s.TotalBuySuccess += d.TotalBuySuccess
		s.TotalBuyFailures += d.TotalBuyFailures
		s.TotalSellSuccess += d.TotalSellSuccess
		s.TotalSellFailures += d.TotalSellFailures
		s.TotalLiveTradesSuccess += d.TotalLiveTradesSuccess
		s.TotalLiveTradesFailure += d.TotalLiveTradesFailure
		buyCoins += d.AvgBuyCoinsTracking
		sellCoins += d.AvgSellCoinsTracking
	}
	n := float64(len(dailies))
	s.AvgDailyBuyCoins = buyCoins / n
	s.AvgDailySellCoins = sellCoins / n
	s.SuccessRate = successRate(s.TotalBuySuccess+s.TotalSellSuccess, s.TotalBuyFailures+s.TotalSellFailures)

	if err := a.summaries.UpsertWeekly(ctx, s); err != nil {
		return nil, fmt.Errorf("upsert weekly summary: %w", err)
	}
	logger.Info(ctx, "Weekly summary generated", "week_start", start.Format("2006-01-02"), "days", len(dailies))
	return s, nil
}

// SummarizeMonthly sums the weekly summaries whose week start falls inside
// the month.
func (a *Aggregator) SummarizeMonthly(ctx context.Context, year int, month time.Month) (*models.MonthlySummary, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	weeklies, err := a.summaries.ListWeeklyBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("list weekly summaries for %d-%02d: %w", year, month, err)
	}
	if len(weeklies) == 0 {
		return nil, ErrNoData
	}

	s := &models.MonthlySummary{Year: year, Month: int(month)}
	var volume, rate float64
	for _, w := range weeklies {
		s.TotalBuySuccess += w.TotalBuySuccess
		s.TotalBuyFailures += w.TotalBuyFailures
		s.TotalSellSuccess += w.TotalSellSuccess
		s.TotalSellFailures += w.TotalSellFailures
		s.TotalLiveTradesSuccess += w.TotalLiveTradesSuccess
		s.TotalLiveTradesFailure += w.TotalLiveTradesFailure
		volume += w.AvgDailyBuyCoins + w.AvgDailySellCoins
		rate += w.SuccessRate
	}
	n := float64(len(weeklies))
	s.AvgDailyVolume = volume / n
	s.SuccessRate = rate / n

	if err := a.summaries.UpsertMonthly(ctx, s); err != nil {
		return nil, fmt.Errorf("upsert monthly summary: %w", err)
	}
	logger.Info(ctx, "Monthly summary generated", "year", year, "month", int(month), "weeks", len(weeklies))
	return s, nil
}

// HistoryPoint is one period in the historical-chart series.
type HistoryPoint struct {
	Date         string  `json:"date"`
	BuySuccess   int     `json:"buy_success"`
	BuyFailures  int     `json:"buy_failures"`
	SellSuccess  int     `json:"sell_success"`
	SellFailures int     `json:"sell_failures"`
	LiveSuccess  int     `json:"live_success"`
	LiveFailure  int     `json:"live_failure"`
	SuccessRate  float64 `json:"success_rate"`
}

// History returns up to limit summaries for the given period granularity
// ("daily", "weekly" or "monthly"), oldest first.
func (a *Aggregator) History(ctx context.Context, period string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 30
	}
	switch period {
	case "daily":
		rows, err := a.summaries.ListDailyRecent(ctx, limit)
		if err != nil {
			return nil, err
		}
		points := make([]HistoryPoint, 0, len(rows))
		for i := len(rows) - 1; i >= 0; i-- {
			d := rows[i]
			points = append(points, HistoryPoint{
				Date:         d.Date.Format("2006-01-02"),
				BuySuccess:   d.TotalBuySuccess,
				BuyFailures:  d.TotalBuyFailures,
				SellSuccess:  d.TotalSellSuccess,
				SellFailures: d.TotalSellFailures,
				LiveSuccess:  d.TotalLiveTradesSuccess,
				LiveFailure:  d.TotalLiveTradesFailure,
				SuccessRate:  successRate(d.TotalBuySuccess+d.TotalSellSuccess, d.TotalBuyFailures+d.TotalSellFailures),
			})
		}
		return points, nil
	case "weekly":
		rows, err := a.summaries.ListWeeklyRecent(ctx, limit)
		if err != nil {
			return nil, err
		}
		points := make([]HistoryPoint, 0, len(rows))
		for i := len(rows) - 1; i >= 0; i-- {
			w := rows[i]
			points = append(points, HistoryPoint{
				Date:         w.WeekStart.Format("2006-01-02"),
				BuySuccess:   w.TotalBuySuccess,
				BuyFailures:  w.TotalBuyFailures,
				SellSuccess:  w.TotalSellSuccess,
				SellFailures: w.TotalSellFailures,
				LiveSuccess:  w.TotalLiveTradesSuccess,
				LiveFailure:  w.TotalLiveTradesFailure,
				SuccessRate:  w.SuccessRate,
			})
		}
		return points, nil
	case "monthly":
		rows, err := a.summaries.ListMonthlyRecent(ctx, limit)
		if err != nil {
			return nil, err
		}
		points := make([]HistoryPoint, 0, len(rows))
		for i := len(rows) - 1; i >= 0; i-- {
			m := rows[i]
			points = append(points, HistoryPoint{
				Date:         fmt.Sprintf("%d-%02d", m.Year, m.Month),
				BuySuccess:   m.TotalBuySuccess,
				BuyFailures:  m.TotalBuyFailures,
				SellSuccess:  m.TotalSellSuccess,
				SellFailures: m.TotalSellFailures,
				LiveSuccess:  m.TotalLiveTradesSuccess,
				LiveFailure:  m.TotalLiveTradesFailure,
				SuccessRate:  m.SuccessRate,
			})
		}
		return points, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPeriod, period)
	}
}

// successRate divides successes by total attempts, in percent. The
// denominator is clamped to 1 so an idle period reads as 0, not an error.
func successRate(success, failure int) float64 {
	total := success + failure
	if total == 0 {
		total = 1
	}
	return float64(success) / float64(total) * 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
