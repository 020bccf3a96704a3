package interfaces

import (
	"context"
	"errors"
	"time"

	"trading-dashboard/internal/models"
)

// ErrNotFound signals that a requested row does not exist. Callers are
// expected to treat it as an ordinary absence-of-data condition.
var ErrNotFound = errors.New("not found")

// PositionFilter narrows ListPositions results. Zero values mean "any".
// CreatedUntil is exclusive, so [CreatedSince, CreatedUntil) windows tile
// without overlap; ClosedUntil is inclusive.
type PositionFilter struct {
	User         string
	Status       string
	CreatedSince time.Time
	CreatedUntil time.Time
	ClosedSince  time.Time
	ClosedUntil  time.Time
}

// PositionStore persists trading positions.
type PositionStore interface {
	Create(ctx context.Context, p *models.Position) error
	Update(ctx context.Context, p *models.Position) error
	// FindOpen returns the single OPEN position for (user, symbol), or
	// ErrNotFound.
	FindOpen(ctx context.Context, user, symbol string) (*models.Position, error)
	ListPositions(ctx context.Context, f PositionFilter) ([]models.Position, error)
}

// StatusStore persists point-in-time status records.
type StatusStore interface {
	InsertStatus(ctx context.Context, r *models.StatusRecord) error
	// ListStatusBetween returns records with from <= Timestamp < to,
	// chronologically ordered.
	ListStatusBetween(ctx context.Context, from, to time.Time) ([]models.StatusRecord, error)
}

// SummaryStore persists period rollups. Upserts are keyed by the period
// identity (date, week start, year+month) and fully overwrite the row.
type SummaryStore interface {
	UpsertDaily(ctx context.Context, s *models.DailySummary) error
	UpsertWeekly(ctx context.Context, s *models.WeeklySummary) error
	UpsertMonthly(ctx context.Context, s *models.MonthlySummary) error
	ListDailyBetween(ctx context.Context, from, to time.Time) ([]models.DailySummary, error)
	ListWeeklyBetween(ctx context.Context, from, to time.Time) ([]models.WeeklySummary, error)
	ListDailyRecent(ctx context.Context, limit int) ([]models.DailySummary, error)
	ListWeeklyRecent(ctx context.Context, limit int) ([]models.WeeklySummary, error)
	ListMonthlyRecent(ctx context.Context, limit int) ([]models.MonthlySummary, error)
}

// ContainerStore persists last-observed container states.
type ContainerStore interface {
	UpsertContainer(ctx context.Context, c *models.ContainerStatus) error
	ListContainers(ctx context.Context) ([]models.ContainerStatus, error)
}

// StatsStore persists refreshed per-user statistics.
type StatsStore interface {
	UpsertStats(ctx context.Context, s *models.TradingStats) error
	GetStats(ctx context.Context, user string) (*models.TradingStats, error)
}
