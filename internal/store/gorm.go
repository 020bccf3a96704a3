package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/models"
)

// Gorm implements every persistence interface over one gorm connection.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

var (
	_ interfaces.PositionStore  = (*Gorm)(nil)
	_ interfaces.StatusStore    = (*Gorm)(nil)
	_ interfaces.SummaryStore   = (*Gorm)(nil)
	_ interfaces.ContainerStore = (*Gorm)(nil)
	_ interfaces.StatsStore     = (*Gorm)(nil)
)

// --- positions --------------------------------------------------------------

func (g *Gorm) Create(ctx context.Context, p *models.Position) error {
	return g.db.WithContext(ctx).Create(p).Error
}

func (g *Gorm) Update(ctx context.Context, p *models.Position) error {
	return g.db.WithContext(ctx).Save(p).Error
}

func (g *Gorm) FindOpen(ctx context.Context, user, symbol string) (*models.Position, error) {
	var p models.Position
	err := g.db.WithContext(ctx).
		Where("\"user\" = ? AND symbol = ? AND status = ?", user, symbol, "OPEN").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *Gorm) ListPositions(ctx context.Context, f interfaces.PositionFilter) ([]models.Position, error) {
	q := g.db.WithContext(ctx).Model(&models.Position{})
	if f.User != "" {
		q = q.Where("\"user\" = ?", f.User)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.CreatedSince.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedSince)
	}
	if !f.CreatedUntil.IsZero() {
		q = q.Where("created_at < ?", f.CreatedUntil)
	}
	if !f.ClosedSince.IsZero() {
		q = q.Where("closed_at >= ?", f.ClosedSince)
	}
	if !f.ClosedUntil.IsZero() {
		q = q.Where("closed_at <= ?", f.ClosedUntil)
	}
	var rows []models.Position
	if err := q.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- status records ---------------------------------------------------------

func (g *Gorm) InsertStatus(ctx context.Context, r *models.StatusRecord) error {
	return g.db.WithContext(ctx).Create(r).Error
}

func (g *Gorm) ListStatusBetween(ctx context.Context, from, to time.Time) ([]models.StatusRecord, error) {
	var rows []models.StatusRecord
	err := g.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// --- summaries --------------------------------------------------------------

// Summary upserts run inside a transaction per period key so concurrent
// aggregation passes cannot interleave a read-modify-write.
func (g *Gorm) UpsertDaily(ctx context.Context, s *models.DailySummary) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).Create(s).Error
	})
}

func (g *Gorm) UpsertWeekly(ctx context.Context, s *models.WeeklySummary) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "week_start"}},
			UpdateAll: true,
		}).Create(s).Error
	})
}

func (g *Gorm) UpsertMonthly(ctx context.Context, s *models.MonthlySummary) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
			UpdateAll: true,
		}).Create(s).Error
	})
}

func (g *Gorm) ListDailyBetween(ctx context.Context, from, to time.Time) ([]models.DailySummary, error) {
	var rows []models.DailySummary
	err := g.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Gorm) ListWeeklyBetween(ctx context.Context, from, to time.Time) ([]models.WeeklySummary, error) {
	var rows []models.WeeklySummary
	err := g.db.WithContext(ctx).
		Where("week_start >= ? AND week_start < ?", from, to).
		Order("week_start asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Gorm) ListDailyRecent(ctx context.Context, limit int) ([]models.DailySummary, error) {
	var rows []models.DailySummary
	if err := g.db.WithContext(ctx).Order("date desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Gorm) ListWeeklyRecent(ctx context.Context, limit int) ([]models.WeeklySummary, error) {
	var rows []models.WeeklySummary
	if err := g.db.WithContext(ctx).Order("week_start desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Gorm) ListMonthlyRecent(ctx context.Context, limit int) ([]models.MonthlySummary, error) {
	var rows []models.MonthlySummary
	if err := g.db.WithContext(ctx).Order("year desc, month desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- containers -------------------------------------------------------------

func (g *Gorm) UpsertContainer(ctx context.Context, c *models.ContainerStatus) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "container_name"}},
		UpdateAll: true,
	}).Create(c).Error
}

func (g *Gorm) ListContainers(ctx context.Context) ([]models.ContainerStatus, error) {
	var rows []models.ContainerStatus
	if err := g.db.WithContext(ctx).Order("container_name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- stats ------------------------------------------------------------------

func (g *Gorm) UpsertStats(ctx context.Context, s *models.TradingStats) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user"}},
		UpdateAll: true,
	}).Create(s).Error
}

func (g *Gorm) GetStats(ctx context.Context, user string) (*models.TradingStats, error) {
	var s models.TradingStats
	err := g.db.WithContext(ctx).Where("\"user\" = ?", user).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
