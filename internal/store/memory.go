package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/models"
)

// Memory implements the persistence interfaces without a database. It
// backs DEMO mode and the test suites; semantics mirror the gorm store.
type Memory struct {
	mu         sync.RWMutex
	nextID     uint
	positions  []*models.Position
	status     []models.StatusRecord
	daily      map[string]models.DailySummary
	weekly     map[string]models.WeeklySummary
	monthly    map[string]models.MonthlySummary
	containers map[string]models.ContainerStatus
	stats      map[string]models.TradingStats
}

func NewMemory() *Memory {
	return &Memory{
		nextID:     1,
		daily:      map[string]models.DailySummary{},
		weekly:     map[string]models.WeeklySummary{},
		monthly:    map[string]models.MonthlySummary{},
		containers: map[string]models.ContainerStatus{},
		stats:      map[string]models.TradingStats{},
	}
}

var (
	_ interfaces.PositionStore  = (*Memory)(nil)
	_ interfaces.StatusStore    = (*Memory)(nil)
	_ interfaces.SummaryStore   = (*Memory)(nil)
	_ interfaces.ContainerStore = (*Memory)(nil)
	_ interfaces.StatsStore     = (*Memory)(nil)
)

// --- positions --------------------------------------------------------------

func (m *Memory) Create(_ context.Context, p *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.positions = append(m.positions, &cp)
	return nil
}

func (m *Memory) Update(_ context.Context, p *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.positions {
		if row.ID == p.ID {
			cp := *p
			m.positions[i] = &cp
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (m *Memory) FindOpen(_ context.Context, user, symbol string) (*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.positions {
		if row.User == user && row.Symbol == symbol && row.Status == "OPEN" {
			cp := *row
			return &cp, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *Memory) ListPositions(_ context.Context, f interfaces.PositionFilter) ([]models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []models.Position
	for _, row := range m.positions {
		if f.User != "" && row.User != f.User {
			continue
		}
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		if !f.CreatedSince.IsZero() && row.CreatedAt.Before(f.CreatedSince) {
			continue
		}
		if !f.CreatedUntil.IsZero() && !row.CreatedAt.Before(f.CreatedUntil) {
			continue
		}
		if !f.ClosedSince.IsZero() && (row.ClosedAt == nil || row.ClosedAt.Before(f.ClosedSince)) {
			continue
		}
		if !f.ClosedUntil.IsZero() && (row.ClosedAt == nil || row.ClosedAt.After(f.ClosedUntil)) {
			continue
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

// --- status records ---------------------------------------------------------

func (m *Memory) InsertStatus(_ context.Context, r *models.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID
	m.nextID++
	m.status = append(m.status, *r)
	return nil
}

func (m *Memory) ListStatusBetween(_ context.Context, from, to time.Time) ([]models.StatusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []models.StatusRecord
	for _, r := range m.status {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })
	return rows, nil
}

// --- summaries --------------------------------------------------------------

func (m *Memory) UpsertDaily(_ context.Context, s *models.DailySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daily[s.Date.Format("2006-01-02")] = *s
	return nil
}

func (m *Memory) UpsertWeekly(_ context.Context, s *models.WeeklySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weekly[s.WeekStart.Format("2006-01-02")] = *s
	return nil
}

func (m *Memory) UpsertMonthly(_ context.Context, s *models.MonthlySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monthly[monthKey(s.Year, s.Month)] = *s
	return nil
}

func (m *Memory) ListDailyBetween(_ context.Context, from, to time.Time) ([]models.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []models.DailySummary
	for _, s := range m.daily {
		if !s.Date.Before(from) && s.Date.Before(to) {
			rows = append(rows, s)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

func (m *Memory) ListWeeklyBetween(_ context.Context, from, to time.Time) ([]models.WeeklySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []models.WeeklySummary
	for _, s := range m.weekly {
		if !s.WeekStart.Before(from) && s.WeekStart.Before(to) {
			rows = append(rows, s)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WeekStart.Before(rows[j].WeekStart) })
	return rows, nil
}

func (m *Memory) ListDailyRecent(_ context.Context, limit int) ([]models.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]models.DailySummary, 0, len(m.daily))
	for _, s := range m.daily {
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *Memory) ListWeeklyRecent(_ context.Context, limit int) ([]models.WeeklySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]models.WeeklySummary, 0, len(m.weekly))
	for _, s := range m.weekly {
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WeekStart.After(rows[j].WeekStart) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *Memory) ListMonthlyRecent(_ context.Context, limit int) ([]models.MonthlySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]models.MonthlySummary, 0, len(m.monthly))
	for _, s := range m.monthly {
		rows = append(rows, s)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Month > rows[j].Month
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// --- containers -------------------------------------------------------------

func (m *Memory) UpsertContainer(_ context.Context, c *models.ContainerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[c.ContainerName] = *c
	return nil
}

func (m *Memory) ListContainers(_ context.Context) ([]models.ContainerStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]models.ContainerStatus, 0, len(m.containers))
	for _, c := range m.containers {
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ContainerName < rows[j].ContainerName })
	return rows, nil
}

// --- stats ------------------------------------------------------------------

func (m *Memory) UpsertStats(_ context.Context, s *models.TradingStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[s.User] = *s
	return nil
}

func (m *Memory) GetStats(_ context.Context, user string) (*models.TradingStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[user]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func monthKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
