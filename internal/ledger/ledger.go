// Package ledger maintains open and closed trading positions keyed by
// (user, symbol) and derives realized/unrealized PnL.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/models"
	"trading-dashboard/internal/types"
)

// ErrNotFound is returned by Close when no open position exists for the
// key. It is an expected condition, not a failure.
var ErrNotFound = interfaces.ErrNotFound

const defaultStrategy = "Binance Futures Bot"

// Ledger owns Position rows through an injected store.
type Ledger struct {
	store interfaces.PositionStore
	now   func() time.Time
}

func New(store interfaces.PositionStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// WithClock overrides the timestamp source for createdAt/closedAt stamping.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// PnL computes profit for a position: Long gains when the price rises,
// Short when it falls. Decimal arithmetic keeps products of small prices
// exact before the float64 round-trip into storage.
func PnL(side types.Side, entryPrice, currentPrice, size float64) float64 {
	entry := decimal.NewFromFloat(entryPrice)
	cur := decimal.NewFromFloat(currentPrice)
	qty := decimal.NewFromFloat(size)

	var diff decimal.Decimal
	if side == types.Short {
		diff = entry.Sub(cur)
	} else {
		diff = cur.Sub(entry)
	}
	return diff.Mul(qty).InexactFloat64()
}

// OpenOrUpdate records a position observation. An existing OPEN row for
// (user, symbol) is refreshed in place (unrealized PnL recomputed when a
// current price is supplied); otherwise a new OPEN row is created, so the
// at-most-one-open invariant holds. currentPrice may be nil when the
// observation carried no price.
func (l *Ledger) OpenOrUpdate(ctx context.Context, user, symbol string, side types.Side, entryPrice, size float64, currentPrice *float64) (*models.Position, error) {
	existing, err := l.store.FindOpen(ctx, user, symbol)
	switch {
	case err == nil:
		if currentPrice != nil {
			existing.UnrealizedPnl = PnL(types.Side(existing.Side), existing.EntryPrice, *currentPrice, existing.Size)
			existing.Pnl = existing.UnrealizedPnl
		}
		if err := l.store.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update position %s/%s: %w", user, symbol, err)
		}
		logger.Debug(ctx, "Position updated", "user", user, "symbol", symbol, "pnl", existing.Pnl)
		return existing, nil

	case errors.Is(err, interfaces.ErrNotFound):
		p := &models.Position{
			User:       user,
			Symbol:     symbol,
			Side:       string(side),
			EntryPrice: entryPrice,
			Size:       size,
			Status:     types.StatusOpen,
			Strategy:   defaultStrategy,
			CreatedAt:  l.now().UTC(),
		}
		if currentPrice != nil {
			p.UnrealizedPnl = PnL(side, entryPrice, *currentPrice, size)
			p.Pnl = p.UnrealizedPnl
		}
		if err := l.store.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create position %s/%s: %w", user, symbol, err)
		}
		logger.Info(ctx, "Position opened", "user", user, "symbol", symbol, "side", side, "entry", entryPrice, "size", size)
		return p, nil

	default:
		return nil, fmt.Errorf("find open position %s/%s: %w", user, symbol, err)
	}
}

// ApplyRecord maps a parsed position record onto the ledger. Records with
// no entry price or size fall back to zero, matching the upstream parser's
// field-absent policy. Negative values pass through unvalidated.
func (l *Ledger) ApplyRecord(ctx context.Context, user string, rec *types.PositionRecord) (*models.Position, error) {
	if rec == nil || rec.Symbol == "" {
		return nil, nil
	}
	var current *float64
	if rec.HasCurrent {
		v := rec.CurrentPrice
		current = &v
	}
	p, err := l.OpenOrUpdate(ctx, user, rec.Symbol, rec.Side, rec.EntryPrice, rec.Size, current)
	if err != nil {
		return nil, err
	}
	if rec.HasMovement {
		p.Notes = fmt.Sprintf("Price Movement: %g%%", rec.PriceMovement)
		if err := l.store.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("update position notes %s/%s: %w", user, rec.Symbol, err)
		}
	}
	return p, nil
}

// Close locates the OPEN position for (user, symbol), stamps the exit and
// fixes the realized PnL. Returns ErrNotFound when nothing is open; the
// caller decides whether that is worth more than a log line. A closed row
// is never mutated again.
func (l *Ledger) Close(ctx context.Context, user, symbol string, exitPrice float64) (*models.Position, error) {
	p, err := l.store.FindOpen(ctx, user, symbol)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			logger.Warn(ctx, "Close requested with no open position", "user", user, "symbol", symbol)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find open position %s/%s: %w", user, symbol, err)
	}

	now := l.now().UTC()
	p.ExitPrice = &exitPrice
	p.ClosedAt = &now
	p.Status = types.StatusClosed
	p.RealizedPnl = PnL(types.Side(p.Side), p.EntryPrice, exitPrice, p.Size)
	p.Pnl = p.RealizedPnl
	if err := l.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("close position %s/%s: %w", user, symbol, err)
	}
	logger.Info(ctx, "Position closed", "user", user, "symbol", symbol, "exit", exitPrice, "realized_pnl", p.RealizedPnl)
	return p, nil
}

// OpenPositions lists all OPEN rows across users.
func (l *Ledger) OpenPositions(ctx context.Context) ([]models.Position, error) {
	return l.store.ListPositions(ctx, interfaces.PositionFilter{Status: types.StatusOpen})
}
