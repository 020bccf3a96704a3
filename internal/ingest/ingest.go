// Package ingest runs the periodic log pass: tail each container's log,
// classify the lines, fold status output into the live snapshot and map
// position blocks onto the ledger. One pass runs at a time; the poll
// loop and any forced refresh share the same mutex.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/ledger"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/logparse"
	"trading-dashboard/internal/metrics"
	"trading-dashboard/internal/models"
	"trading-dashboard/internal/status"
	"trading-dashboard/internal/store"
	"trading-dashboard/internal/types"
)

// Service owns the single live status snapshot and drives every
// external effect of a parse pass through injected stores.
type Service struct {
	statusContainer string
	containers      []store.ContainerRef
	tailLines       int

	src      interfaces.LogSource
	provider interfaces.ContainerProvider

	classifier *logparse.Classifier
	acc        *status.Accumulator
	ledger     *ledger.Ledger

	statusStore    interfaces.StatusStore
	containerStore interfaces.ContainerStore

	now func() time.Time

	passMu sync.Mutex

	snapMu sync.RWMutex
	snap   types.Snapshot
}

func New(cfg *store.Config, src interfaces.LogSource, provider interfaces.ContainerProvider,
	ledg *ledger.Ledger, statusStore interfaces.StatusStore, containerStore interfaces.ContainerStore) *Service {
	return &Service{
		statusContainer: cfg.StatusContainer,
		containers:      cfg.Containers,
		tailLines:       cfg.TailLines,
		src:             src,
		provider:        provider,
		classifier:      logparse.NewClassifier(logparse.NewCatalog()),
		acc:             status.NewAccumulator(),
		ledger:          ledg,
		statusStore:     statusStore,
		containerStore:  containerStore,
		now:             time.Now,
	}
}

// WithClock overrides the timestamp source for persisted records.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Snapshot returns a copy of the current status snapshot. The tracking
// slices are copied so callers cannot alias internal state.
func (s *Service) Snapshot() types.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	snap := s.snap
	snap.BuyCoinsTracking = append([]types.CoinEntry(nil), s.snap.BuyCoinsTracking...)
	snap.SellCoinsTracking = append([]types.CoinEntry(nil), s.snap.SellCoinsTracking...)
	return snap
}

// Run executes one full parse pass. Per-container failures are logged
// and collected rather than aborting the pass; the joined error is
// returned so the caller can count the pass as degraded.
func (s *Service) Run(ctx context.Context) error {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	passID := uuid.NewString()[:8]
	timer := logger.StartOperation(ctx, "parse_pass", "pass_id", passID)
	ctx = timer.GetContext()
	start := s.now()

	var errs []error
	totalLines, totalEvents := 0, 0

	lines, events, err := s.ingestStatus(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	totalLines += lines
	totalEvents += events

	for _, ref := range s.containers {
		lines, events, err := s.ingestContainer(ctx, ref)
		if err != nil {
			logger.ErrorWithErr(ctx, "Container ingest failed", err, "container", ref.Name)
			errs = append(errs, err)
		}
		totalLines += lines
		totalEvents += events
	}

	if err := s.refreshContainers(ctx); err != nil {
		errs = append(errs, err)
	}

	if open, err := s.ledger.OpenPositions(ctx); err == nil {
		metrics.SetOpenPositions(len(open))
	}

	elapsed := s.now().Sub(start)
	metrics.ObserveParsePass(elapsed.Seconds())
	result := "ok"
	if len(errs) > 0 {
		result = "error"
	}
	metrics.IncParsePass(result)
	logger.ParsePass(ctx, passID, "all", totalLines, totalEvents, "result", result)

	if len(errs) > 0 {
		timer.EndWithError(errors.Join(errs...))
		return errors.Join(errs...)
	}
	timer.End("lines", totalLines, "events", totalEvents)
	return nil
}

// ingestStatus tails the status container, folds the events into the
// snapshot and persists a status record stamped with the pass time.
func (s *Service) ingestStatus(ctx context.Context) (int, int, error) {
	if s.statusContainer == "" {
		return 0, 0, nil
	}

	lines, err := s.src.Tail(ctx, s.statusContainer, s.tailLines)
	if err != nil {
		return 0, 0, err
	}
	metrics.AddLogLines(s.statusContainer, len(lines))

	events := s.classifier.Classify(lines)
	countEvents(events)

	s.snapMu.Lock()
	s.snap = s.acc.Apply(s.snap, events)
	snap := s.snap
	s.snapMu.Unlock()

	metrics.SetAPICallsEnabled(snap.APICallsEnabled)
	metrics.SetCoinsTracking("BUY", snap.BuyCoinsCount)
	metrics.SetCoinsTracking("SELL", snap.SellCoinsCount)

	if len(events) > 0 {
		rec := snapshotRecord(snap, s.now().UTC())
		if err := s.statusStore.InsertStatus(ctx, rec); err != nil {
			return len(lines), len(events), err
		}
	}
	return len(lines), len(events), nil
}

// ingestContainer tails one trading container and applies every
// completed position block to the ledger under the container's user.
func (s *Service) ingestContainer(ctx context.Context, ref store.ContainerRef) (int, int, error) {
	lines, err := s.src.Tail(ctx, ref.Name, s.tailLines)
	if err != nil {
		return 0, 0, err
	}
	metrics.AddLogLines(ref.Name, len(lines))

	events := s.classifier.Classify(lines)
	countEvents(events)

	var errs []error
	for _, ev := range events {
		if ev.Kind != types.KindPosition || ev.Position == nil {
			continue
		}
		if _, err := s.ledger.ApplyRecord(ctx, ref.User, ev.Position); err != nil {
			errs = append(errs, err)
			continue
		}
		action := "update"
		if ev.Position.IsNew {
			action = "open"
		}
		metrics.IncPositionOp(string(ev.Position.Side), action)
	}
	return len(lines), len(events), errors.Join(errs...)
}

func (s *Service) refreshContainers(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	states, err := s.provider.Containers(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for i := range states {
		if err := s.containerStore.UpsertContainer(ctx, &states[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func countEvents(events []types.LogEvent) {
	for _, ev := range events {
		metrics.IncLogEvent(string(ev.Kind))
	}
}

func snapshotRecord(snap types.Snapshot, ts time.Time) *models.StatusRecord {
	return &models.StatusRecord{
		Timestamp:             ts,
		BuySuccessCount:       snap.BuySuccessCount,
		BuyStopLossCount:      snap.BuyStopLossCount,
		SellSuccessCount:      snap.SellSuccessCount,
		SellStopLossCount:     snap.SellStopLossCount,
		LiveTradeSuccessCount: snap.LiveTradeSuccessCount,
		LiveTradeFailureCount: snap.LiveTradeFailureCount,
		BuyCoinsTracking:      snap.BuyCoinsCount,
		SellCoinsTracking:     snap.SellCoinsCount,
		BuyContainerRunning:   snap.BuyContainerRunning,
		SellContainerRunning:  snap.SellContainerRunning,
		APICallsEnabled:       snap.APICallsEnabled,
	}
}
