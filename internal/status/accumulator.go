// Package status folds classified log events into the current trading
// status snapshot. The fold is pure: callers pass a snapshot value in and
// get the updated value back, and the process boundary owns the single
// live instance.
package status

import (
	"strconv"
	"strings"

	"trading-dashboard/internal/logparse"
	"trading-dashboard/internal/types"
)

// section tracks which coin-tracking list a coin-detail line belongs to.
// The last seen tracking header decides, never a count heuristic.
type section int

const (
	sectionNone section = iota
	sectionBuy
	sectionSell
)

// Accumulator applies events to snapshots with last-write-wins semantics
// per field. It carries no state between Apply calls.
type Accumulator struct{}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply folds events, in arrival order, onto snap and returns the result.
// Unrecognized events are ignored and the empty event sequence is a fixed
// point. The tracking lists are reset when their section header arrives
// and appended to by subsequent coin-detail events inside that section.
func (a *Accumulator) Apply(snap types.Snapshot, events []types.LogEvent) types.Snapshot {
	sec := sectionNone

	for _, ev := range events {
		switch ev.Kind {
		case types.KindStatusField:
			sec = applyStatusField(&snap, ev, sec)
		case types.KindCoinDetail:
			applyCoinDetail(&snap, ev, sec)
		case types.KindSystemAlert:
			snap.APICallsEnabled = false
		default:
			// System markers and position events do not touch the snapshot.
		}
		if !ev.Timestamp.IsZero() && ev.Timestamp.After(snap.UpdatedAt) {
			snap.UpdatedAt = ev.Timestamp
		}
	}

	snap.Mode = snap.DeriveMode()
	return snap
}

func applyStatusField(snap *types.Snapshot, ev types.LogEvent, sec section) section {
	key := ev.Fields["key"]
	value := ev.Fields["value"]

	switch key {
	case logparse.KeyBuyCoinsTracking:
		if n, ok := parseInt(value); ok {
			snap.BuyCoinsCount = n
		}
		snap.BuyCoinsTracking = nil
		return sectionBuy
	case logparse.KeySellCoinsTracking:
		if n, ok := parseInt(value); ok {
			snap.SellCoinsCount = n
		}
		snap.SellCoinsTracking = nil
		return sectionSell
	case logparse.KeyBuySuccessCount:
		setInt(&snap.BuySuccessCount, value)
	case logparse.KeyBuyStopLossCount:
		setInt(&snap.BuyStopLossCount, value)
	case logparse.KeySellSuccessCount:
		setInt(&snap.SellSuccessCount, value)
	case logparse.KeySellStopLossCount:
		setInt(&snap.SellStopLossCount, value)
	case logparse.KeyLiveTradeSuccessCount:
		setInt(&snap.LiveTradeSuccessCount, value)
	case logparse.KeyLiveTradeFailureCount:
		setInt(&snap.LiveTradeFailureCount, value)
	case logparse.KeyBuyContainerRunning:
		setBool(&snap.BuyContainerRunning, value)
	case logparse.KeySellContainerRunning:
		setBool(&snap.SellContainerRunning, value)
	case logparse.KeyWaitingForBuyStart:
		setBool(&snap.WaitingForBuyStart, value)
	case logparse.KeyWaitingForSellStart:
		setBool(&snap.WaitingForSellStart, value)
	case logparse.KeyAPICallsEnabled:
		setBool(&snap.APICallsEnabled, value)
	case logparse.KeyWeeklyResetInProgress:
		setBool(&snap.WeeklyResetInProgress, value)
	case logparse.KeyCurrentISTTime:
		snap.CurrentTime = value
	case logparse.KeyNextWeeklyReset:
		snap.NextWeeklyReset = value
	}
	return sec
}

func applyCoinDetail(snap *types.Snapshot, ev types.LogEvent, sec section) {
	entry, err := strconv.ParseFloat(ev.Fields["entry"], 64)
	if err != nil {
		entry = 0
	}
	coin := types.CoinEntry{
		Symbol: ev.Fields["symbol"],
		Entry:  entry,
		Added:  ev.Fields["added"],
	}
	switch sec {
	case sectionBuy:
		snap.BuyCoinsTracking = append(snap.BuyCoinsTracking, coin)
	case sectionSell:
		snap.SellCoinsTracking = append(snap.SellCoinsTracking, coin)
	default:
		// Detail line with no preceding tracking header: dropped rather
		// than guessed into a list.
	}
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func setInt(dst *int, s string) {
	if n, ok := parseInt(s); ok {
		*dst = n
	}
}

func setBool(dst *bool, s string) {
	switch {
	case strings.EqualFold(s, "True"):
		*dst = true
	case strings.EqualFold(s, "False"):
		*dst = false
	}
}
