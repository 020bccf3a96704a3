package status

import (
	"testing"
	"time"

	"trading-dashboard/internal/logparse"
	"trading-dashboard/internal/types"
)

func fieldEvent(key, value string) types.LogEvent {
	return types.LogEvent{
		Kind:   types.KindStatusField,
		Fields: map[string]string{"key": key, "value": value},
	}
}

func coinEvent(symbol, entry, added string) types.LogEvent {
	return types.LogEvent{
		Kind:   types.KindCoinDetail,
		Fields: map[string]string{"symbol": symbol, "entry": entry, "added": added},
	}
}

func TestApplyLastWriteWins(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		fieldEvent(logparse.KeyBuySuccessCount, "2"),
		fieldEvent(logparse.KeyBuySuccessCount, "5"),
		fieldEvent(logparse.KeyBuySuccessCount, "4"),
	})

	if snap.BuySuccessCount != 4 {
		t.Errorf("Expected last value 4, got %d", snap.BuySuccessCount)
	}
}

func TestApplyEmptyIsFixedPoint(t *testing.T) {
	acc := NewAccumulator()

	initial := types.Snapshot{
		BuySuccessCount: 7,
		APICallsEnabled: true,
		Mode:            types.ModeDemo,
	}
	got := acc.Apply(initial, nil)

	if got.BuySuccessCount != 7 || got.APICallsEnabled != true {
		t.Errorf("Empty fold changed the snapshot: %+v", got)
	}
}

func TestApplySectionContext(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		fieldEvent(logparse.KeyBuyCoinsTracking, "2"),
		coinEvent("ALPINE", "1.2605", "2025-09-26 10:12:01"),
		coinEvent("ARPA", "0.02101", "2025-09-27 08:44:19"),
		fieldEvent(logparse.KeySellCoinsTracking, "1"),
		coinEvent("CHR", "0.0901", "2025-09-27 11:02:55"),
	})

	if len(snap.BuyCoinsTracking) != 2 {
		t.Fatalf("Expected 2 buy coins, got %d", len(snap.BuyCoinsTracking))
	}
	if len(snap.SellCoinsTracking) != 1 {
		t.Fatalf("Expected 1 sell coin, got %d", len(snap.SellCoinsTracking))
	}
	if snap.BuyCoinsTracking[0].Symbol != "ALPINE" || snap.BuyCoinsTracking[0].Entry != 1.2605 {
		t.Errorf("First buy coin wrong: %+v", snap.BuyCoinsTracking[0])
	}
	if snap.SellCoinsTracking[0].Symbol != "CHR" {
		t.Errorf("Sell coin wrong: %+v", snap.SellCoinsTracking[0])
	}
	if snap.BuyCoinsCount != 2 || snap.SellCoinsCount != 1 {
		t.Errorf("Counts wrong: buy=%d sell=%d", snap.BuyCoinsCount, snap.SellCoinsCount)
	}
}

func TestApplySectionHeaderResetsList(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		fieldEvent(logparse.KeyBuyCoinsTracking, "1"),
		coinEvent("ALPINE", "1.2605", "x"),
	})
	snap = acc.Apply(snap, []types.LogEvent{
		fieldEvent(logparse.KeyBuyCoinsTracking, "1"),
		coinEvent("ARPA", "0.02101", "y"),
	})

	if len(snap.BuyCoinsTracking) != 1 || snap.BuyCoinsTracking[0].Symbol != "ARPA" {
		t.Errorf("Expected list reset to [ARPA], got %+v", snap.BuyCoinsTracking)
	}
}

func TestApplyCoinDetailWithoutSectionDropped(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		coinEvent("CHR", "0.0901", "x"),
	})

	if len(snap.BuyCoinsTracking) != 0 || len(snap.SellCoinsTracking) != 0 {
		t.Errorf("Orphan coin detail must be dropped, got %+v / %+v",
			snap.BuyCoinsTracking, snap.SellCoinsTracking)
	}
}

func TestApplyBooleansAndMode(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		fieldEvent(logparse.KeyBuyContainerRunning, "True"),
		fieldEvent(logparse.KeySellContainerRunning, "False"),
		fieldEvent(logparse.KeyAPICallsEnabled, "True"),
	})

	if !snap.BuyContainerRunning || snap.SellContainerRunning {
		t.Errorf("Container flags wrong: buy=%v sell=%v", snap.BuyContainerRunning, snap.SellContainerRunning)
	}
	if snap.Mode != types.ModeLive {
		t.Errorf("Expected Live mode with a container running, got %s", snap.Mode)
	}

	snap = acc.Apply(snap, []types.LogEvent{
		fieldEvent(logparse.KeyBuyContainerRunning, "False"),
	})
	if snap.Mode != types.ModeDemo {
		t.Errorf("Expected Demo mode with no containers running, got %s", snap.Mode)
	}
}

func TestApplySystemAlertDisablesAPI(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{APICallsEnabled: true}, []types.LogEvent{
		{Kind: types.KindSystemAlert},
	})

	if snap.APICallsEnabled {
		t.Error("Expected API calls disabled after system alert")
	}
}

func TestApplyMalformedValueSkipsField(t *testing.T) {
	acc := NewAccumulator()

	snap := acc.Apply(types.Snapshot{BuySuccessCount: 3}, []types.LogEvent{
		fieldEvent(logparse.KeyBuySuccessCount, "not-a-number"),
	})

	if snap.BuySuccessCount != 3 {
		t.Errorf("Malformed value must keep previous field, got %d", snap.BuySuccessCount)
	}
}

func TestApplyUpdatedAtTracksLatestEvent(t *testing.T) {
	acc := NewAccumulator()

	early := time.Date(2025, 9, 27, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 27, 11, 0, 0, 0, time.UTC)

	snap := acc.Apply(types.Snapshot{}, []types.LogEvent{
		{Kind: types.KindStatusField, Timestamp: late, Fields: map[string]string{"key": logparse.KeyBuySuccessCount, "value": "1"}},
		{Kind: types.KindStatusField, Timestamp: early, Fields: map[string]string{"key": logparse.KeySellSuccessCount, "value": "2"}},
	})

	if !snap.UpdatedAt.Equal(late) {
		t.Errorf("Expected UpdatedAt %v, got %v", late, snap.UpdatedAt)
	}
}
