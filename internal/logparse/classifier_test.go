package logparse

import (
	"testing"
	"time"

	"trading-dashboard/internal/types"
)

func testClassifier() *Classifier {
	fixed := time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC)
	return NewClassifier(NewCatalog()).WithClock(func() time.Time { return fixed })
}

func TestClassifyPositionBlock(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{
		"📈 Managing LONG position for CHRUSDT:",
		"   Position Size: 1755",
		"   Entry Price: 0.0901",
		"   Current Price: 0.0890",
		"   Price Movement: -1.22%",
	})

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Kind != types.KindPosition {
		t.Fatalf("Expected position event, got %s", ev.Kind)
	}
	rec := ev.Position
	if rec == nil {
		t.Fatal("Expected position record to be set")
	}
	if rec.Symbol != "CHRUSDT" {
		t.Errorf("Expected symbol CHRUSDT, got %s", rec.Symbol)
	}
	if rec.Side != types.Long {
		t.Errorf("Expected side LONG, got %s", rec.Side)
	}
	if !rec.HasSize || rec.Size != 1755 {
		t.Errorf("Expected size 1755, got %f (has=%v)", rec.Size, rec.HasSize)
	}
	if !rec.HasEntry || rec.EntryPrice != 0.0901 {
		t.Errorf("Expected entry 0.0901, got %f", rec.EntryPrice)
	}
	if !rec.HasCurrent || rec.CurrentPrice != 0.0890 {
		t.Errorf("Expected current 0.0890, got %f", rec.CurrentPrice)
	}
	if !rec.HasMovement || rec.PriceMovement != -1.22 {
		t.Errorf("Expected movement -1.22, got %f", rec.PriceMovement)
	}
}

func TestClassifyTwoPositionBlocks(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{
		"📈 Managing SHORT position for CHRUSDT:",
		"   Entry Price: 0.0901",
		"📈 Managing LONG position for ALPINEUSDT:",
		"   Entry Price: 1.2605",
	})

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Position.Symbol != "CHRUSDT" || events[0].Position.Side != types.Short {
		t.Errorf("First record wrong: %+v", events[0].Position)
	}
	if events[1].Position.Symbol != "ALPINEUSDT" || events[1].Position.Side != types.Long {
		t.Errorf("Second record wrong: %+v", events[1].Position)
	}
}

func TestClassifyDetailWithoutHeader(t *testing.T) {
	c := testClassifier()

	// A detail line with no open record must not fabricate a position.
	events := c.Classify([]string{"   Entry Price: 0.0901"})

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Kind != types.KindGeneral {
		t.Errorf("Expected general event, got %s", events[0].Kind)
	}
}

func TestClassifyUnparseableDetailLeavesFieldAbsent(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{
		"📈 Managing LONG position for CHRUSDT:",
		"   Position Size: abc",
		"   Entry Price: n/a",
		"   Current Price: 0.0890",
	})

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	rec := events[0].Position
	if rec.HasSize {
		t.Error("Expected size to be absent after parse failure")
	}
	if rec.HasEntry {
		t.Error("Expected entry to be absent after parse failure")
	}
	if !rec.HasCurrent || rec.CurrentPrice != 0.0890 {
		t.Errorf("Expected current 0.0890, got %f (has=%v)", rec.CurrentPrice, rec.HasCurrent)
	}
}

func TestClassifyStatusFields(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{
		"=== Current Status ===",
		"BUY Success Count       : 4",
		"API Calls Enabled       : True",
		"- CHR: Entry 0.0901 (Added: 2025-09-27 11:02:55)",
	})

	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[0].Kind != types.KindStatusHeader {
		t.Errorf("Expected status header, got %s", events[0].Kind)
	}
	if events[1].Kind != types.KindStatusField || events[1].Fields["key"] != KeyBuySuccessCount || events[1].Fields["value"] != "4" {
		t.Errorf("Status field event wrong: %+v", events[1])
	}
	if events[2].Fields["value"] != "True" {
		t.Errorf("Expected True, got %s", events[2].Fields["value"])
	}
	if events[3].Kind != types.KindCoinDetail {
		t.Fatalf("Expected coin detail, got %s", events[3].Kind)
	}
	if events[3].Fields["symbol"] != "CHR" || events[3].Fields["entry"] != "0.0901" || events[3].Fields["added"] != "2025-09-27 11:02:55" {
		t.Errorf("Coin detail fields wrong: %+v", events[3].Fields)
	}
}

func TestClassifySystemMarkers(t *testing.T) {
	c := testClassifier()

	cases := []struct {
		line string
		kind types.EventKind
	}{
		{"🔴 Containers detected running - DISABLING API calls", types.KindSystemAlert},
		{"Starting Trading Strategy Manager (login-based)...", types.KindSystemStart},
		{"🔄 LIVE TRADING DETECTED - Switching to live balance mode", types.KindTradingMode},
		{"🚀 Live trading detected - API calls and balance checks enabled", types.KindMonitoringStart},
		{"=== Current Status ===", types.KindStatusHeader},
		{"something entirely unrelated", types.KindGeneral},
	}

	for _, tc := range cases {
		events := c.Classify([]string{tc.line})
		if len(events) != 1 {
			t.Fatalf("Expected 1 event for %q, got %d", tc.line, len(events))
		}
		if events[0].Kind != tc.kind {
			t.Errorf("Line %q: expected kind %s, got %s", tc.line, tc.kind, events[0].Kind)
		}
	}
}

func TestClassifyDockerTimestampPrefix(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{
		"2025-09-27T21:28:32.123456789Z === Current Status ===",
	})

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	want := time.Date(2025, 9, 27, 21, 28, 32, 123456789, time.UTC)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, events[0].Timestamp)
	}
	if events[0].Kind != types.KindStatusHeader {
		t.Errorf("Expected status header after prefix strip, got %s", events[0].Kind)
	}
}

func TestClassifyFallbackClock(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{"no timestamp here"})
	want := time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("Expected clock fallback %v, got %v", want, events[0].Timestamp)
	}
}

func TestClassifySkipsBlankLines(t *testing.T) {
	c := testClassifier()

	events := c.Classify([]string{"", "   ", "=== Current Status ==="})
	if len(events) != 1 {
		t.Fatalf("Expected blank lines skipped, got %d events", len(events))
	}
}
