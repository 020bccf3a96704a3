package source

import (
	"context"

	"trading-dashboard/internal/interfaces"
)

// SampleSource serves fixed log output so the dashboard runs end to end
// without docker or live bot containers.
type SampleSource struct {
	byContainer map[string][]string
}

var _ interfaces.LogSource = (*SampleSource)(nil)

// NewSampleSource returns a source preloaded with representative bot
// output for the given containers. The status container gets a full
// status block, trading containers get position management output.
func NewSampleSource(statusContainer string, tradingContainers []string) *SampleSource {
	s := &SampleSource{byContainer: make(map[string][]string)}
	s.byContainer[statusContainer] = sampleStatusLines()
	for i, c := range tradingContainers {
		if i%2 == 0 {
			s.byContainer[c] = sampleShortPositionLines()
		} else {
			s.byContainer[c] = sampleLongPositionLines()
		}
	}
	return s
}

// Set replaces the canned lines for one container.
func (s *SampleSource) Set(container string, lines []string) {
	s.byContainer[container] = lines
}

func (s *SampleSource) Tail(ctx context.Context, container string, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines := s.byContainer[container]
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

func sampleStatusLines() []string {
	return []string{
		"Starting Trading Strategy Manager (login-based)...",
		"🚀 Live trading detected - API calls and balance checks enabled",
		"=== Current Status ===",
		"Current IST Time        : 2025-09-27 21:28:32 IST",
		"BUY Container Running   : True",
		"SELL Container Running  : True",
		"API Calls Enabled       : True",
		"Weekly Reset In Progress: False",
		"Next Weekly Reset       : 2025-09-29 00:00:00 IST",
		"BUY Coins Tracking      : 2",
		"- ALPINE: Entry 1.2605 (Added: 2025-09-26 10:12:01)",
		"- ARPA: Entry 0.02101 (Added: 2025-09-27 08:44:19)",
		"SELL Coins Tracking     : 1",
		"- CHR: Entry 0.0901 (Added: 2025-09-27 11:02:55)",
		"BUY Success Count       : 4",
		"BUY Stop Loss Count     : 1",
		"SELL Success Count      : 3",
		"SELL Stop Loss Count    : 2",
		"Live Trade Success Count: 6",
		"Live Trade Failure Count: 1",
	}
}

func sampleShortPositionLines() []string {
	return []string{
		"🔄 LIVE TRADING DETECTED - Switching to live balance mode",
		"📈 Managing SHORT position for CHRUSDT:",
		"   Position Size: 1755.0",
		"   Entry Price: 0.0901",
		"   Current Price: 0.0890",
		"   Price Movement: -1.22%",
	}
}

func sampleLongPositionLines() []string {
	return []string{
		"📈 Managing LONG position for ALPINEUSDT:",
		"   Position Size: 120.0",
		"   Entry Price: 1.2605",
		"   Current Price: 1.2719",
		"   Price Movement: 0.90%",
	}
}
