package logparse

import (
	"regexp"
	"strings"

	"trading-dashboard/internal/types"
)

// Rule names, used by the classifier to drive record folding.
const (
	RuleSystemAlert     = "system_alert"
	RuleSystemStart     = "system_start"
	RuleTradingMode     = "trading_mode"
	RuleMonitoringStart = "monitoring_start"
	RuleStatusHeader    = "status_header"
	RulePositionHeader  = "position_header"
	RuleNewPosition     = "new_position"
	RulePositionSize    = "position_size"
	RuleEntryPrice      = "entry_price"
	RuleCurrentPrice    = "current_price"
	RulePriceMovement   = "price_movement"
	RuleCoinDetail      = "coin_detail"
	RuleStatusField     = "status_field"
)

// Status keys recognized on "Key Name: value" lines.
const (
	KeyBuyCoinsTracking      = "BUY Coins Tracking"
	KeySellCoinsTracking     = "SELL Coins Tracking"
	KeyBuySuccessCount       = "BUY Success Count"
	KeyBuyStopLossCount      = "BUY Stop Loss Count"
	KeySellSuccessCount      = "SELL Success Count"
	KeySellStopLossCount     = "SELL Stop Loss Count"
	KeyLiveTradeSuccessCount = "Live Trade Success Count"
	KeyLiveTradeFailureCount = "Live Trade Failure Count"
	KeyBuyContainerRunning   = "BUY Container Running"
	KeySellContainerRunning  = "SELL Container Running"
	KeyWaitingForBuyStart    = "Waiting for BUY start"
	KeyWaitingForSellStart   = "Waiting for SELL start"
	KeyAPICallsEnabled       = "API Calls Enabled"
	KeyWeeklyResetInProgress = "Weekly Reset In Progress"
	KeyCurrentISTTime        = "Current IST Time"
	KeyNextWeeklyReset       = "Next Weekly Reset"
)

var statusKeys = []string{
	KeyBuyCoinsTracking,
	KeySellCoinsTracking,
	KeyBuySuccessCount,
	KeyBuyStopLossCount,
	KeySellSuccessCount,
	KeySellStopLossCount,
	KeyLiveTradeSuccessCount,
	KeyLiveTradeFailureCount,
	KeyBuyContainerRunning,
	KeySellContainerRunning,
	KeyWaitingForBuyStart,
	KeyWaitingForSellStart,
	KeyAPICallsEnabled,
	KeyWeeklyResetInProgress,
	KeyCurrentISTTime,
	KeyNextWeeklyReset,
}

// Rule pairs a named matcher with the event kind it produces and the names
// of its capture groups.
type Rule struct {
	Name   string
	Kind   types.EventKind
	re     *regexp.Regexp
	groups []string
}

// Catalog is an ordered set of rules. Order is a correctness requirement:
// a line matching both a specific and a generic rule must resolve to the
// specific one, so rules are always tried first to last.
type Catalog struct {
	rules []Rule
}

// Match returns the first rule matching the line along with the extracted
// capture-group fields. ok is false when no rule matches.
func (c *Catalog) Match(line string) (rule Rule, fields map[string]string, ok bool) {
	for _, r := range c.rules {
		m := r.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fields = make(map[string]string, len(r.groups))
		for i, name := range r.groups {
			if i+1 < len(m) {
				fields[name] = strings.TrimSpace(m[i+1])
			}
		}
		return r, fields, true
	}
	return Rule{}, nil, false
}

func statusFieldPattern() *regexp.Regexp {
	quoted := make([]string, len(statusKeys))
	for i, k := range statusKeys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`^(` + strings.Join(quoted, "|") + `)\s*:\s*(.*)$`)
}

// NewCatalog builds the default rule set. System markers and mode changes
// come first, then position-record lines, then keyed status lines, then
// coin-detail lines. Anything unmatched is classified General by the
// classifier.
func NewCatalog() *Catalog {
	return &Catalog{rules: []Rule{
		{
			Name: RuleSystemAlert,
			Kind: types.KindSystemAlert,
			re:   regexp.MustCompile(`Containers detected running - DISABLING API calls`),
		},
		{
			Name: RuleSystemStart,
			Kind: types.KindSystemStart,
			re:   regexp.MustCompile(`Starting Trading Strategy Manager`),
		},
		{
			Name: RuleTradingMode,
			Kind: types.KindTradingMode,
			re:   regexp.MustCompile(`LIVE TRADING DETECTED`),
		},
		{
			Name: RuleMonitoringStart,
			Kind: types.KindMonitoringStart,
			re:   regexp.MustCompile(`🚀 Live trading detected`),
		},
		{
			Name: RuleStatusHeader,
			Kind: types.KindStatusHeader,
			re:   regexp.MustCompile(`=== Current Status ===`),
		},
		{
			Name:   RulePositionHeader,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`Managing (LONG|SHORT) position for ([A-Z0-9]+USDT):`),
			groups: []string{"side", "symbol"},
		},
		{
			Name:   RuleNewPosition,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`New position detected - Original size: (\S+)`),
			groups: []string{"size"},
		},
		{
			Name:   RulePositionSize,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`Position Size:\s*(\S+)`),
			groups: []string{"size"},
		},
		{
			Name:   RuleEntryPrice,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`Entry Price:\s*(\S+)`),
			groups: []string{"price"},
		},
		{
			Name:   RuleCurrentPrice,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`Current Price:\s*(\S+)`),
			groups: []string{"price"},
		},
		{
			Name:   RulePriceMovement,
			Kind:   types.KindPosition,
			re:     regexp.MustCompile(`Price Movement:\s*(\S+)`),
			groups: []string{"movement"},
		},
		{
			Name:   RuleStatusField,
			Kind:   types.KindStatusField,
			re:     statusFieldPattern(),
			groups: []string{"key", "value"},
		},
		{
			Name:   RuleCoinDetail,
			Kind:   types.KindCoinDetail,
			re:     regexp.MustCompile(`^-\s*([A-Z0-9]+)\s*:\s*Entry\s+([\d.]+)\s*\(Added:\s*(.+?)\s*\)`),
			groups: []string{"symbol", "entry", "added"},
		},
	}}
}
