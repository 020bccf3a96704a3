package types

import "time"

// EventKind classifies a parsed log line.
type EventKind string

const (
	KindSystemAlert     EventKind = "system_alert"
	KindSystemStart     EventKind = "system_start"
	KindTradingMode     EventKind = "trading_mode"
	KindMonitoringStart EventKind = "monitoring_start"
	KindStatusHeader    EventKind = "status_header"
	KindStatusField     EventKind = "status_update"
	KindCoinDetail      EventKind = "coin_detail"
	KindPosition        EventKind = "position_update"
	KindGeneral         EventKind = "general"
)

// Side of a position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Mode of the trading system, derived from container flags.
type Mode string

const (
	ModeLive Mode = "Live"
	ModeDemo Mode = "Demo"
)

// Position lifecycle states.
const (
	StatusOpen    = "OPEN"
	StatusClosed  = "CLOSED"
	StatusStopped = "STOPPED"
)

// LogEvent is one structured fact extracted from a raw log line.
// Immutable once produced by the classifier.
type LogEvent struct {
	Timestamp time.Time
	Kind      EventKind
	RawText   string
	Fields    map[string]string
	Position  *PositionRecord // set only when Kind == KindPosition
}

// PositionRecord is a completed multi-line position-management block.
// Has* flags distinguish "parsed zero" from "detail line never seen".
type PositionRecord struct {
	Symbol        string
	Side          Side
	Size          float64
	EntryPrice    float64
	CurrentPrice  float64
	PriceMovement float64
	HasSize       bool
	HasEntry      bool
	HasCurrent    bool
	HasMovement   bool
	IsNew         bool
	ObservedAt    time.Time
}

// CoinEntry is one tracked coin from a BUY/SELL tracking section.
type CoinEntry struct {
	Symbol string  `json:"symbol"`
	Entry  float64 `json:"entry"`
	Added  string  `json:"added"`
}

// Snapshot is the current in-memory view of parsed trading-bot status.
// Fields carry last-write-wins semantics; the tracking lists are reset by
// their section header and appended to by coin-detail events.
type Snapshot struct {
	BuyCoinsTracking  []CoinEntry `json:"buy_coins_tracking"`
	SellCoinsTracking []CoinEntry `json:"sell_coins_tracking"`
	BuyCoinsCount     int         `json:"buy_coins_count"`
	SellCoinsCount    int         `json:"sell_coins_count"`

	BuySuccessCount       int `json:"buy_success_count"`
	BuyStopLossCount      int `json:"buy_stop_loss_count"`
	SellSuccessCount      int `json:"sell_success_count"`
	SellStopLossCount     int `json:"sell_stop_loss_count"`
	LiveTradeSuccessCount int `json:"live_trade_success_count"`
	LiveTradeFailureCount int `json:"live_trade_failure_count"`

	BuyContainerRunning   bool `json:"buy_container_running"`
	SellContainerRunning  bool `json:"sell_container_running"`
	WaitingForBuyStart    bool `json:"waiting_for_buy_start"`
	WaitingForSellStart   bool `json:"waiting_for_sell_start"`
	APICallsEnabled       bool `json:"api_calls_enabled"`
	WeeklyResetInProgress bool `json:"weekly_reset_in_progress"`

	CurrentTime     string    `json:"current_time"`
	NextWeeklyReset string    `json:"next_weekly_reset"`
	Mode            Mode      `json:"mode"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DeriveMode returns Live iff either container flag is set.
func (s Snapshot) DeriveMode() Mode {
	if s.BuyContainerRunning || s.SellContainerRunning {
		return ModeLive
	}
	return ModeDemo
}
