package models

import "time"

// Position is one trading position row. At most one OPEN row exists per
// (user, symbol); closing is terminal and a re-open creates a new row.
type Position struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	User          string     `gorm:"size:50;not null;index:idx_positions_user_symbol" json:"user"`
	Symbol        string     `gorm:"size:20;not null;index:idx_positions_user_symbol" json:"symbol"`
	Side          string     `gorm:"size:10;not null" json:"side"`
	EntryPrice    float64    `gorm:"not null" json:"entry_price"`
	ExitPrice     *float64   `json:"exit_price,omitempty"`
	Size          float64    `gorm:"not null" json:"position_size"`
	Status        string     `gorm:"size:20;default:OPEN;index" json:"status"`
	RealizedPnl   float64    `json:"realized_pnl"`
	UnrealizedPnl float64    `json:"unrealized_pnl"`
	Pnl           float64    `json:"pnl"`
	Strategy      string     `gorm:"size:100" json:"strategy,omitempty"`
	Notes         string     `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// StatusRecord is a persisted point-in-time snapshot of the parsed bot
// status, written once per ingest pass and consumed by the daily rollup.
type StatusRecord struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Timestamp             time.Time `gorm:"index;not null" json:"timestamp"`
	BuySuccessCount       int       `json:"buy_success_count"`
	BuyStopLossCount      int       `json:"buy_stop_loss_count"`
	SellSuccessCount      int       `json:"sell_success_count"`
	SellStopLossCount     int       `json:"sell_stop_loss_count"`
	LiveTradeSuccessCount int       `json:"live_trade_success_count"`
	LiveTradeFailureCount int       `json:"live_trade_failure_count"`
	BuyCoinsTracking      int       `json:"buy_coins_tracking"`
	SellCoinsTracking     int       `json:"sell_coins_tracking"`
	BuyContainerRunning   bool      `json:"buy_container_running"`
	SellContainerRunning  bool      `json:"sell_container_running"`
	APICallsEnabled       bool      `json:"api_calls_enabled"`
}

// DailySummary aggregates one day's status records. Counters are maxima
// (they only ever increase within a bot's lifetime), gauges are means and
// uptimes are approximations assuming uniform sampling.
type DailySummary struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Date                   time.Time `gorm:"uniqueIndex;not null" json:"date"`
	TotalBuySuccess        int       `json:"total_buy_success"`
	TotalBuyFailures       int       `json:"total_buy_failures"`
	TotalSellSuccess       int       `json:"total_sell_success"`
	TotalSellFailures      int       `json:"total_sell_failures"`
	TotalLiveTradesSuccess int       `json:"total_live_trades_success"`
	TotalLiveTradesFailure int       `json:"total_live_trades_failure"`
	AvgBuyCoinsTracking    float64   `json:"avg_buy_coins_tracking"`
	AvgSellCoinsTracking   float64   `json:"avg_sell_coins_tracking"`
	BuyContainerUptime     float64   `json:"buy_container_uptime"`
	SellContainerUptime    float64   `json:"sell_container_uptime"`
	APIEnabledDuration     float64   `json:"api_enabled_duration"`
}

// WeeklySummary sums the week's daily summaries.
type WeeklySummary struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	WeekStart              time.Time `gorm:"uniqueIndex;not null" json:"week_start"`
	WeekEnd                time.Time `gorm:"not null" json:"week_end"`
	TotalBuySuccess        int       `json:"total_buy_success"`
	TotalBuyFailures       int       `json:"total_buy_failures"`
	TotalSellSuccess       int       `json:"total_sell_success"`
	TotalSellFailures      int       `json:"total_sell_failures"`
	TotalLiveTradesSuccess int       `json:"total_live_trades_success"`
	TotalLiveTradesFailure int       `json:"total_live_trades_failure"`
	AvgDailyBuyCoins       float64   `json:"avg_daily_buy_coins"`
	AvgDailySellCoins      float64   `json:"avg_daily_sell_coins"`
	SuccessRate            float64   `json:"success_rate"`
}

// MonthlySummary sums the weekly summaries whose week start falls inside
// the month.
type MonthlySummary struct {
	ID                     uint    `gorm:"primaryKey" json:"id"`
	Year                   int     `gorm:"uniqueIndex:idx_monthly_period;not null" json:"year"`
	Month                  int     `gorm:"uniqueIndex:idx_monthly_period;not null" json:"month"`
	TotalBuySuccess        int     `json:"total_buy_success"`
	TotalBuyFailures       int     `json:"total_buy_failures"`
	TotalSellSuccess       int     `json:"total_sell_success"`
	TotalSellFailures      int     `json:"total_sell_failures"`
	TotalLiveTradesSuccess int     `json:"total_live_trades_success"`
	TotalLiveTradesFailure int     `json:"total_live_trades_failure"`
	AvgDailyVolume         float64 `json:"avg_daily_volume"`
	SuccessRate            float64 `json:"success_rate"`
}

// ContainerStatus mirrors the last observed state of a monitored container.
type ContainerStatus struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ContainerName string    `gorm:"size:100;uniqueIndex;not null" json:"container_name"`
	User          string    `gorm:"size:50;index" json:"user"`
	Status        string    `gorm:"size:20;not null" json:"status"`
	Uptime        string    `gorm:"size:50" json:"uptime"`
	LastUpdated   time.Time `json:"last_updated"`
}

// TradingStats is the periodically refreshed per-user statistics row.
type TradingStats struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	User             string    `gorm:"size:50;uniqueIndex;not null" json:"user"`
	TotalTrades      int       `json:"total_trades"`
	SuccessfulTrades int       `json:"successful_trades"`
	FailedTrades     int       `json:"failed_trades"`
	LongTrades       int       `json:"long_trades"`
	ShortTrades      int       `json:"short_trades"`
	TotalPnl         float64   `json:"total_pnl"`
	WinRate          float64   `json:"win_rate"`
	LastUpdated      time.Time `json:"last_updated"`
}
