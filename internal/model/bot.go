package model

import (
	"time"

	"gorm.io/datatypes"
)

// BotStrategy is a reusable template of entry/exit indicator rules and risk
// parameters, not bound to a specific pair.
type BotStrategy struct {
	ID              uint                                  `gorm:"primaryKey" json:"id"`
	UserID          uint                                  `gorm:"not null;index" json:"user_id"`
	Name            string                                `gorm:"not null" json:"name"`
	Description     string                                `gorm:"type:text" json:"description"`
	EntryConditions datatypes.JSONSlice[StrategyCondition] `gorm:"type:jsonb" json:"entry_conditions"`
	ExitConditions  datatypes.JSONSlice[StrategyCondition] `gorm:"type:jsonb" json:"exit_conditions"`
	RiskPerTradePct float64                               `gorm:"not null;default:1" json:"risk_per_trade_pct"`
	StopLossPct     float64                               `gorm:"not null;default:2" json:"stop_loss_pct"`
	TakeProfitPct   float64                               `gorm:"not null;default:4" json:"take_profit_pct"`
	MaxPositions    int                                   `gorm:"not null;default:1" json:"max_positions"`
	CreatedAt       time.Time                             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BotStrategy) TableName() string {
	return "bot_strategies"
}

// StrategyCondition is one indicator rule inside a strategy template.
type StrategyCondition struct {
	Indicator string  `json:"indicator"`
	Operator  string  `json:"operator"`
	Value     float64 `json:"value"`
	Timeframe string  `json:"timeframe,omitempty"`
}

type ExecutionStatus string

const (
	ExecutionActive   ExecutionStatus = "active"
	ExecutionInactive ExecutionStatus = "inactive"
	ExecutionPaused   ExecutionStatus = "paused"
)

// BotExecution is one deployment of a strategy to one trading pair. The
// performance columns are display values refreshed by the performance sync
// job, not the output of a real trading engine.
type BotExecution struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	StrategyID     uint            `gorm:"not null" json:"strategy_id"`
	Strategy       BotStrategy     `gorm:"foreignKey:StrategyID;references:ID" json:"strategy,omitempty"`
	TradingPair    string          `gorm:"not null" json:"trading_pair"`
	Status         ExecutionStatus `gorm:"type:varchar(20);not null;default:inactive" json:"status"`
	Capital        float64         `gorm:"not null" json:"capital"`
	EntryPrice     float64         `json:"entry_price"`
	Profit         float64         `gorm:"default:0" json:"profit"`
	Trades         int             `gorm:"default:0" json:"trades"`
	WinRate        float64         `gorm:"default:0" json:"win_rate"`
	ROI            float64         `gorm:"default:0" json:"roi"`
	RuntimeSeconds int64           `gorm:"default:0" json:"runtime_seconds"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	// RuntimeSyncedAt marks how far the current session has already been
	// folded into RuntimeSeconds. Nil outside an active session.
	RuntimeSyncedAt *time.Time `json:"runtime_synced_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BotExecution) TableName() string {
	return "bot_executions"
}
