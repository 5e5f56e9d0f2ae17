package dto

import "futures-dashboard/internal/model"

type CreateBotStrategyRequest struct {
	UserID          uint                      `json:"user_id" validate:"required"`
	Name            string                    `json:"name" validate:"required,max=100"`
	Description     string                    `json:"description"`
	EntryConditions []model.StrategyCondition `json:"entry_conditions"`
	ExitConditions  []model.StrategyCondition `json:"exit_conditions"`
	RiskPerTradePct float64                   `json:"risk_per_trade_pct" validate:"gte=0,lte=100"`
	StopLossPct     float64                   `json:"stop_loss_pct" validate:"gte=0,lte=100"`
	TakeProfitPct   float64                   `json:"take_profit_pct" validate:"gte=0,lte=100"`
	MaxPositions    int                       `json:"max_positions" validate:"gte=0"`
}

type CreateBotExecutionRequest struct {
	UserID      uint    `json:"user_id" validate:"required"`
	StrategyID  uint    `json:"strategy_id" validate:"required"`
	TradingPair string  `json:"trading_pair" validate:"required"`
	Capital     float64 `json:"capital" validate:"required,gt=0"`
}

type UpdateExecutionStatusRequest struct {
	Status model.ExecutionStatus `json:"status" validate:"required,oneof=active inactive paused"`
}

// DeployStrategyRequest deploys one strategy across every pair of a folder.
type DeployStrategyRequest struct {
	UserID         uint    `json:"user_id" validate:"required"`
	StrategyID     uint    `json:"strategy_id" validate:"required"`
	FolderID       uint    `json:"folder_id" validate:"required"`
	CapitalPerPair float64 `json:"capital_per_pair" validate:"required,gt=0"`
}

// DeployResult reports the outcome per pair. Successes are kept even when
// other pairs fail; there is no rollback.
type DeployResult struct {
	Deployed    []model.BotExecution `json:"deployed"`
	FailedPairs []DeployFailure      `json:"failed_pairs"`
}

type DeployFailure struct {
	TradingPair string `json:"trading_pair"`
	Reason      string `json:"reason"`
}

type GetBotExecutionsParam struct {
	UserID     uint
	StrategyID *uint
	Status     *model.ExecutionStatus
}
