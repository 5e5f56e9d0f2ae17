package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"
)

type BotPerformanceSyncer interface {
	JobExecutionStrategy
}

type BotPerformanceSyncPayload struct {
	MilestoneROIStep       float64 `json:"milestone_roi_step"`
	NotifyCooldownDuration string  `json:"notify_cooldown_duration"`
}

type BotPerformanceSyncResult struct {
	ExecutionID uint    `json:"execution_id"`
	Symbol      string  `json:"symbol"`
	ROI         float64 `json:"roi"`
	Error       string  `json:"error,omitempty"`
}

type BotPerformanceSyncStrategy struct {
	cfg           *config.Config
	log           *logger.Logger
	executionRepo repository.BotExecutionRepository
	strategyRepo  repository.BotStrategyRepository
	futuresRepo   repository.FuturesDataRepository
	inmemoryCache cache.Cache
	alertNotifier AlertNotifier
}

func NewBotPerformanceSyncStrategy(
	cfg *config.Config,
	log *logger.Logger,
	executionRepo repository.BotExecutionRepository,
	strategyRepo repository.BotStrategyRepository,
	futuresRepo repository.FuturesDataRepository,
	inmemoryCache cache.Cache,
	alertNotifier AlertNotifier,
) BotPerformanceSyncer {
	return &BotPerformanceSyncStrategy{
		cfg:           cfg,
		log:           log,
		executionRepo: executionRepo,
		strategyRepo:  strategyRepo,
		futuresRepo:   futuresRepo,
		inmemoryCache: inmemoryCache,
		alertNotifier: alertNotifier,
	}
}

func (s *BotPerformanceSyncStrategy) GetType() JobType {
	return JobTypeBotPerformanceSync
}

// Execute refreshes the display performance of every active execution from
// the latest snapshot. The first sync after activation locks in the entry
// price; after that profit and ROI track the mark-to-market of the position.
func (s *BotPerformanceSyncStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	var payload BotPerformanceSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.MilestoneROIStep <= 0 {
		payload.MilestoneROIStep = 10
	}
	notifyCooldown := time.Hour
	if payload.NotifyCooldownDuration != "" {
		parsed, err := time.ParseDuration(payload.NotifyCooldownDuration)
		if err != nil {
			return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to parse notify cooldown duration: %v", err)}, fmt.Errorf("failed to parse notify cooldown duration: %w", err)
		}
		notifyCooldown = parsed
	}

	executions, err := s.executionRepo.GetActive(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to load active executions: %v", err)}, err
	}
	if len(executions) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no active executions"}, nil
	}

	strategies := map[uint]*model.BotStrategy{}
	results := []BotPerformanceSyncResult{}
	hadError := false

	for i := range executions {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		execution := &executions[i]

		snap, err := s.futuresRepo.GetBySymbol(ctx, execution.TradingPair)
		if err != nil {
			hadError = true
			results = append(results, BotPerformanceSyncResult{ExecutionID: execution.ID, Symbol: execution.TradingPair, Error: err.Error()})
			continue
		}
		if snap == nil {
			results = append(results, BotPerformanceSyncResult{ExecutionID: execution.ID, Symbol: execution.TradingPair, Error: "no snapshot for pair"})
			continue
		}

		strategy, ok := strategies[execution.StrategyID]
		if !ok {
			strategy, err = s.strategyRepo.GetByID(ctx, execution.StrategyID)
			if err != nil {
				hadError = true
				results = append(results, BotPerformanceSyncResult{ExecutionID: execution.ID, Symbol: execution.TradingPair, Error: err.Error()})
				continue
			}
			strategies[execution.StrategyID] = strategy
		}

		s.refresh(execution, snap)

		if err := s.executionRepo.Update(ctx, execution); err != nil {
			hadError = true
			s.log.ErrorContext(ctx, "Failed to update execution performance",
				logger.IntField("execution_id", int(execution.ID)),
				logger.ErrorField(err))
			results = append(results, BotPerformanceSyncResult{ExecutionID: execution.ID, Symbol: execution.TradingPair, Error: err.Error()})
			continue
		}

		s.maybeNotify(ctx, execution, strategy, payload.MilestoneROIStep, notifyCooldown)
		results = append(results, BotPerformanceSyncResult{ExecutionID: execution.ID, Symbol: execution.TradingPair, ROI: execution.ROI})
	}

	output, _ := json.Marshal(results)
	if hadError {
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(output)}, nil
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(output)}, nil
}

func (s *BotPerformanceSyncStrategy) refresh(execution *model.BotExecution, snap *model.FuturesData) {
	if execution.EntryPrice == 0 {
		execution.EntryPrice = snap.Price
	}
	if execution.EntryPrice > 0 {
		execution.Profit = execution.Capital * (snap.Price - execution.EntryPrice) / execution.EntryPrice
	}
	if execution.Capital > 0 {
		execution.ROI = execution.Profit / execution.Capital * 100
	}

	// Display-only win rate derived from ROI, clamped to 0..100.
	winRate := 50 + execution.ROI
	if winRate < 0 {
		winRate = 0
	}
	if winRate > 100 {
		winRate = 100
	}
	execution.WinRate = winRate

	// Runtime is accumulated, never recomputed from StartedAt, so totals
	// banked by earlier sessions survive the sync.
	if execution.StartedAt != nil {
		now := time.Now()
		base := *execution.StartedAt
		if execution.RuntimeSyncedAt != nil && execution.RuntimeSyncedAt.After(base) {
			base = *execution.RuntimeSyncedAt
		}
		execution.RuntimeSeconds += int64(now.Sub(base).Seconds())
		execution.RuntimeSyncedAt = &now
	}
}

// maybeNotify fires threshold and milestone alerts, throttled per execution
// and alert kind so every sync pass does not repeat them.
func (s *BotPerformanceSyncStrategy) maybeNotify(ctx context.Context, execution *model.BotExecution, strategy *model.BotStrategy, milestoneStep float64, cooldown time.Duration) {
	if strategy == nil {
		return
	}

	if strategy.TakeProfitPct > 0 && execution.ROI >= strategy.TakeProfitPct {
		if s.claim(fmt.Sprintf("bot_notify:profit:%d", execution.ID), cooldown) {
			s.alertNotifier.NotifyProfitThreshold(ctx, execution.UserID, execution.ID, execution.TradingPair, execution.Profit)
		}
	}
	if strategy.StopLossPct > 0 && execution.ROI <= -strategy.StopLossPct {
		if s.claim(fmt.Sprintf("bot_notify:loss:%d", execution.ID), cooldown) {
			s.alertNotifier.NotifyLossThreshold(ctx, execution.UserID, execution.ID, execution.TradingPair, -execution.Profit)
		}
	}
	if milestoneStep > 0 && execution.ROI >= milestoneStep {
		milestone := int(execution.ROI / milestoneStep)
		if s.claim(fmt.Sprintf("bot_notify:milestone:%d:%d", execution.ID, milestone), cooldown) {
			s.alertNotifier.NotifyPerformanceMilestone(ctx, execution.UserID, execution.ID, execution.TradingPair, execution.ROI)
		}
	}
}

func (s *BotPerformanceSyncStrategy) claim(key string, cooldown time.Duration) bool {
	if _, exists := s.inmemoryCache.Get(key); exists {
		return false
	}
	s.inmemoryCache.Set(key, struct{}{}, cooldown)
	return true
}
