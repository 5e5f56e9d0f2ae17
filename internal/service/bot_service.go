package service

import (
	"context"
	"fmt"
	"time"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/logger"

	"gorm.io/datatypes"
)

type BotService interface {
	CreateStrategy(ctx context.Context, req dto.CreateBotStrategyRequest) (*model.BotStrategy, error)
	GetStrategies(ctx context.Context, userID uint) ([]model.BotStrategy, error)
	GetStrategy(ctx context.Context, id uint) (*model.BotStrategy, error)

	CreateExecution(ctx context.Context, req dto.CreateBotExecutionRequest) (*model.BotExecution, error)
	GetExecutions(ctx context.Context, param dto.GetBotExecutionsParam) ([]model.BotExecution, error)
	UpdateExecutionStatus(ctx context.Context, id uint, status model.ExecutionStatus) (*model.BotExecution, error)

	DeployToFolder(ctx context.Context, req dto.DeployStrategyRequest) (*dto.DeployResult, error)
}

type botService struct {
	strategyRepo  repository.BotStrategyRepository
	executionRepo repository.BotExecutionRepository
	screenerRepo  repository.ScreenerRepository
	alertService  AlertService
	logger        *logger.Logger
}

func NewBotService(
	strategyRepo repository.BotStrategyRepository,
	executionRepo repository.BotExecutionRepository,
	screenerRepo repository.ScreenerRepository,
	alertService AlertService,
	log *logger.Logger,
) BotService {
	return &botService{
		strategyRepo:  strategyRepo,
		executionRepo: executionRepo,
		screenerRepo:  screenerRepo,
		alertService:  alertService,
		logger:        log,
	}
}

func (s *botService) CreateStrategy(ctx context.Context, req dto.CreateBotStrategyRequest) (*model.BotStrategy, error) {
	strategy := &model.BotStrategy{
		UserID:          req.UserID,
		Name:            req.Name,
		Description:     req.Description,
		EntryConditions: datatypes.NewJSONSlice(req.EntryConditions),
		ExitConditions:  datatypes.NewJSONSlice(req.ExitConditions),
		RiskPerTradePct: req.RiskPerTradePct,
		StopLossPct:     req.StopLossPct,
		TakeProfitPct:   req.TakeProfitPct,
		MaxPositions:    req.MaxPositions,
	}
	if strategy.RiskPerTradePct == 0 {
		strategy.RiskPerTradePct = 1
	}
	if strategy.StopLossPct == 0 {
		strategy.StopLossPct = 2
	}
	if strategy.TakeProfitPct == 0 {
		strategy.TakeProfitPct = 4
	}
	if strategy.MaxPositions == 0 {
		strategy.MaxPositions = 1
	}

	if err := s.strategyRepo.Create(ctx, strategy); err != nil {
		return nil, err
	}
	return strategy, nil
}

func (s *botService) GetStrategies(ctx context.Context, userID uint) ([]model.BotStrategy, error) {
	return s.strategyRepo.GetByUser(ctx, userID)
}

func (s *botService) GetStrategy(ctx context.Context, id uint) (*model.BotStrategy, error) {
	strategy, err := s.strategyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, ErrNotFound
	}
	return strategy, nil
}

func (s *botService) CreateExecution(ctx context.Context, req dto.CreateBotExecutionRequest) (*model.BotExecution, error) {
	strategy, err := s.strategyRepo.GetByID(ctx, req.StrategyID)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, ErrNotFound
	}

	execution := &model.BotExecution{
		UserID:      req.UserID,
		StrategyID:  req.StrategyID,
		TradingPair: req.TradingPair,
		Status:      model.ExecutionInactive,
		Capital:     req.Capital,
	}
	if err := s.executionRepo.Create(ctx, execution); err != nil {
		return nil, err
	}
	return execution, nil
}

func (s *botService) GetExecutions(ctx context.Context, param dto.GetBotExecutionsParam) ([]model.BotExecution, error) {
	return s.executionRepo.Get(ctx, param)
}

// UpdateExecutionStatus applies a status transition. Activating stamps
// StartedAt when the execution has never run; deactivating folds the elapsed
// run time into RuntimeSeconds so pause/resume keeps an accurate total.
func (s *botService) UpdateExecutionStatus(ctx context.Context, id uint, status model.ExecutionStatus) (*model.BotExecution, error) {
	execution, err := s.executionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, ErrNotFound
	}

	if execution.Status == status {
		return execution, nil
	}

	now := time.Now()
	switch status {
	case model.ExecutionActive:
		execution.StartedAt = &now
		execution.RuntimeSyncedAt = nil
	case model.ExecutionInactive, model.ExecutionPaused:
		if execution.Status == model.ExecutionActive && execution.StartedAt != nil {
			// The performance sync may have folded part of this session
			// already; only the slice past its checkpoint is still owed.
			base := *execution.StartedAt
			if execution.RuntimeSyncedAt != nil && execution.RuntimeSyncedAt.After(base) {
				base = *execution.RuntimeSyncedAt
			}
			execution.RuntimeSeconds += int64(now.Sub(base).Seconds())
			execution.StartedAt = nil
			execution.RuntimeSyncedAt = nil
		}
	}
	execution.Status = status

	if err := s.executionRepo.Update(ctx, execution); err != nil {
		return nil, err
	}
	return execution, nil
}

// DeployToFolder creates one execution per pair of the folder, sequentially.
// Creates are independent: a failed pair is recorded and the loop moves on,
// and earlier successes are never rolled back.
func (s *botService) DeployToFolder(ctx context.Context, req dto.DeployStrategyRequest) (*dto.DeployResult, error) {
	strategy, err := s.strategyRepo.GetByID(ctx, req.StrategyID)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, ErrNotFound
	}

	folder, err := s.screenerRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrNotFound
	}

	pairs := []string(folder.Symbols)
	if len(pairs) == 0 {
		return nil, ErrFolderEmpty
	}

	activeCount, err := s.executionRepo.CountActiveByPairs(ctx, req.UserID, pairs)
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, ErrFolderHasActiveBot
	}

	result := &dto.DeployResult{}
	for _, pair := range pairs {
		execution := &model.BotExecution{
			UserID:      req.UserID,
			StrategyID:  req.StrategyID,
			TradingPair: pair,
			Status:      model.ExecutionInactive,
			Capital:     req.CapitalPerPair,
		}
		if err := s.executionRepo.Create(ctx, execution); err != nil {
			s.logger.ErrorContext(ctx, "failed to deploy strategy to pair",
				logger.StringField("trading_pair", pair),
				logger.IntField("strategy_id", int(req.StrategyID)),
				logger.ErrorField(err))
			result.FailedPairs = append(result.FailedPairs, dto.DeployFailure{
				TradingPair: pair,
				Reason:      err.Error(),
			})
			continue
		}
		result.Deployed = append(result.Deployed, *execution)
	}

	if len(result.Deployed) > 0 {
		if _, err := s.alertService.Create(ctx, dto.CreateAlertRequest{
			UserID:   req.UserID,
			Type:     model.AlertTypeFolderUpdate,
			Title:    "Strategy deployed to " + folder.Name,
			Message:  deployMessage(strategy.Name, folder.Name, len(result.Deployed), len(result.FailedPairs)),
			Severity: model.SeverityInfo,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to create deploy alert", logger.ErrorField(err))
		}
	}
	return result, nil
}

func deployMessage(strategyName, folderName string, deployed, failed int) string {
	msg := fmt.Sprintf("Strategy %q deployed to %d pair(s) in folder %q.", strategyName, deployed, folderName)
	if failed > 0 {
		msg += fmt.Sprintf(" %d pair(s) failed.", failed)
	}
	return msg
}
