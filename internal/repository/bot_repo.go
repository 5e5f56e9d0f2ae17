package repository

import (
	"context"
	"fmt"
	"strings"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
)

type BotStrategyRepository interface {
	Create(ctx context.Context, strategy *model.BotStrategy, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint) (*model.BotStrategy, error)
	GetByUser(ctx context.Context, userID uint) ([]model.BotStrategy, error)
}

type botStrategyRepository struct {
	db *gorm.DB
}

func NewBotStrategyRepository(db *gorm.DB) BotStrategyRepository {
	return &botStrategyRepository{db: db}
}

func (r *botStrategyRepository) Create(ctx context.Context, strategy *model.BotStrategy, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(strategy).Error
}

func (r *botStrategyRepository) GetByID(ctx context.Context, id uint) (*model.BotStrategy, error) {
	var strategy model.BotStrategy
	result := r.db.WithContext(ctx).First(&strategy, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &strategy, nil
}

func (r *botStrategyRepository) GetByUser(ctx context.Context, userID uint) ([]model.BotStrategy, error) {
	var strategies []model.BotStrategy
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&strategies).Error; err != nil {
		return nil, err
	}
	return strategies, nil
}

type BotExecutionRepository interface {
	Create(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error
	Get(ctx context.Context, param dto.GetBotExecutionsParam) ([]model.BotExecution, error)
	GetByID(ctx context.Context, id uint) (*model.BotExecution, error)
	GetActive(ctx context.Context) ([]model.BotExecution, error)
	Update(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error
	UpdateStatus(ctx context.Context, id uint, status model.ExecutionStatus, opts ...utils.DBOption) error
	CountActiveByPairs(ctx context.Context, userID uint, pairs []string) (int64, error)
}

type botExecutionRepository struct {
	db *gorm.DB
}

func NewBotExecutionRepository(db *gorm.DB) BotExecutionRepository {
	return &botExecutionRepository{db: db}
}

func (r *botExecutionRepository) Create(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(execution).Error
}

func (r *botExecutionRepository) Get(ctx context.Context, param dto.GetBotExecutionsParam) ([]model.BotExecution, error) {
	var executions []model.BotExecution

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if param.UserID > 0 {
		qFilter = append(qFilter, "user_id = ?")
		qFilterParam = append(qFilterParam, param.UserID)
	}
	if param.StrategyID != nil {
		qFilter = append(qFilter, "strategy_id = ?")
		qFilterParam = append(qFilterParam, *param.StrategyID)
	}
	if param.Status != nil {
		qFilter = append(qFilter, "status = ?")
		qFilterParam = append(qFilterParam, *param.Status)
	}

	if len(qFilter) == 0 {
		return nil, fmt.Errorf("no filter provided")
	}

	if err := r.db.WithContext(ctx).Preload("Strategy").
		Where(strings.Join(qFilter, " AND "), qFilterParam...).
		Order("created_at DESC").
		Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *botExecutionRepository) GetByID(ctx context.Context, id uint) (*model.BotExecution, error) {
	var execution model.BotExecution
	result := r.db.WithContext(ctx).Preload("Strategy").First(&execution, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &execution, nil
}

// GetActive returns active executions across all users, for the performance
// sync job.
func (r *botExecutionRepository) GetActive(ctx context.Context) ([]model.BotExecution, error) {
	var executions []model.BotExecution
	if err := r.db.WithContext(ctx).Where("status = ?", model.ExecutionActive).Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *botExecutionRepository) Update(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	// Struct-form Updates skips zero values, which would drop a cleared
	// StartedAt or a profit landing exactly on zero.
	return tx.Model(execution).
		Select("status", "capital", "entry_price", "profit", "trades", "win_rate", "roi", "runtime_seconds", "started_at", "runtime_synced_at").
		Updates(execution).Error
}

func (r *botExecutionRepository) UpdateStatus(ctx context.Context, id uint, status model.ExecutionStatus, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.BotExecution{}).Where("id = ?", id).Update("status", status).Error
}

// CountActiveByPairs counts a user's active executions on any of the given
// pairs. Used for the "folder already has active bots" pre-check.
func (r *botExecutionRepository) CountActiveByPairs(ctx context.Context, userID uint, pairs []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BotExecution{}).
		Where("user_id = ? AND status = ? AND trading_pair IN (?)", userID, model.ExecutionActive, pairs).
		Count(&count).Error
	return count, err
}
