package repository

import (
	"context"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FuturesDataRepository interface {
	Upsert(ctx context.Context, rows []model.FuturesData, opts ...utils.DBOption) error
	GetAll(ctx context.Context) ([]model.FuturesData, error)
	GetBySymbol(ctx context.Context, symbol string) (*model.FuturesData, error)
	GetBySymbols(ctx context.Context, symbols []string) ([]model.FuturesData, error)
}

type futuresDataRepository struct {
	db *gorm.DB
}

func NewFuturesDataRepository(db *gorm.DB) FuturesDataRepository {
	return &futuresDataRepository{db: db}
}

// Upsert writes snapshot rows keyed by symbol.
func (r *futuresDataRepository) Upsert(ctx context.Context, rows []model.FuturesData, opts ...utils.DBOption) error {
	if len(rows) == 0 {
		return nil
	}
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "change_24h", "high_24h", "low_24h",
			"volume_24h", "quote_volume_24h", "funding_rate", "open_interest", "updated_at",
		}),
	}).Create(&rows).Error
}

func (r *futuresDataRepository) GetAll(ctx context.Context) ([]model.FuturesData, error) {
	var rows []model.FuturesData
	if err := r.db.WithContext(ctx).Order("quote_volume_24h DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *futuresDataRepository) GetBySymbol(ctx context.Context, symbol string) (*model.FuturesData, error) {
	var row model.FuturesData
	result := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&row)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &row, nil
}

func (r *futuresDataRepository) GetBySymbols(ctx context.Context, symbols []string) ([]model.FuturesData, error) {
	var rows []model.FuturesData
	if len(symbols) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("symbol IN (?)", symbols).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
