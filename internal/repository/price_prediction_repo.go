package repository

import (
	"context"
	"time"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
)

type PricePredictionRepository interface {
	Create(ctx context.Context, prediction *model.PricePrediction, opts ...utils.DBOption) error
	GetLatestBySymbol(ctx context.Context, symbol string) (*model.PricePrediction, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type pricePredictionRepository struct {
	db *gorm.DB
}

func NewPricePredictionRepository(db *gorm.DB) PricePredictionRepository {
	return &pricePredictionRepository{db: db}
}

func (r *pricePredictionRepository) Create(ctx context.Context, prediction *model.PricePrediction, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(prediction).Error
}

func (r *pricePredictionRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*model.PricePrediction, error) {
	var prediction model.PricePrediction
	result := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		First(&prediction)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &prediction, nil
}

func (r *pricePredictionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.PricePrediction{})
	return result.RowsAffected, result.Error
}
