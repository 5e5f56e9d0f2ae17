package repository

import (
	"context"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
)

type ScreenerRepository interface {
	Create(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint) (*model.Screener, error)
	GetByUser(ctx context.Context, userID uint) ([]model.Screener, error)
	Update(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
}

type screenerRepository struct {
	db *gorm.DB
}

func NewScreenerRepository(db *gorm.DB) ScreenerRepository {
	return &screenerRepository{db: db}
}

func (r *screenerRepository) Create(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(screener).Error
}

func (r *screenerRepository) GetByID(ctx context.Context, id uint) (*model.Screener, error) {
	var screener model.Screener
	result := r.db.WithContext(ctx).First(&screener, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &screener, nil
}

func (r *screenerRepository) GetByUser(ctx context.Context, userID uint) ([]model.Screener, error) {
	var screeners []model.Screener
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starred DESC, name ASC").
		Find(&screeners).Error; err != nil {
		return nil, err
	}
	return screeners, nil
}

// Update is a full replace of the mutable columns, matching the edit form.
func (r *screenerRepository) Update(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Screener{}).
		Where("id = ?", screener.ID).
		Select("name", "color", "symbols", "starred", "criteria").
		Updates(screener).Error
}

func (r *screenerRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Delete(&model.Screener{}, id).Error
}
