package repository

import (
	"context"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
)

type AlertSettingRepository interface {
	Create(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error
	GetByUser(ctx context.Context, userID uint) ([]model.AlertSetting, error)
	GetByID(ctx context.Context, id uint) (*model.AlertSetting, error)
	GetEnabled(ctx context.Context) ([]model.AlertSetting, error)
	Update(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
}

type alertSettingRepository struct {
	db *gorm.DB
}

func NewAlertSettingRepository(db *gorm.DB) AlertSettingRepository {
	return &alertSettingRepository{db: db}
}

func (r *alertSettingRepository) Create(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(setting).Error
}

func (r *alertSettingRepository) GetByUser(ctx context.Context, userID uint) ([]model.AlertSetting, error) {
	var settings []model.AlertSetting
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *alertSettingRepository) GetByID(ctx context.Context, id uint) (*model.AlertSetting, error) {
	var setting model.AlertSetting
	result := r.db.WithContext(ctx).First(&setting, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &setting, nil
}

// GetEnabled returns every enabled setting across all users, for the scan job.
func (r *alertSettingRepository) GetEnabled(ctx context.Context) ([]model.AlertSetting, error) {
	var settings []model.AlertSetting
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *alertSettingRepository) Update(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.AlertSetting{}).
		Where("id = ?", setting.ID).
		Select("enabled", "threshold", "delivery_method", "config").
		Updates(setting).Error
}

func (r *alertSettingRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Delete(&model.AlertSetting{}, id).Error
}
