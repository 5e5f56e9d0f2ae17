package repository

import (
	"context"
	"time"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert, opts ...utils.DBOption) error
	Get(ctx context.Context, param dto.GetAlertsParam) ([]model.Alert, error)
	GetByID(ctx context.Context, id uint) (*model.Alert, error)
	MarkRead(ctx context.Context, id uint, opts ...utils.DBOption) error
	MarkAllRead(ctx context.Context, userID uint, opts ...utils.DBOption) error
	SetPinned(ctx context.Context, id uint, pinned bool, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(alert).Error
}

func (r *alertRepository) Get(ctx context.Context, param dto.GetAlertsParam) ([]model.Alert, error) {
	var alerts []model.Alert

	query := r.db.WithContext(ctx).Where("user_id = ?", param.UserID)
	if param.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if param.PinnedOnly {
		query = query.Where("pinned = ?", true)
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	if err := query.Order("pinned DESC, created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) GetByID(ctx context.Context, id uint) (*model.Alert, error) {
	var alert model.Alert
	result := r.db.WithContext(ctx).First(&alert, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &alert, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Alert{}).Where("id = ?", id).Update("read", true).Error
}

func (r *alertRepository) MarkAllRead(ctx context.Context, userID uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Alert{}).Where("user_id = ? AND read = ?", userID, false).Update("read", true).Error
}

func (r *alertRepository) SetPinned(ctx context.Context, id uint, pinned bool, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(&model.Alert{}).Where("id = ?", id).Update("pinned", pinned).Error
}

func (r *alertRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Delete(&model.Alert{}, id).Error
}

// DeleteReadOlderThan prunes read, unpinned alerts for the cleanup job.
func (r *alertRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("read = ? AND pinned = ? AND created_at < ?", true, false, cutoff).
		Delete(&model.Alert{})
	return result.RowsAffected, result.Error
}
