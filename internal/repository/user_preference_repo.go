package repository

import (
	"context"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPreferenceRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*model.UserPreference, error)
	Upsert(ctx context.Context, pref *model.UserPreference, opts ...utils.DBOption) error
}

type userPreferenceRepository struct {
	db *gorm.DB
}

func NewUserPreferenceRepository(db *gorm.DB) UserPreferenceRepository {
	return &userPreferenceRepository{db: db}
}

func (r *userPreferenceRepository) GetByUserID(ctx context.Context, userID uint) (*model.UserPreference, error) {
	var pref model.UserPreference
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &pref, nil
}

func (r *userPreferenceRepository) Upsert(ctx context.Context, pref *model.UserPreference, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences", "updated_at"}),
	}).Create(pref).Error
}
