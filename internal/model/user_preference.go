package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserPreference stores the dashboard's free-form per-user settings blob
// (theme, default view, polling interval) as the front-end shipped it.
type UserPreference struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Preferences datatypes.JSON `gorm:"type:jsonb;not null" json:"preferences"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
