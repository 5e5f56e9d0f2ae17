package model

import (
	"time"

	"gorm.io/datatypes"
)

type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityError   AlertSeverity = "error"
	SeveritySuccess AlertSeverity = "success"
)

type AlertType string

const (
	AlertTypePriceAbove           AlertType = "price_above"
	AlertTypePriceBelow           AlertType = "price_below"
	AlertTypePriceChange          AlertType = "price_change"
	AlertTypeVolumeSpike          AlertType = "volume_spike"
	AlertTypeFundingRate          AlertType = "funding_rate"
	AlertTypeScreenerMatch        AlertType = "screener_match"
	AlertTypeFolderUpdate         AlertType = "folder_update"
	AlertTypeTechnicalIndicator   AlertType = "technical_indicator"
	AlertTypeProfitThreshold      AlertType = "profit_threshold"
	AlertTypeLossThreshold        AlertType = "loss_threshold"
	AlertTypeEntrySignal          AlertType = "entry_signal"
	AlertTypeExitSignal           AlertType = "exit_signal"
	AlertTypeBotError             AlertType = "bot_error"
	AlertTypePerformanceMilestone AlertType = "performance_milestone"
)

// Alert is one fired notification record.
type Alert struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	ExecutionID *uint          `json:"execution_id,omitempty"`
	Type        AlertType      `gorm:"type:varchar(50);not null" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	Message     string         `gorm:"type:text;not null" json:"message"`
	Severity    AlertSeverity  `gorm:"type:varchar(20);not null;default:info" json:"severity"`
	Read        bool           `gorm:"default:false" json:"read"`
	Pinned      bool           `gorm:"default:false" json:"pinned"`
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
