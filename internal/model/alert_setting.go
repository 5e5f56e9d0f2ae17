package model

import (
	"time"

	"gorm.io/datatypes"
)

type DeliveryMethod string

const (
	DeliveryInApp    DeliveryMethod = "in_app"
	DeliveryEmail    DeliveryMethod = "email"
	DeliveryWebhook  DeliveryMethod = "webhook"
	DeliveryBrowser  DeliveryMethod = "browser"
	DeliveryTelegram DeliveryMethod = "telegram"
)

// AlertSetting is a user-configured rule intended to produce alerts. A user
// may hold any number of settings per alert type.
type AlertSetting struct {
	ID             uint                                   `gorm:"primaryKey" json:"id"`
	UserID         uint                                   `gorm:"not null;index" json:"user_id"`
	AlertType      AlertType                              `gorm:"type:varchar(50);not null" json:"alert_type"`
	Enabled        bool                                   `gorm:"default:true" json:"enabled"`
	Threshold      *string                                `json:"threshold,omitempty"`
	DeliveryMethod DeliveryMethod                         `gorm:"type:varchar(20);not null;default:in_app" json:"delivery_method"`
	Config         datatypes.JSONType[AlertSettingConfig] `gorm:"type:jsonb" json:"config"`
	CreatedAt      time.Time                              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AlertSetting) TableName() string {
	return "alert_settings"
}

// AlertSettingConfig carries method- or type-specific parameters.
type AlertSettingConfig struct {
	WebhookURL      string `json:"webhook_url,omitempty"`
	Email           string `json:"email,omitempty"`
	TelegramChatID  int64  `json:"telegram_chat_id,omitempty"`
	ScreenerID      *uint  `json:"screener_id,omitempty"`
	TradingPair     string `json:"trading_pair,omitempty"`
	FolderName      string `json:"folder_name,omitempty"`
	Indicator       string `json:"indicator,omitempty"`
	CooldownMinutes int    `json:"cooldown_minutes,omitempty"`
}
