package dto

import "futures-dashboard/internal/model"

type CreateAlertRequest struct {
	UserID      uint                `json:"user_id" validate:"required"`
	ExecutionID *uint               `json:"execution_id,omitempty"`
	Type        model.AlertType     `json:"type" validate:"required"`
	Title       string              `json:"title" validate:"required,max=200"`
	Message     string              `json:"message" validate:"required"`
	Severity    model.AlertSeverity `json:"severity" validate:"omitempty,oneof=info warning error success"`
	Data        map[string]any      `json:"data,omitempty"`
}

type GetAlertsParam struct {
	UserID     uint
	UnreadOnly bool
	PinnedOnly bool
	Limit      int
}

type CreateAlertSettingRequest struct {
	UserID         uint                     `json:"user_id" validate:"required"`
	AlertType      model.AlertType          `json:"alert_type" validate:"required"`
	Enabled        *bool                    `json:"enabled"`
	Threshold      *string                  `json:"threshold,omitempty"`
	DeliveryMethod model.DeliveryMethod     `json:"delivery_method" validate:"omitempty,oneof=in_app email webhook browser telegram"`
	Config         model.AlertSettingConfig `json:"config"`
}

type UpdateAlertSettingRequest struct {
	Enabled        *bool                    `json:"enabled"`
	Threshold      *string                  `json:"threshold,omitempty"`
	DeliveryMethod model.DeliveryMethod     `json:"delivery_method" validate:"omitempty,oneof=in_app email webhook browser telegram"`
	Config         model.AlertSettingConfig `json:"config"`
}
