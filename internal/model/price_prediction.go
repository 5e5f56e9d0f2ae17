package model

import (
	"time"

	"gorm.io/datatypes"
)

type PricePrediction struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Symbol         string         `gorm:"not null;index" json:"symbol"`
	CurrentPrice   float64        `gorm:"not null" json:"current_price"`
	PredictedPrice float64        `gorm:"not null" json:"predicted_price"`
	Direction      string         `gorm:"type:varchar(10)" json:"direction"`
	Confidence     float64        `json:"confidence"`
	HorizonHours   int            `gorm:"default:24" json:"horizon_hours"`
	Rationale      string         `gorm:"type:text" json:"rationale"`
	Prompt         string         `gorm:"type:text" json:"-"`
	Response       datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (PricePrediction) TableName() string {
	return "price_predictions"
}
