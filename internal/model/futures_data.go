package model

import "time"

// FuturesData is the latest snapshot per symbol, refreshed by the futures
// sync job. Change24h is a fraction (0.05 = +5%).
type FuturesData struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Symbol         string    `gorm:"uniqueIndex;not null" json:"symbol"`
	Price          float64   `gorm:"not null" json:"price"`
	Change24h      float64   `gorm:"not null" json:"change_24h"`
	High24h        float64   `json:"high_24h"`
	Low24h         float64   `json:"low_24h"`
	Volume24h      float64   `gorm:"not null" json:"volume_24h"`
	QuoteVolume24h float64   `json:"quote_volume_24h"`
	FundingRate    float64   `json:"funding_rate"`
	OpenInterest   float64   `json:"open_interest"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FuturesData) TableName() string {
	return "futures_data"
}
