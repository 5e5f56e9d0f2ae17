package model

import (
	"time"

	"gorm.io/datatypes"
)

// Screener is a named, saved set of filter criteria. The UI also reuses it as
// a plain "folder" of trading pairs, in which case Criteria stays empty.
type Screener struct {
	ID        uint                                  `gorm:"primaryKey" json:"id"`
	UserID    uint                                  `gorm:"not null;index" json:"user_id"`
	Name      string                                `gorm:"not null" json:"name"`
	Color     string                                `gorm:"type:varchar(20)" json:"color"`
	Symbols   datatypes.JSONSlice[string]           `gorm:"type:jsonb" json:"symbols"`
	Starred   bool                                  `gorm:"default:false" json:"starred"`
	Criteria  datatypes.JSONType[ScreenerCriteria]  `gorm:"type:jsonb" json:"criteria"`
	User      User                                  `gorm:"foreignKey:UserID;references:ID" json:"-"`
	CreatedAt time.Time                             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Screener) TableName() string {
	return "screeners"
}

// ScreenerCriteria holds the filter thresholds. Every field is optional; an
// empty criteria object matches every tick.
type ScreenerCriteria struct {
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinVolumeUSD *float64 `json:"min_volume_usd,omitempty"`
	MaxVolumeUSD *float64 `json:"max_volume_usd,omitempty"`
	// Change bounds are percentages, e.g. 5 means 5%.
	MinChange    *float64 `json:"min_change,omitempty"`
	MaxChange    *float64 `json:"max_change,omitempty"`
	MinMarketCap *float64 `json:"min_market_cap,omitempty"`
	MaxMarketCap *float64 `json:"max_market_cap,omitempty"`

	SymbolPrefix   *string  `json:"symbol_prefix,omitempty"`
	SymbolContains *string  `json:"symbol_contains,omitempty"`
	SymbolList     []string `json:"symbol_list,omitempty"`

	RSI            *IndicatorCriterion `json:"rsi,omitempty"`
	MACD           *IndicatorCriterion `json:"macd,omitempty"`
	MovingAverages *IndicatorCriterion `json:"moving_averages,omitempty"`
	Bollinger      *IndicatorCriterion `json:"bollinger,omitempty"`
	Stochastic     *IndicatorCriterion `json:"stochastic,omitempty"`
	WilliamsR      *IndicatorCriterion `json:"williams_r,omitempty"`
	ATR            *IndicatorCriterion `json:"atr,omitempty"`
	CCI            *IndicatorCriterion `json:"cci,omitempty"`
	Momentum       *IndicatorCriterion `json:"momentum,omitempty"`
}

// IndicatorOperator compares an indicator value against the criterion
// threshold(s).
type IndicatorOperator string

const (
	OperatorAbove   IndicatorOperator = "above"
	OperatorBelow   IndicatorOperator = "below"
	OperatorBetween IndicatorOperator = "between"
)

// IndicatorCriterion is one technical-indicator condition. Value2 is only
// consulted by the "between" operator.
type IndicatorCriterion struct {
	Operator IndicatorOperator `json:"operator"`
	Value    float64           `json:"value"`
	Value2   *float64          `json:"value2,omitempty"`
	Period   int               `json:"period,omitempty"`
}
