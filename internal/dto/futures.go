package dto

// Candle is one OHLCV bar served by the symbol history endpoint.
type Candle struct {
	OpenTime int64   `json:"open_time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

type GetHistoryParam struct {
	Symbol   string
	Interval string
	Limit    int
}
