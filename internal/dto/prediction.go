package dto

// AIPredictionResponse is the structure the model is asked to return as JSON.
type AIPredictionResponse struct {
	Symbol         string  `json:"symbol"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
	Direction      string  `json:"direction"`
	Confidence     float64 `json:"confidence"`
	HorizonHours   int     `json:"horizon_hours"`
	Rationale      string  `json:"rationale"`
}

type CreatePredictionRequest struct {
	HorizonHours int `json:"horizon_hours" validate:"omitempty,gt=0,lte=168"`
}
