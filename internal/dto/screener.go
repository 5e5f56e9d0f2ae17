package dto

import "futures-dashboard/internal/model"

type CreateScreenerRequest struct {
	UserID   uint                    `json:"user_id" validate:"required"`
	Name     string                  `json:"name" validate:"required,max=100"`
	Color    string                  `json:"color" validate:"omitempty,max=20"`
	Symbols  []string                `json:"symbols"`
	Starred  bool                    `json:"starred"`
	Criteria model.ScreenerCriteria  `json:"criteria"`
}

// UpdateScreenerRequest is a full replace, matching the edit form.
type UpdateScreenerRequest struct {
	Name     string                 `json:"name" validate:"required,max=100"`
	Color    string                 `json:"color" validate:"omitempty,max=20"`
	Symbols  []string               `json:"symbols"`
	Starred  bool                   `json:"starred"`
	Criteria model.ScreenerCriteria `json:"criteria"`
}

type AddSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

// ScreenerMatchesResponse is the evaluated view of one screener against the
// current futures snapshots.
type ScreenerMatchesResponse struct {
	ScreenerID uint                `json:"screener_id"`
	Matches    []model.FuturesData `json:"matches"`
}
