package dto

import "encoding/json"

type SavePreferencesRequest struct {
	Preferences json.RawMessage `json:"preferences" validate:"required"`
}
