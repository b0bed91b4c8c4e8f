package request

import "encoding/json"

// CapitalRequestBody is the body of a deposit or withdrawal submission.
// Amount is kept raw so that a quoted number and a bare number are both
// accepted and a non-numeric value gets a specific error.
type CapitalRequestBody struct {
	Amount json.RawMessage `json:"amount"`
	Note   *string         `json:"note,omitempty"`
}

// AdminLoginRequest is the body of an admin login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}
