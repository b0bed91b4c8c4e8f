package model

import "time"

// FundState is the single persisted freeze switch.
type FundState struct {
	Frozen    bool      `json:"frozen"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FreezeResult is returned by a freeze transition.
// Changed is false when the requested state was already in effect.
type FreezeResult struct {
	Frozen    bool      `json:"frozen"`
	UpdatedAt time.Time `json:"updated_at"`
	Changed   bool      `json:"changed"`
}
