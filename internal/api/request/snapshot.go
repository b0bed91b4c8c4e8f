package request

import "encoding/json"

// RecordSnapshotRequest is one snapshot as written by the valuation job.
type RecordSnapshotRequest struct {
	Timestamp string          `json:"timestamp"`
	TotalNAV  json.RawMessage `json:"total_nav"`
	Positions []PositionInput `json:"positions"`
}

// PositionInput is one holding of a RecordSnapshotRequest.
type PositionInput struct {
	Category string          `json:"category"`
	Source   string          `json:"source"`
	Asset    string          `json:"asset"`
	Chain    string          `json:"chain"`
	Amount   json.RawMessage `json:"amount,omitempty"`
	Value    json.RawMessage `json:"value"`
}
