package events

import (
	"encoding/json"
	"time"
)

// OperationRecorded announces a freshly written ledger operation. Consumers
// get enough to render an audit line without re-reading the store.
type OperationRecorded struct {
	OperationID string    `json:"operation_id"`
	GroupID     string    `json:"group_id"`
	Type        string    `json:"type"`
	PersonID    string    `json:"person_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m *OperationRecorded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OperationRecordedFromJSON(data []byte) (*OperationRecorded, error) {
	var msg OperationRecorded
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
