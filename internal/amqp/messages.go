package amqp

import (
	"encoding/json"
	"time"

	"pocketbook/internal/core"
)

const MessageTypeBalanceSnapshot = "balance_snapshot"

// BalanceSnapshotMessage wraps a snapshot with an envelope type and the
// publish time.
type BalanceSnapshotMessage struct {
	Type        string               `json:"type"`
	Snapshot    core.BalanceSnapshot `json:"snapshot"`
	PublishedAt time.Time            `json:"publishedAt"`
}

func NewBalanceSnapshotMessage(snap core.BalanceSnapshot) *BalanceSnapshotMessage {
	return &BalanceSnapshotMessage{
		Type:        MessageTypeBalanceSnapshot,
		Snapshot:    snap,
		PublishedAt: time.Now(),
	}
}

func (m *BalanceSnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BalanceSnapshotMessageFromJSON(data []byte) (*BalanceSnapshotMessage, error) {
	var msg BalanceSnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
