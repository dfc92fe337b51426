package amqp

import (
	"encoding/json"
	"time"
)

// DayExportMessage asks the worker to export one closed day to the
// external journal. It carries only the day ID, the worker fetches the
// full record from the database.
type DayExportMessage struct {
	DayID     string    `json:"day_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDayExportMessage creates an export message for the given day.
func NewDayExportMessage(dayID string) *DayExportMessage {
	return &DayExportMessage{
		DayID:     dayID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DayExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DayExportMessageFromJSON creates a message from JSON bytes
func DayExportMessageFromJSON(data []byte) (*DayExportMessage, error) {
	var msg DayExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
