package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Ledger event types.
const (
	EventRecordCreated       = "record.created"
	EventRecordMaterialized  = "record.materialized"
	EventAchievementUnlocked = "achievement.unlocked"
)

// LedgerEvent announces a change in a user's ledger. Record events carry
// only the id; consumers fetch the full record from the user's namespace.
type LedgerEvent struct {
	Type        string    `json:"type"`
	User        string    `json:"user"`
	RecordID    int64     `json:"record_id,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRecordEvent builds a record.created or record.materialized event.
func NewRecordEvent(eventType, user string, recordID int64) LedgerEvent {
	return LedgerEvent{
		Type:      eventType,
		User:      user,
		RecordID:  recordID,
		Timestamp: time.Now().UTC(),
	}
}

func NewAchievementEvent(user, name string) LedgerEvent {
	return LedgerEvent{
		Type:        EventAchievementUnlocked,
		User:        user,
		Achievement: name,
		Timestamp:   time.Now().UTC(),
	}
}

// IsRecordEvent reports whether the event refers to a stored record.
func (e LedgerEvent) IsRecordEvent() bool {
	return e.Type == EventRecordCreated || e.Type == EventRecordMaterialized
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and checks its required fields.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Type == "" || ev.User == "" {
		return nil, errors.New("ledger event needs type and user")
	}
	if ev.IsRecordEvent() && ev.RecordID <= 0 {
		return nil, errors.New("record event without record_id")
	}
	return &ev, nil
}
