package services

import (
	"context"
	"errors"
	"testing"

	"finledger/internal/amqp"
	"finledger/internal/core"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishLedgerEvent(context.Context, amqp.LedgerEvent) error {
	p.calls++
	return errors.New("broker down")
}

func TestCreateRecordPublishes(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	svc := NewRecordService(store, pub)

	id, err := svc.CreateRecord(context.Background(), "alice", expense("2024-01-01", "Food", "3", "INR"))
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].RecordID != id || pub.events[0].User != "alice" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestCreateRecordSurvivesPublishFailure(t *testing.T) {
	store := newStore(t)
	pub := &failingPublisher{}
	svc := NewRecordService(store, pub)

	if _, err := svc.CreateRecord(context.Background(), "alice", expense("2024-01-01", "Food", "3", "INR")); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if pub.calls != 1 {
		t.Errorf("publisher called %d times", pub.calls)
	}
}

func TestCreateRecordValidation(t *testing.T) {
	svc := NewRecordService(newStore(t), nil)
	_, err := svc.CreateRecord(context.Background(), "alice", expense("2024-01-01", "Food", "-3", "INR"))
	var valErr *core.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}
