package services

import (
	"context"
	"fmt"

	"finledger/internal/amqp"
	"finledger/internal/core"
)

// RecordService saves records and announces them.
type RecordService struct {
	store     RecordStore
	publisher EventPublisher
}

func NewRecordService(store RecordStore, publisher EventPublisher) *RecordService {
	return &RecordService{store: store, publisher: publisher}
}

// CreateRecord stores r in the user's namespace and publishes a
// record.created event. A publish failure is logged, not returned.
func (s *RecordService) CreateRecord(ctx context.Context, username string, r core.Record) (int64, error) {
	id, err := s.store.AddRecord(ctx, username, r)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}

	publish(ctx, s.publisher, amqp.NewRecordEvent(amqp.EventRecordCreated, username, id))
	return id, nil
}
