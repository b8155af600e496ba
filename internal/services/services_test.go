package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/storage"

	"github.com/shopspring/decimal"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(t.TempDir(), storage.Options{CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return s
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func d(s string) core.Date { return core.MustParseDate(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
