package events

import (
	"context"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

// JournalEventPublisher delivers committed ledger events to downstream consumers.
type JournalEventPublisher interface {
	PublishJournalEvent(ctx context.Context, event domain.JournalEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishJournalEvent(context.Context, domain.JournalEvent) error { return nil }
