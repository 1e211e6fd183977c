package ports

import (
	"context"

	"github.com/keyforge/licensing-system/internal/core/domain"
)

// AuditRepository persists balance-mutation journal entries.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts journal entries for asynchronous persistence. Record
// must preserve per-login ordering.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
