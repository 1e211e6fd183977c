package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keyforge/licensing-system/internal/core/domain"
)

type stubAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *stubAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *stubAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestDispatcher_PersistsEvents(t *testing.T) {
	repo := &stubAuditRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{Login: "alice", Action: domain.ActionRegister, Balance: 60})
	d.Record(domain.AuditEvent{Login: "bob", Action: domain.ActionRegister, Balance: 60})

	waitFor(t, func() bool { return len(repo.snapshot()) == 2 })
}

func TestDispatcher_PreservesPerLoginOrder(t *testing.T) {
	repo := &stubAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		d.Record(domain.AuditEvent{Login: "alice", Action: domain.ActionConsume, Minutes: int64(i)})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == n })

	events := repo.snapshot()
	for i, e := range events {
		if e.Minutes != int64(i) {
			t.Fatalf("per-login order broken at %d: got minutes %d", i, e.Minutes)
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &stubAuditRepo{}, zerolog.Nop())

	first := d.shardIndex("alice")
	for i := 0; i < 100; i++ {
		if d.shardIndex("alice") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}
