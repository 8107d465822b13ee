package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

type memAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	block  chan struct{}
}

func (r *memAuditRepo) Insert(_ context.Context, e *domain.AuditEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *memAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerEntityOrder(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	actions := []domain.AuditAction{domain.AuditBookCreated, domain.AuditBookUpdated, domain.AuditBookUpdated, domain.AuditBookDeleted}
	for _, a := range actions {
		d.Record(domain.AuditEvent{Action: a, Entity: "book", EntityID: 7})
	}

	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != len(actions) {
		t.Fatalf("expected %d events, got %d", len(actions), len(got))
	}
	for i, a := range actions {
		if got[i].Action != a {
			t.Fatalf("event %d: expected %s, got %s", i, a, got[i].Action)
		}
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &memAuditRepo{}, zerolog.Nop())
	key := domain.AuditEvent{Entity: "user", EntityID: 3}.ShardKey()

	first := d.shardIndex(key)
	for i := 0; i < 10; i++ {
		if d.shardIndex(key) != first {
			t.Fatalf("shard index is not deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &memAuditRepo{block: make(chan struct{})}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Record(domain.AuditEvent{Action: domain.AuditBookCreated, Entity: "book", EntityID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	close(repo.block)
	cancel()
	d.Wait()
	if n := len(repo.snapshot()); n > channelBuffer+1 {
		t.Fatalf("expected overflow to be dropped, stored %d", n)
	}
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &memAuditRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
