package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/closedigit/bookstore-api/internal/api/metrics"
	"github.com/closedigit/bookstore-api/internal/core/domain"
	"github.com/closedigit/bookstore-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher persists audit events on a fixed set of workers, sharded by
// consistent hashing on the entity key so that events for one entity are
// stored in the order they were recorded.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after storing whatever is still buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an event on the worker responsible for its entity. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.ShardKey())
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("action", string(event.Action)).
			Str("entity", event.ShardKey()).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps an entity key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.store(ctx, id, event)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-ch:
			d.store(ctx, id, event)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) store(ctx context.Context, id int, event domain.AuditEvent) {
	start := time.Now()
	err := d.repo.Insert(ctx, &event)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("entity", event.ShardKey()).
			Int("worker_id", id).
			Msg("audit event persistence failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
}
