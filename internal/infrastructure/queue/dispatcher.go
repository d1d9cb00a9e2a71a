package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/roombook/identity-system/internal/api/metrics"
	"github.com/roombook/identity-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher fans audit events out to a fixed set of workers using
// consistent hashing on the subject id, guaranteeing per-identity event
// ordering while keeping audit logging off the request hot path.
type AuditDispatcher struct {
	workers []chan ports.AuditEvent
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan ports.AuditEvent, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record implements ports.AuditSink. Events for the same subject always land
// on the same worker, preserving per-actor ordering. Blocks only when the
// worker channel is full.
func (d *AuditDispatcher) Record(event ports.AuditEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	idx := d.shardIndex(event)
	d.workers[idx] <- event
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps an event deterministically to a worker. Unauthenticated
// events (failed logins) shard by email instead of subject id.
func (d *AuditDispatcher) shardIndex(event ports.AuditEvent) int {
	key := event.SubjectID
	if key == "" {
		key = event.Email
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditEventsTotal.WithLabelValues(string(event.Kind)).Inc()
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			d.log.Info().
				Str("kind", string(event.Kind)).
				Str("subject_id", event.SubjectID).
				Str("actor_id", event.ActorID).
				Str("email", event.Email).
				Time("at", event.At).
				Int("worker_id", id).
				Msg("audit event")
		}
	}
}
