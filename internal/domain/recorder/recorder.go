package recorder

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/questx-lab/luckydraw/config"
	"github.com/questx-lab/luckydraw/internal/client"
	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/pkg/pubsub"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

// Queue accepts records for delivery without blocking the caller.
type Queue interface {
	Enqueue(ctx context.Context, record draw.DrawRecord) bool
}

type nopQueue struct{}

// NewNopQueue returns a queue discarding every record, used when no remote
// recorder is configured.
func NewNopQueue() Queue {
	return nopQueue{}
}

func (nopQueue) Enqueue(context.Context, draw.DrawRecord) bool {
	return true
}

// AsyncRecorder delivers records in background workers. A full queue drops the
// record instead of waiting.
type AsyncRecorder struct {
	recorder   client.DrawRecorder
	queue      chan draw.DrawRecord
	workers    int
	maxRetries int
	backoff    time.Duration

	wg sync.WaitGroup
}

func NewAsyncRecorder(recorder client.DrawRecorder, cfg config.RecorderConfigs) *AsyncRecorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &AsyncRecorder{
		recorder:   recorder,
		queue:      make(chan draw.DrawRecord, cfg.QueueSize),
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}
}

func (r *AsyncRecorder) Enqueue(ctx context.Context, record draw.DrawRecord) bool {
	select {
	case r.queue <- record:
		return true
	default:
		xcontext.Logger(ctx).Warnf("Drop draw record %s of user %s: queue is full", record.ID, record.UserID)
		common.PromCounters[common.DrawRecordDroppedTotal].WithLabelValues("queue_full").Inc()
		return false
	}
}

// Run starts the workers and blocks until ctx is done. Records still queued at
// that time are not delivered.
func (r *AsyncRecorder) Run(ctx context.Context) error {
	xcontext.Logger(ctx).Infof("Draw recorder started with %d workers", r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case record := <-r.queue:
					deliver(ctx, r.recorder, record, r.maxRetries, r.backoff)
				}
			}
		}()
	}

	r.wg.Wait()

	if n := len(r.queue); n > 0 {
		xcontext.Logger(ctx).Warnf("Draw recorder stopped with %d undelivered records", n)
		common.PromCounters[common.DrawRecordDroppedTotal].WithLabelValues("shutdown").Add(float64(n))
	} else {
		xcontext.Logger(ctx).Infof("Draw recorder stopped")
	}

	return nil
}

// deliver tries the record up to maxRetries+1 times, doubling the wait between
// attempts. It reports whether the record was delivered.
func deliver(
	ctx context.Context,
	recorder client.DrawRecorder,
	record draw.DrawRecord,
	maxRetries int,
	backoff time.Duration,
) bool {
	wait := backoff
	for attempt := 0; ; attempt++ {
		err := recorder.Record(ctx, record)
		if err == nil {
			return true
		}

		if attempt >= maxRetries {
			xcontext.Logger(ctx).Errorf("Cannot record draw %s after %d attempts: %v", record.ID, attempt+1, err)
			common.PromCounters[common.DrawRecordDroppedTotal].WithLabelValues("retries_exhausted").Inc()
			return false
		}

		xcontext.Logger(ctx).Warnf("Cannot record draw %s, retry in %s: %v", record.ID, wait, err)
		select {
		case <-ctx.Done():
			common.PromCounters[common.DrawRecordDroppedTotal].WithLabelValues("shutdown").Inc()
			return false
		case <-time.After(wait):
		}
		wait *= 2
	}
}

// Forwarder moves records published on the message queue to the remote
// recorder.
type Forwarder struct {
	recorder   client.DrawRecorder
	maxRetries int
	backoff    time.Duration
}

func NewForwarder(recorder client.DrawRecorder, cfg config.RecorderConfigs) *Forwarder {
	return &Forwarder{
		recorder:   recorder,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}
}

var _ pubsub.SubscribeHandler = (&Forwarder{}).Subscribe

func (f *Forwarder) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var record draw.DrawRecord
	if err := json.Unmarshal(pack.Msg, &record); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal draw record: %v", err)
		common.PromCounters[common.DrawRecordDroppedTotal].WithLabelValues("invalid").Inc()
		return
	}

	deliver(ctx, f.recorder, record, f.maxRetries, f.backoff)
}
