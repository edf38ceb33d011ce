package dispatch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"treblle-hq/relay/pkg/schema"
	"treblle-hq/relay/pkg/telemetry/logging"
	"treblle-hq/relay/pkg/telemetry/metrics"
	"treblle-hq/relay/pkg/transport"

	"github.com/google/uuid"
)

// State tracks a single delivery through its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateSending
	StateSent
	StateFailed
)

// String returns the state's log label.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Counters is a point-in-time snapshot of dispatcher totals.
type Counters struct {
	Dispatched uint64
	Sent       uint64
	Failed     uint64
}

// Record describes one completed delivery, successful or not. It is what
// the dispatcher hands to an audit sink.
type Record struct {
	ID           string
	Endpoint     string
	Status       int
	ErrorKind    string
	PayloadBytes int
	Duration     time.Duration
	CompletedAt  time.Time
}

// Sink receives completed delivery records. Implementations must not
// block for long; the dispatcher calls them on the delivery goroutine.
type Sink interface {
	RecordDispatch(rec Record)
}

// Options configures a Dispatcher beyond its required dependencies.
type Options struct {
	// Synchronous makes Dispatch block until the transport completes.
	// Hosts that cannot background work (single-threaded embeddings)
	// set this; everyone else leaves it false.
	Synchronous bool

	// Metrics receives dispatch counters and timings. Nil disables
	// recording.
	Metrics *metrics.Collector

	// Sink receives completed delivery records. Nil disables auditing.
	Sink Sink
}

// Dispatcher owns payload delivery. It is safe for concurrent use and
// never propagates delivery failures to callers.
type Dispatcher struct {
	transport transport.Transport
	endpoint  string
	logger    *logging.Logger
	metrics   *metrics.Collector
	sink      Sink
	sync      bool

	wg     sync.WaitGroup
	closed atomic.Bool

	dispatched atomic.Uint64
	sent       atomic.Uint64
	failed     atomic.Uint64
}

// New creates a dispatcher that delivers to endpoint via t. logger must
// not be nil; use logging.Discard() to silence it.
func New(endpoint string, t transport.Transport, logger *logging.Logger, opts Options) *Dispatcher {
	return &Dispatcher{
		transport: t,
		endpoint:  endpoint,
		logger:    logger,
		metrics:   opts.Metrics,
		sink:      opts.Sink,
		sync:      opts.Synchronous,
	}
}

// Dispatch serializes the payload and hands it to the transport. It never
// returns an error: serialization failures are logged and dropped, and
// delivery failures are absorbed by the delivery goroutine. After Close,
// Dispatch is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *schema.TrebllePayload) {
	if d.closed.Load() {
		return
	}

	body, err := payload.ToJSON()
	if err != nil {
		d.logger.Error("payload serialization failed", "error", err)
		return
	}

	d.dispatched.Add(1)
	d.metrics.RecordPayloadSize(len(body))

	del := &delivery{
		id:   uuid.NewString(),
		body: body,
	}

	if d.sync {
		d.deliver(ctx, del)
		return
	}

	// The delivery must survive the observed request's cancellation, so
	// it runs on a detached context.
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(detached, del)
	}()
}

// Counters returns a snapshot of dispatcher totals.
func (d *Dispatcher) Counters() Counters {
	return Counters{
		Dispatched: d.dispatched.Load(),
		Sent:       d.sent.Load(),
		Failed:     d.failed.Load(),
	}
}

// Flush blocks until all in-flight deliveries complete or ctx is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new payloads and waits briefly for in-flight
// deliveries. It is safe to call more than once.
func (d *Dispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Flush(ctx)
}

type delivery struct {
	id    string
	body  []byte
	state atomic.Int32
}

func (del *delivery) transition(from, to State) bool {
	return del.state.CompareAndSwap(int32(from), int32(to))
}

// deliver runs the delivery state machine for a single payload. Exactly
// one transport attempt is made; there are no retries and no fallback
// endpoints.
func (d *Dispatcher) deliver(ctx context.Context, del *delivery) {
	if !del.transition(StateIdle, StateSending) {
		return
	}

	start := time.Now()
	status, err := d.transport.Send(ctx, d.endpoint, del.body)
	elapsed := time.Since(start)

	if err == nil && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		err = &transport.Error{Kind: transport.KindNonSuccessStatus, Status: status}
	}

	rec := Record{
		ID:           del.id,
		Endpoint:     d.endpoint,
		Status:       status,
		PayloadBytes: len(del.body),
		Duration:     elapsed,
		CompletedAt:  time.Now().UTC(),
	}

	if err != nil {
		del.transition(StateSending, StateFailed)
		d.failed.Add(1)

		rec.ErrorKind = errorKind(err)
		d.metrics.RecordDispatch(rec.ErrorKind, elapsed)
		d.logger.Warn("dispatch failed",
			"delivery_id", del.id,
			"endpoint", d.endpoint,
			"kind", rec.ErrorKind,
			"status", status,
			"error", err,
		)
	} else {
		del.transition(StateSending, StateSent)
		d.sent.Add(1)

		d.metrics.RecordDispatch(metrics.ResultSent, elapsed)
		d.logger.Debug("dispatch complete",
			"delivery_id", del.id,
			"endpoint", d.endpoint,
			"status", status,
			"bytes", len(del.body),
			"duration", elapsed,
		)
	}

	if d.sink != nil {
		d.sink.RecordDispatch(rec)
	}
}

func errorKind(err error) string {
	var te *transport.Error
	if errors.As(err, &te) {
		return te.Kind.String()
	}
	return "unknown"
}
