package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"treblle-hq/relay/pkg/audit"
	"treblle-hq/relay/pkg/config"
	"treblle-hq/relay/pkg/dispatch"
	"treblle-hq/relay/pkg/payload"
	"treblle-hq/relay/pkg/telemetry/logging"
	"treblle-hq/relay/pkg/telemetry/metrics"
	"treblle-hq/relay/pkg/transport"
)

// Middleware observes requests flowing through a net/http handler chain and
// dispatches one telemetry payload per observed exchange.
type Middleware struct {
	cfg        *config.Config
	builder    *payload.Builder
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Collector
	logger     *logging.Logger
	audit      *audit.Store
	retention  *audit.Scheduler
	stopRetain context.CancelFunc
}

// New builds a fully wired Middleware from cfg: logger, metrics collector,
// native transport, optional audit store, and dispatcher. cfg must pass
// Validate.
func New(cfg *config.Config) (*Middleware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		RedactKeys: cfg.MaskedFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("middleware: logger: %w", err)
	}

	collector := metrics.NewCollector(&cfg.Metrics, nil)

	var (
		store      *audit.Store
		sink       dispatch.Sink
		retention  *audit.Scheduler
		stopRetain context.CancelFunc
	)
	if cfg.Audit.Enabled {
		store, err = NewAuditStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		sink = store

		retention = audit.NewScheduler(store, &cfg.Audit, logger)
		var ctx context.Context
		ctx, stopRetain = context.WithCancel(context.Background())
		if err := retention.Start(ctx); err != nil {
			stopRetain()
			store.Close()
			return nil, err
		}
	}

	d := dispatch.New(
		cfg.PrimaryURL(),
		transport.NewNative(cfg.Transport, cfg.APIKey),
		logger,
		dispatch.Options{Metrics: collector, Sink: sink},
	)

	return &Middleware{
		cfg:        cfg,
		builder:    payload.NewBuilder(cfg),
		dispatcher: d,
		metrics:    collector,
		logger:     logger,
		audit:      store,
		retention:  retention,
		stopRetain: stopRetain,
	}, nil
}

// NewAuditStore opens the audit store described by cfg. Split out so tests
// and custom wirings can build one without the rest of the middleware.
func NewAuditStore(cfg *config.Config, logger *logging.Logger) (*audit.Store, error) {
	return audit.NewStore(&cfg.Audit, logger)
}

// NewWithDispatcher builds a Middleware around an externally constructed
// dispatcher. Hosts use this to swap in the constrained transport or a
// shared metrics registry.
func NewWithDispatcher(cfg *config.Config, d *dispatch.Dispatcher, logger *logging.Logger, collector *metrics.Collector) (*Middleware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Middleware{
		cfg:        cfg,
		builder:    payload.NewBuilder(cfg),
		dispatcher: d,
		metrics:    collector,
		logger:     logger,
	}, nil
}

// Handler wraps next with request observation. The wrapped handler always
// runs; observation failures only show up in logs and counters.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cfg.IgnoredRoutes().IsIgnored(r.URL.Path) {
			m.metrics.RecordObservation(metrics.OutcomeIgnored)
			next.ServeHTTP(w, r)
			return
		}

		reqBody := m.captureRequestBody(r)
		x := newHTTPExtractor(r, reqBody, m.cfg.ForwardRawBodies, m.builder.Engine())
		rec := newResponseRecorder(w)

		start := time.Now()
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		x.finish(rec)

		p, err := m.builder.Build(x, duration)
		if err != nil {
			m.metrics.RecordObservation(metrics.OutcomeBuildFailed)
			m.logger.Warn("payload build failed", "error", err, "method", r.Method)
			return
		}

		m.metrics.RecordObservation(metrics.OutcomeDispatched)
		m.dispatcher.Dispatch(r.Context(), p)
	})
}

// Counters exposes the dispatcher totals for host health endpoints.
func (m *Middleware) Counters() dispatch.Counters {
	return m.dispatcher.Counters()
}

// MetricsHandler exposes the Prometheus endpoint for this middleware's
// collector.
func (m *Middleware) MetricsHandler() http.Handler {
	return m.metrics.Handler()
}

// AuditStore returns the audit store when auditing is enabled, nil
// otherwise. Hosts use it to query dispatch outcomes or prune on their own
// schedule.
func (m *Middleware) AuditStore() *audit.Store {
	return m.audit
}

// Close flushes in-flight deliveries, stops retention pruning, and releases
// the audit store.
func (m *Middleware) Close() error {
	err := m.dispatcher.Close()
	if m.retention != nil {
		m.retention.Stop()
		m.stopRetain()
	}
	if m.audit != nil {
		if cerr := m.audit.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// captureRequestBody reads up to maxCapturedBody bytes of the request body
// for telemetry and restores the stream so the host handler sees every byte
// the client sent.
func (m *Middleware) captureRequestBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	captured, err := io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
	if err != nil {
		m.logger.Warn("request body capture failed", "error", err)
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(captured), r.Body))
		return nil
	}

	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(captured), r.Body))
	return captured
}
