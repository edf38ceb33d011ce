package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"treblle-hq/relay/pkg/schema"
	"treblle-hq/relay/pkg/telemetry/logging"
	"treblle-hq/relay/pkg/transport"
)

// fakeTransport records sends and returns a scripted result.
type fakeTransport struct {
	mu     sync.Mutex
	sends  int
	bodies [][]byte
	urls   []string

	status int
	err    error
	delay  time.Duration
}

func (f *fakeTransport) Send(ctx context.Context, baseURL string, body []byte) (int, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	f.bodies = append(f.bodies, body)
	f.urls = append(f.urls, baseURL)
	return f.status, f.err
}

func (f *fakeTransport) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

type fakeSink struct {
	mu   sync.Mutex
	recs []Record
}

func (s *fakeSink) RecordDispatch(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *fakeSink) records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.recs...)
}

func testPayload() *schema.TrebllePayload {
	p := schema.NewPayload("key", "project")
	p.Data.Request.Method = "GET"
	p.Data.Request.URL = "https://api.example.com/users"
	return p
}

func TestDispatcher_SendsToEndpoint(t *testing.T) {
	ft := &fakeTransport{status: 200}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{})

	d.Dispatch(context.Background(), testPayload())
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got := ft.sendCount(); got != 1 {
		t.Fatalf("sends = %d, want exactly 1", got)
	}
	if ft.urls[0] != "https://rocknrolla.treblle.com" {
		t.Errorf("endpoint = %q", ft.urls[0])
	}

	c := d.Counters()
	if c.Dispatched != 1 || c.Sent != 1 || c.Failed != 0 {
		t.Errorf("counters = %+v, want 1 dispatched, 1 sent", c)
	}
}

func TestDispatcher_FailureNeverPropagates(t *testing.T) {
	ft := &fakeTransport{err: &transport.Error{Kind: transport.KindConnectFailed}}
	d := New("https://punisher.treblle.com", ft, logging.Discard(), Options{})

	// Dispatch has no error return; the only observable effect of a
	// transport failure is the failed counter.
	d.Dispatch(context.Background(), testPayload())
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	c := d.Counters()
	if c.Failed != 1 || c.Sent != 0 {
		t.Errorf("counters = %+v, want 1 failed", c)
	}
}

func TestDispatcher_NonSuccessStatusCountsAsFailed(t *testing.T) {
	ft := &fakeTransport{status: 403}
	sink := &fakeSink{}
	d := New("https://sicario.treblle.com", ft, logging.Discard(), Options{Sink: sink})

	d.Dispatch(context.Background(), testPayload())
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if c := d.Counters(); c.Failed != 1 {
		t.Errorf("counters = %+v, want 1 failed", c)
	}

	recs := sink.records()
	if len(recs) != 1 {
		t.Fatalf("sink records = %d, want 1", len(recs))
	}
	if recs[0].Status != 403 {
		t.Errorf("record status = %d, want 403", recs[0].Status)
	}
	if recs[0].ErrorKind != "non_success_status" {
		t.Errorf("record kind = %q, want non_success_status", recs[0].ErrorKind)
	}
}

func TestDispatcher_SurvivesRequestCancellation(t *testing.T) {
	ft := &fakeTransport{status: 200, delay: 50 * time.Millisecond}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, testPayload())
	cancel() // observed request ends before delivery completes

	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if c := d.Counters(); c.Sent != 1 {
		t.Errorf("counters = %+v, want delivery to complete despite cancellation", c)
	}
}

func TestDispatcher_Synchronous(t *testing.T) {
	ft := &fakeTransport{status: 200}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{Synchronous: true})

	d.Dispatch(context.Background(), testPayload())

	// No Flush needed: the send completed before Dispatch returned.
	if got := ft.sendCount(); got != 1 {
		t.Fatalf("sends = %d, want 1", got)
	}
	if c := d.Counters(); c.Sent != 1 {
		t.Errorf("counters = %+v, want 1 sent", c)
	}
}

func TestDispatcher_CloseRejectsNewPayloads(t *testing.T) {
	ft := &fakeTransport{status: 200}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{})

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	d.Dispatch(context.Background(), testPayload())

	if got := ft.sendCount(); got != 0 {
		t.Errorf("sends after Close = %d, want 0", got)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	ft := &fakeTransport{status: 200}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), testPayload())
		}()
	}
	wg.Wait()

	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if c := d.Counters(); c.Sent != n {
		t.Errorf("sent = %d, want %d", c.Sent, n)
	}
}

func TestDispatcher_FlushHonorsContext(t *testing.T) {
	ft := &fakeTransport{status: 200, delay: time.Second}
	d := New("https://rocknrolla.treblle.com", ft, logging.Discard(), Options{})

	d.Dispatch(context.Background(), testPayload())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Flush(ctx); err == nil {
		t.Error("Flush() = nil, want context error while delivery in flight")
	}

	// Drain so the goroutine does not outlive the test.
	_ = d.Flush(context.Background())
}
