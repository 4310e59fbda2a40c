package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/albumkit/internal/ratelimit"
)

var (
	errMultipartNotSupported = errors.New("multipart not supported in mock")
	errMock                  = errors.New("mock error")
)

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

// mockHumaContext implements huma.Context for testing.
type mockHumaContext struct {
	headers         map[string]string
	responseHeaders map[string]string
	host            string
	remoteAddr      string
	written         []byte
	statusCode      int
	method          string
	operation       *huma.Operation
}

func newMockHumaContext() *mockHumaContext {
	return &mockHumaContext{
		headers:         make(map[string]string),
		responseHeaders: make(map[string]string),
		method:          "GET",
	}
}

func (m *mockHumaContext) Operation() *huma.Operation {
	return m.operation
}
func (m *mockHumaContext) Context() context.Context              { return context.Background() }
func (m *mockHumaContext) TLS() *tls.ConnectionState             { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion            { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                        { return m.method }
func (m *mockHumaContext) Host() string                          { return m.host }
func (m *mockHumaContext) RemoteAddr() string                    { return m.remoteAddr }
func (m *mockHumaContext) URL() url.URL                          { return url.URL{} }
func (m *mockHumaContext) Param(_ string) string                 { return "" }
func (m *mockHumaContext) Query(_ string) string                 { return "" }
func (m *mockHumaContext) Header(name string) string             { return m.headers[name] }
func (m *mockHumaContext) EachHeader(_ func(name, value string)) {}
func (m *mockHumaContext) BodyReader() io.Reader                 { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(code int)                { m.statusCode = code }
func (m *mockHumaContext) Status() int                       { return m.statusCode }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(name, value string)      { m.responseHeaders[name] = value }
func (m *mockHumaContext) BodyWriter() io.Writer             { return &mockBodyWriter{ctx: m} }

type mockBodyWriter struct {
	ctx *mockHumaContext
}

func (w *mockBodyWriter) Write(p []byte) (n int, err error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

// failingStore is a ratelimit.Store that always errors.
type failingStore struct{}

func (failingStore) Record(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, errMock
}

// capturingStore records the keys it was asked about.
type capturingStore struct {
	keys []string
}

func (c *capturingStore) Record(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.keys = append(c.keys, key)

	return 1, nil
}

// frozenScheduler never fires on its own; fire runs every pending timer.
type frozenScheduler struct {
	mu     sync.Mutex
	timers []*frozenTimer
}

type frozenTimer struct {
	fn      func()
	stopped bool
}

func (t *frozenTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true

	return was
}

func (s *frozenScheduler) AfterFunc(_ time.Duration, fn func()) ratelimit.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &frozenTimer{fn: fn}
	s.timers = append(s.timers, t)

	return t
}

func (s *frozenScheduler) fire() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}
