package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/albumgrid/internal/chart"
	"github.com/jfmyers9/albumgrid/internal/history"
	"github.com/jfmyers9/albumgrid/internal/metrics"
	"github.com/jfmyers9/albumgrid/pkg/lastfm"
)

type fakeGenerator struct {
	mu     sync.Mutex
	result *chart.Result
	err    error
	reqs   []chart.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req chart.Request) (*chart.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
	err     error
}

func (r *fakeRecorder) Add(_ context.Context, e history.Entry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.entries = append(r.entries, e)
	return "id", nil
}

var testJPEG = []byte{0xff, 0xd8, 0xff, 0xd9}

func newTestServer(t *testing.T, gen Generator, opts ...Option) *httptest.Server {
	t.Helper()
	s := New(Config{User: "rj", Expiration: time.Hour}, gen, zerolog.Nop(), opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestServer_Index(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp, body := get(t, srv.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "Hello world!" {
		t.Errorf("body = %q, want Hello world!", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("got %d %q, want 200 ok", resp.StatusCode, body)
	}
}

func TestServer_Chart(t *testing.T) {
	gen := &fakeGenerator{result: &chart.Result{JPEG: testJPEG, Albums: 9, Placeholders: 1, Duration: time.Second}}
	rec := &fakeRecorder{}
	srv := newTestServer(t, gen, WithRecorder(rec))

	resp, body := get(t, srv.URL+"/api/Week/3X3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", resp.StatusCode, body)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if age := resp.Header.Get("Age"); age != "0" {
		t.Errorf("Age = %q, want 0", age)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600, must-revalidate" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if body != string(testJPEG) {
		t.Errorf("body = %x, want %x", body, testJPEG)
	}

	if len(gen.reqs) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.reqs))
	}
	want := chart.Request{User: "rj", Period: chart.PeriodWeek, Shape: chart.Shape{Columns: 3, Rows: 3}}
	if gen.reqs[0] != want {
		t.Errorf("request = %+v, want %+v", gen.reqs[0], want)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("recorded %d charts, want 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.User != "rj" || e.Period != "week" || e.Shape != "3x3" || e.Albums != 9 || e.Placeholders != 1 || e.Bytes != len(testJPEG) {
		t.Errorf("recorded entry = %+v", e)
	}
}

func TestServer_ChartBadRequest(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{name: "unknown period", path: "/api/day/3x3", contains: "invalid chart period"},
		{name: "bad shape", path: "/api/week/3by3", contains: "invalid chart shape"},
		{name: "shape with suffix", path: "/api/week/3x3junk", contains: "invalid chart shape"},
		{name: "zero shape", path: "/api/month/0x3", contains: "invalid chart shape"},
		{name: "overflowing shape", path: "/api/week/4294967296x4294967296", contains: "invalid chart shape"},
		{name: "negative product shape", path: "/api/week/4611686018427387904x3", contains: "invalid chart shape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{result: &chart.Result{JPEG: testJPEG}}
			srv := newTestServer(t, gen)

			resp, body := get(t, srv.URL+tt.path)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", ct)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body %q does not contain %q", body, tt.contains)
			}
			if len(gen.reqs) != 0 {
				t.Error("generator should not run for a bad request")
			}
		})
	}
}

func TestServer_ChartErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantLabel  string
	}{
		{
			name:       "too many tiles",
			err:        errors.Join(chart.ErrInvalidShape, errors.New("limit")),
			wantStatus: http.StatusBadRequest,
			wantLabel:  "client_error",
		},
		{
			name:       "upstream failure",
			err:        errors.Join(chart.ErrUpstream, &lastfm.Error{Code: lastfm.ErrCodeInvalidAPIKey}),
			wantStatus: http.StatusBadGateway,
			wantLabel:  "upstream_error",
		},
		{
			name:       "malformed record",
			err:        chart.ErrMalformedRecord,
			wantStatus: http.StatusInternalServerError,
			wantLabel:  "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			rec := &fakeRecorder{}
			srv := newTestServer(t, &fakeGenerator{err: tt.err}, WithRecorder(rec), WithMetrics(m, prometheus.NewRegistry()))

			resp, _ := get(t, srv.URL+"/api/week/2x2")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := testutil.ToFloat64(m.ChartsRendered.WithLabelValues(tt.wantLabel)); got != 1 {
				t.Errorf("charts{status=%q} = %v, want 1", tt.wantLabel, got)
			}
			if len(rec.entries) != 0 {
				t.Error("failed charts should not be recorded")
			}
		})
	}
}

func TestServer_HistoryFailureStillServes(t *testing.T) {
	gen := &fakeGenerator{result: &chart.Result{JPEG: testJPEG}}
	srv := newTestServer(t, gen, WithRecorder(&fakeRecorder{err: errors.New("disk full")}))

	resp, _ := get(t, srv.URL+"/api/overall/1x1")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	for _, path := range []string{"/nope", "/api/week", "/api/week/3x3/extra"} {
		resp, _ := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestServer_RequestID(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want abc-123", RequestIDHeader, got)
	}

	a, _ := get(t, srv.URL+"/healthz")
	b, _ := get(t, srv.URL+"/healthz")
	if a.Header.Get(RequestIDHeader) == b.Header.Get(RequestIDHeader) {
		t.Error("expected distinct generated request ids")
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	gen := &fakeGenerator{result: &chart.Result{JPEG: testJPEG, Duration: time.Second}}
	srv := newTestServer(t, gen, WithMetrics(m, reg))

	get(t, srv.URL+"/api/year/2x2")

	if got := testutil.ToFloat64(m.ChartsRendered.WithLabelValues("success")); got != 1 {
		t.Errorf("charts{status=success} = %v, want 1", got)
	}

	resp, body := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	for _, name := range []string{"albumgrid_charts_total", "albumgrid_http_request_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := New(Config{User: "rj"}, &fakeGenerator{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()

	resp, body := get(t, "http://"+listener.Addr().String()+"/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("got %d %q, want 200 ok", resp.StatusCode, body)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
