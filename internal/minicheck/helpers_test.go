package minicheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"testing"

	"github.com/lucera/minicheck/internal/platform/errs"
)

var errNoSuchHost = errors.New("no such host")

// stubResolver answers A lookups from a fixed table.
type stubResolver struct {
	mu    sync.Mutex
	hosts map[string][]string
	calls int
}

func (s *stubResolver) LookupNetIP(_ context.Context, _ string, host string) ([]netip.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	raw, ok := s.hosts[host]
	if !ok {
		return nil, errNoSuchHost
	}
	addrs := make([]netip.Addr, 0, len(raw))
	for _, r := range raw {
		addrs = append(addrs, netip.MustParseAddr(r))
	}
	return addrs, nil
}

func newTestResolver() *stubResolver {
	return &stubResolver{hosts: map[string][]string{
		"clinic.example":     {"93.184.216.34"},
		"www.clinic.example": {"93.184.216.35"},
		"hop.example":        {"93.184.216.36"},
		"internal.example":   {"10.0.0.5"},
		"mixed.example":      {"93.184.216.37", "192.168.1.10"},
		"empty.example":      {},
	}}
}

// blockingResolver never answers until the lookup context ends.
type blockingResolver struct{}

func (blockingResolver) LookupNetIP(ctx context.Context, _ string, _ string) ([]netip.Addr, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// reply is one scripted HTTP response.
type reply struct {
	status      int
	location    string
	contentType string
	body        string
}

func htmlReply(body string) reply {
	return reply{status: http.StatusOK, contentType: "text/html; charset=utf-8", body: body}
}

func redirectTo(location string) reply {
	return reply{status: http.StatusMovedPermanently, location: location}
}

// scriptedTransport serves replies keyed by full URL and records every
// request it sees.
type scriptedTransport struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []*http.Request
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	r, ok := s.replies[req.URL.String()]
	s.mu.Unlock()

	if !ok {
		r = reply{status: http.StatusNotFound, contentType: "text/html"}
	}

	header := make(http.Header)
	if r.location != "" {
		header.Set("Location", r.location)
	}
	if r.contentType != "" {
		header.Set("Content-Type", r.contentType)
	}

	return &http.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Request:    req,
	}, nil
}

func (s *scriptedTransport) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		urls = append(urls, r.URL.String())
	}
	return urls
}

// blockingTransport never answers until the request context ends.
type blockingTransport struct{}

func (blockingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

// failingTransport fails every request with err.
type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func requireAppError(t *testing.T, err error, kind errs.Kind, cause error) *errs.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *errs.AppError, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Errorf("Kind = %s, want %s", appErr.Kind, kind)
	}
	if cause != nil && !errors.Is(err, cause) {
		t.Errorf("error %v does not wrap %v", err, cause)
	}
	return appErr
}
