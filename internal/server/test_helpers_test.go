package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-buzzer/internal/config"
	"quiz-buzzer/internal/game"

	"github.com/jonboulle/clockwork"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

// fixedCodes hands out codes in order, then falls back to random ones.
func fixedCodes(codes ...string) func() string {
	next := 0
	fallback := game.NewCodeGenerator(game.DefaultCodeLength)
	return func() string {
		if next < len(codes) {
			code := codes[next]
			next++
			return code
		}
		return fallback()
	}
}

func newTestStore(t *testing.T, codes ...string) (*game.Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := game.NewStore(
		game.WithClock(clock),
		game.WithCodeGenerator(fixedCodes(codes...)),
	)
	return store, clock
}

func newTestApp(t *testing.T, codes ...string) (*Server, *httptest.Server) {
	t.Helper()
	store, _ := newTestStore(t, codes...)
	srv := New(store, nil, config.Default())
	return srv, newTestServer(t, srv.Handler())
}
