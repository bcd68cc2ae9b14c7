package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

type hijackableRecorder struct {
	http.ResponseWriter
	hijacked bool
	err      error
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, h.err
}

func TestInstrumentPreservesHijacker(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry(), "test", nil)

	expectedErr := errors.New("hijack invoked")
	recorder := &hijackableRecorder{
		ResponseWriter: httptest.NewRecorder(),
		err:            expectedErr,
	}

	handlerCalled := false
	handler := m.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatalf("response writer should implement http.Hijacker")
		}
		if _, _, err := hj.Hijack(); !errors.Is(err, expectedErr) {
			t.Fatalf("unexpected hijack error: %v", err)
		}
	}))

	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if !handlerCalled {
		t.Fatal("inner handler was not invoked")
	}
	if !recorder.hijacked {
		t.Fatal("underlying Hijack was not called")
	}
}

func TestInstrumentAllowsWebsocketUpgrade(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry(), "test", nil)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	upgraded := make(chan error, 1)
	srv := httptest.NewServer(m.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		upgraded <- err
		if err == nil {
			conn.Close()
		}
	})))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("handshake through the instrumented handler failed: %v", err)
	}
	conn.Close()

	if err := <-upgraded; err != nil {
		t.Fatalf("server-side upgrade failed: %v", err)
	}
}
