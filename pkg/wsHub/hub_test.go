package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *ConnectionHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), uuid.New(), c)
		if err := hub.Add(conn); err != nil {
			t.Errorf("add: %v", err)
			return
		}
		go func() {
			_ = conn.Listen()
			_ = hub.Delete(conn.ID())
		}()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := newTestServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 2 })

	if n := hub.Broadcast(map[string]string{"hello": "map"}); n != 2 {
		t.Fatalf("delivered to %d clients, want 2", n)
	}

	for _, c := range []*websocket.Conn{a, b} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got map[string]string
		if err := c.ReadJSON(&got); err != nil {
			t.Fatalf("read: %v", err)
		}
		if got["hello"] != "map" {
			t.Fatalf("unexpected message %v", got)
		}
	}
}

func TestHub_ClientDisconnectRemoves(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := newTestServer(t, hub)

	c := dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 1 })

	c.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestHub_PingDropsClosed(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := newTestServer(t, hub)

	dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 1 })

	if n := hub.Ping(); n != 1 {
		t.Fatalf("live clients = %d, want 1", n)
	}

	for _, conn := range hub.Clients() {
		_ = conn.Close()
	}
	if n := hub.Ping(); n != 0 {
		t.Fatalf("live clients = %d after close, want 0", n)
	}
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestHub_Close(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := newTestServer(t, hub)

	dial(t, srv)
	dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 2 })

	hub.Close()
	if hub.Len() != 0 {
		t.Fatalf("hub not empty after close")
	}
}

func TestHub_UnknownClient(t *testing.T) {
	hub := NewConnHub(logger.Discard())

	if err := hub.SendTo(uuid.New(), "x"); err != ErrConnIsNotFound {
		t.Fatalf("SendTo err = %v", err)
	}
	if err := hub.Delete(uuid.New()); err != ErrConnIsNotFound {
		t.Fatalf("Delete err = %v", err)
	}
	if err := hub.Add(nil); err != ErrEmptyConn {
		t.Fatalf("Add err = %v", err)
	}
}
