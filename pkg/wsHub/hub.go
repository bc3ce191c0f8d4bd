package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/google/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub хранит и управляет всеми активными WebSocket соединениями
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a connection. A connection with the same id is closed and replaced.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.id]; ok {
		h.l.Warn(ctx, "replacing existing connection", "client_id", existing.id)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "client_id", existing.id, "err", err.Error())
		}
		h.wg.Done()
	}

	h.clients[newConn.id] = newConn
	h.wg.Add(1)

	return nil
}

// Delete удаляет и закрывает соединение по ID
func (h *ConnectionHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := h.clients[id]
	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Debug(ctx, "failed to close conn", "client_id", conn.id, "err", err.Error())
	}

	delete(h.clients, id)
	h.wg.Done()

	return nil
}

// SendTo sends msg to one client. Returns ErrConnIsNotFound for an unknown id.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	conn, err := h.GetConn(id)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

// Broadcast sends msg to every client. Clients that fail to receive it are
// dropped. Returns the number of clients that got the message.
func (h *ConnectionHub) Broadcast(msg any) int {
	ctx := wrap.WithAction(context.Background(), "ws_broadcast")

	delivered := 0
	for id, conn := range h.Clients() {
		if err := conn.Send(msg); err != nil {
			h.l.Warn(ctx, "dropping unreachable client", "client_id", id, "err", err.Error())
			_ = h.Delete(id)
			continue
		}
		delivered++
	}
	return delivered
}

// Ping checks every client with a ping frame and drops the ones that fail.
// Returns the number of live clients.
func (h *ConnectionHub) Ping() int {
	ctx := wrap.WithAction(context.Background(), "ws_ping")

	alive := 0
	for id, conn := range h.Clients() {
		if err := conn.Health(); err != nil {
			h.l.Debug(ctx, "dropping dead client", "client_id", id, "err", err.Error())
			_ = h.Delete(id)
			continue
		}
		alive++
	}
	return alive
}

// KeepAlive pings the clients every interval until ctx is done.
func (h *ConnectionHub) KeepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Ping()
		}
	}
}

// Close закрывает каждое websocket соединение
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	for id := range h.Clients() {
		_ = h.Delete(id)
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// Clients возвращает копию списка клиентов
func (h *ConnectionHub) Clients() map[uuid.UUID]*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	copyMap := make(map[uuid.UUID]*Conn, len(h.clients))
	for id, conn := range h.clients {
		copyMap[id] = conn
	}
	return copyMap
}

// GetConn возвращает нужное соединение по UUID
func (h *ConnectionHub) GetConn(id uuid.UUID) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}

func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
