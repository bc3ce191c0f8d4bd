package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	pingWait  = 3 * time.Second
)

var ErrConnClosed = errors.New("connection closed")

type Conn struct {
	conn    *websocket.Conn
	id      uuid.UUID
	doneCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewConn wraps an upgraded websocket connection. The connection lives until
// ctx is cancelled or Close is called.
func NewConn(ctx context.Context, id uuid.UUID, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		conn:    conn,
		id:      id,
		doneCtx: ctx,
		cancel:  cancel,
	}
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

func (c *Conn) Health() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.healthLocked(); err != nil {
		return err
	}

	if err := c.conn.WriteControl(
		websocket.PingMessage,
		[]byte("ping"),
		time.Now().Add(pingWait),
	); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Conn) healthLocked() error {
	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return ErrConnClosed
	default:
	}
	return nil
}

// Send writes v as a JSON text frame.
func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.healthLocked(); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// Listen reads frames until the peer goes away or the connection is closed.
// Map clients only listen, so incoming frames are discarded.
func (c *Conn) Listen() error {
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			select {
			case <-c.doneCtx.Done():
				return ErrConnClosed
			default:
			}
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
