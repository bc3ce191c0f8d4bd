package sbs

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

func TestReader_DecodesStream(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte(positionLine + "\r\ngarbage\r\n" + velocityLine + "\r\n"))
		time.Sleep(time.Second)
	}()

	got := make(chan models.PositionMessage, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewReader(ln.Addr().String(), 10*time.Millisecond, logger.Discard())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(_ context.Context, msg models.PositionMessage) error {
			got <- msg
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-got:
			if msg.IcaoAddress != "4CA7B5" {
				t.Fatalf("unexpected message %+v", msg)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of 2 messages", i)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestReader_StopsWhileUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := NewReader(addr, 20*time.Millisecond, logger.Discard())
	if err := r.Run(ctx, func(context.Context, models.PositionMessage) error { return nil }); err != nil {
		t.Fatalf("run: %v", err)
	}
}
