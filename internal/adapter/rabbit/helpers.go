package rabbit

import (
	"errors"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
)

const (
	AircraftExchange       = "aircraft_topic"
	QueueAircraftPositions = "aircraft_positions"
	PositionRoutingKeyFmt  = "aircraft.position.%s"
	PositionBindingKey     = "aircraft.position.*"

	reconnectDelay    = 2 * time.Second
	publishAttempts   = 3
	publishRetryDelay = 500 * time.Millisecond
)

// isRecoverableError returns true if the provided error must be requeued
func isRecoverableError(err error) bool {
	return oneOf(err, types.ErrDatabaseFailed)
}

// isSettledError returns true for errors after which the message is done with
// and only needs an ack.
func isSettledError(err error) bool {
	return oneOf(err, types.ErrOutdated, types.ErrMissingAttributes)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func retry(n int, sleep time.Duration, fn func() error) error {
	var err error
	for i := range n {
		if err = fn(); err == nil {
			return nil
		}
		if i < n-1 {
			time.Sleep(sleep)
		}
	}
	return err
}
