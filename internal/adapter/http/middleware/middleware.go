package middleware

import (
	"context"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

type (
	TokenValidator interface {
		Validate(ctx context.Context, token string) (*models.Feeder, error)
	}

	Middleware struct {
		auth TokenValidator
		log  logger.Logger
	}
)

// NewMiddleware creates the shared middleware set. auth may be nil for
// services that expose no protected routes.
func NewMiddleware(auth TokenValidator, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
