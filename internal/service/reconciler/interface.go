package reconciler

import (
	"context"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
)

// Surface is the overlay the reconciler drives. Handles it returns are owned
// by the reconciler until Remove is called for them.
type Surface interface {
	Create(ctx context.Context, label string, pos models.Position, heading float64) (models.Handle, error)
	Update(ctx context.Context, handle models.Handle, pos models.Position, heading float64) error
	Remove(ctx context.Context, handle models.Handle) error
}
