package ports

import (
	"context"

	"github.com/aretw0/paddock/pkg/domain"
)

// DriverSource is the read side of the racing-statistics API.
// Both calls are idempotent and free of side effects beyond the request.
// Errors should implement domain.UserMessager when a display message is known.
type DriverSource interface {
	FetchDriversList(ctx context.Context) ([]domain.Driver, error)
	FetchDriverStandingsList(ctx context.Context) ([]domain.DriverStanding, error)
}
