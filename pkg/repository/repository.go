package repository

import (
	"context"

	"github.com/strikenet/strikenet/pkg/models"
)

// Repository interfaces for domain entities. These are the public
// contracts consumers should depend on; concrete implementations live
// under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SightingRepo offers the row operations the endpoints need: create,
// point read, the three list selections, and the single-field
// verification update. Point reads return (nil, nil) when no row
// matches. Every list returns rows ordered by reportedAt descending.
type SightingRepo interface {
	CreateSighting(ctx context.Context, ns *models.NewSighting) (*models.Sighting, error)
	GetSighting(ctx context.Context, id string) (*models.Sighting, error)
	ListSightings(ctx context.Context) ([]models.Sighting, error)
	ListSightingsBySpecies(ctx context.Context, species string) ([]models.Sighting, error)
	ListSightingsInBounds(ctx context.Context, b models.Bounds) ([]models.Sighting, error)
	UpdateSightingVerification(ctx context.Context, id, status string) (*models.Sighting, error)
}
