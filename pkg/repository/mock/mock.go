package mock

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/strikenet/strikenet/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo     *mockUserRepo
	SightingRepo *mockSightingRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:     &mockUserRepo{},
		SightingRepo: &mockSightingRepo{},
	}
}

type mockUserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Stored = &models.User{ID: uuid.NewString(), Username: u.Username, Password: u.Password}
	return m.Stored, nil
}

func (m *mockUserRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Username == username {
		return m.Stored, nil
	}
	return nil, nil
}

type mockSightingRepo struct {
	Stored    []models.Sighting
	CreateErr error
	ListErr   error
	UpdateErr error
}

func (m *mockSightingRepo) CreateSighting(ctx context.Context, ns *models.NewSighting) (*models.Sighting, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	quantity := ns.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	s := models.Sighting{
		ID:               uuid.NewString(),
		Species:          ns.Species,
		Latitude:         models.FormatCoord(ns.Latitude),
		Longitude:        models.FormatCoord(ns.Longitude),
		Quantity:         quantity,
		Description:      ns.Description,
		ImageURL:         ns.ImageURL,
		AIIdentification: ns.AIIdentification,
		IsVerified:       models.StatusPending,
		ReportedAt:       time.Now().UTC(),
		UserAgent:        ns.UserAgent,
	}
	// newest first
	m.Stored = append([]models.Sighting{s}, m.Stored...)
	return &s, nil
}

func (m *mockSightingRepo) GetSighting(ctx context.Context, id string) (*models.Sighting, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			s := m.Stored[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *mockSightingRepo) ListSightings(ctx context.Context) ([]models.Sighting, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Sighting, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *mockSightingRepo) ListSightingsBySpecies(ctx context.Context, species string) ([]models.Sighting, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.Sighting
	for _, s := range m.Stored {
		if s.Species == species {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSightingRepo) ListSightingsInBounds(ctx context.Context, b models.Bounds) ([]models.Sighting, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.Sighting
	for _, s := range m.Stored {
		lat, lng := parseCoord(s.Latitude), parseCoord(s.Longitude)
		if lat >= b.SouthWest.Lat && lat <= b.NorthEast.Lat && lng >= b.SouthWest.Lng && lng <= b.NorthEast.Lng {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSightingRepo) UpdateSightingVerification(ctx context.Context, id, status string) (*models.Sighting, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored[i].IsVerified = status
			s := m.Stored[i]
			return &s, nil
		}
	}
	return nil, nil
}

func parseCoord(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
