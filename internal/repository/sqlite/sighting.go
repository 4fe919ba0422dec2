package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/strikenet/strikenet/pkg/models"
)

const sightingColumns = `id, species, latitude, longitude, quantity, description, image_url, ai_identification, is_verified, reported_at, user_agent`

func (r *SQLiteRepo) CreateSighting(ctx context.Context, ns *models.NewSighting) (*models.Sighting, error) {
	if ns == nil {
		return nil, fmt.Errorf("sighting is nil")
	}

	quantity := ns.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	s := &models.Sighting{
		ID:               uuid.NewString(),
		Species:          ns.Species,
		Latitude:         models.FormatCoord(ns.Latitude),
		Longitude:        models.FormatCoord(ns.Longitude),
		Quantity:         quantity,
		Description:      ns.Description,
		ImageURL:         ns.ImageURL,
		AIIdentification: ns.AIIdentification,
		IsVerified:       models.StatusPending,
		ReportedAt:       now(),
		UserAgent:        ns.UserAgent,
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO sightings (`+sightingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Species, s.Latitude, s.Longitude, s.Quantity,
		s.Description, s.ImageURL, s.AIIdentification,
		s.IsVerified, s.ReportedAt.UnixMicro(), s.UserAgent)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *SQLiteRepo) GetSighting(ctx context.Context, id string) (*models.Sighting, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+sightingColumns+` FROM sightings WHERE id = ?`, id)
	s, err := scanSighting(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return s, nil
}

func (r *SQLiteRepo) ListSightings(ctx context.Context) ([]models.Sighting, error) {
	return r.listSightings(ctx, `SELECT `+sightingColumns+` FROM sightings ORDER BY reported_at DESC, rowid DESC`)
}

func (r *SQLiteRepo) ListSightingsBySpecies(ctx context.Context, species string) ([]models.Sighting, error) {
	return r.listSightings(ctx,
		`SELECT `+sightingColumns+` FROM sightings WHERE species = ? ORDER BY reported_at DESC, rowid DESC`,
		species)
}

// ListSightingsInBounds returns sightings whose coordinates fall inside
// the rectangle, edges inclusive. Coordinates are stored as decimal
// text; the comparison casts them so the range check is numeric.
func (r *SQLiteRepo) ListSightingsInBounds(ctx context.Context, b models.Bounds) ([]models.Sighting, error) {
	return r.listSightings(ctx,
		`SELECT `+sightingColumns+` FROM sightings
		 WHERE CAST(latitude AS REAL) <= ? AND CAST(latitude AS REAL) >= ?
		   AND CAST(longitude AS REAL) <= ? AND CAST(longitude AS REAL) >= ?
		 ORDER BY reported_at DESC, rowid DESC`,
		b.NorthEast.Lat, b.SouthWest.Lat, b.NorthEast.Lng, b.SouthWest.Lng)
}

// UpdateSightingVerification sets is_verified and returns the updated
// row, or (nil, nil) when no sighting matches the id.
func (r *SQLiteRepo) UpdateSightingVerification(ctx context.Context, id, status string) (*models.Sighting, error) {
	res, err := r.conn.Exec(ctx, `UPDATE sightings SET is_verified = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetSighting(ctx, id)
}

func (r *SQLiteRepo) listSightings(ctx context.Context, query string, args ...any) ([]models.Sighting, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Sighting
	for rows.Next() {
		s, err := scanSighting(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *s)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSighting(row rowScanner) (*models.Sighting, error) {
	var s models.Sighting
	var description, imageURL, aiIdent, userAgent sql.NullString
	var reportedAt int64

	if err := row.Scan(&s.ID, &s.Species, &s.Latitude, &s.Longitude, &s.Quantity,
		&description, &imageURL, &aiIdent, &s.IsVerified, &reportedAt, &userAgent); err != nil {
		return nil, err
	}

	s.ReportedAt = time.UnixMicro(reportedAt).UTC()
	if description.Valid {
		s.Description = &description.String
	}
	if imageURL.Valid {
		s.ImageURL = &imageURL.String
	}
	if aiIdent.Valid {
		s.AIIdentification = &aiIdent.String
	}
	if userAgent.Valid {
		s.UserAgent = &userAgent.String
	}

	return &s, nil
}
