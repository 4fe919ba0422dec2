package models

import (
	"strconv"
	"time"
)

// The closed universe of reportable species: five named South Florida
// invasives plus a catch-all.
const (
	SpeciesLionfish       = "Lionfish"
	SpeciesWalkingCatfish = "Walking Catfish"
	SpeciesMayanCichlid   = "Mayan Cichlid"
	SpeciesGreenIguana    = "Green Iguana"
	SpeciesEgyptianGoose  = "Egyptian Goose"
	SpeciesOther          = "Other"
)

// SpeciesList enumerates every accepted species value, in display order.
var SpeciesList = []string{
	SpeciesLionfish,
	SpeciesWalkingCatfish,
	SpeciesMayanCichlid,
	SpeciesGreenIguana,
	SpeciesEgyptianGoose,
	SpeciesOther,
}

// ValidSpecies reports whether s is an exact (case-sensitive) member of
// the species universe.
func ValidSpecies(s string) bool {
	for _, v := range SpeciesList {
		if s == v {
			return true
		}
	}
	return false
}

// Verification statuses a sighting moves through during moderation.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// ValidStatus reports whether s is a known verification status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusRejected
}

// User is an account row. Only storage primitives exist for it; no HTTP
// endpoint reads or writes users. The password is stored as given.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"password" db:"password"`
}

// Sighting is a stored observation as returned to clients. Coordinates
// are fixed-precision decimal text (8 fractional digits), not floats,
// so the stored value round-trips without drift.
type Sighting struct {
	ID               string    `json:"id" db:"id"`
	Species          string    `json:"species" db:"species"`
	Latitude         string    `json:"latitude" db:"latitude"`
	Longitude        string    `json:"longitude" db:"longitude"`
	Quantity         int       `json:"quantity" db:"quantity"`
	Description      *string   `json:"description" db:"description"`
	ImageURL         *string   `json:"imageUrl" db:"image_url"`
	AIIdentification *string   `json:"aiIdentification" db:"ai_identification"`
	IsVerified       string    `json:"isVerified" db:"is_verified"`
	ReportedAt       time.Time `json:"reportedAt" db:"reported_at"`
	UserAgent        *string   `json:"userAgent" db:"user_agent"`
}

// NewSighting is a validated creation value. The numeric coordinates
// come from the validator; the optional pointers are attached by the
// ingestion endpoint before the store call.
type NewSighting struct {
	Species          string
	Latitude         float64
	Longitude        float64
	Quantity         int
	Description      *string
	ImageURL         *string
	AIIdentification *string
	UserAgent        *string
}

// LatLng is a geographic point as sent by the map frontend.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangular geographic filter. Membership is inclusive on
// all four edges.
type Bounds struct {
	NorthEast LatLng `json:"northEast"`
	SouthWest LatLng `json:"southWest"`
}

// FormatCoord renders a coordinate in the canonical stored form: fixed
// eight fractional digits.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}
