package models_test

import (
	"testing"

	"github.com/strikenet/strikenet/pkg/models"
)

func TestValidSpecies(t *testing.T) {
	for _, s := range models.SpeciesList {
		if !models.ValidSpecies(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"lionfish", "LIONFISH", "Burmese Python", "", "other"} {
		if models.ValidSpecies(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusPending, models.StatusConfirmed, models.StatusRejected} {
		if !models.ValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"Pending", "verified", "", "maybe"} {
		if models.ValidStatus(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestFormatCoord(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{25, "25.00000000"},
		{-80.5, "-80.50000000"},
		{26.12345678, "26.12345678"},
		{0, "0.00000000"},
		{-180, "-180.00000000"},
	}
	for _, tc := range cases {
		if got := models.FormatCoord(tc.in); got != tc.want {
			t.Fatalf("FormatCoord(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
