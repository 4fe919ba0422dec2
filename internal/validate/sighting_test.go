package validate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/strikenet/strikenet/internal/validate"
	"github.com/strikenet/strikenet/pkg/models"
)

func parse(t *testing.T, payload string) (*models.NewSighting, error) {
	t.Helper()
	return validate.ParseSubmission(context.Background(), []byte(payload))
}

func validationDetails(t *testing.T, err error) []validate.FieldError {
	t.Helper()
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr.Details
}

func TestParseSubmission_Valid(t *testing.T) {
	ns, err := parse(t, `{"species":"Lionfish","latitude":25.5,"longitude":-80.25,"quantity":3,"description":"near the reef"}`)
	if err != nil {
		t.Fatalf("ParseSubmission error: %v", err)
	}
	if ns.Species != models.SpeciesLionfish {
		t.Fatalf("wrong species: %q", ns.Species)
	}
	if ns.Latitude != 25.5 || ns.Longitude != -80.25 {
		t.Fatalf("wrong coordinates: %v, %v", ns.Latitude, ns.Longitude)
	}
	if ns.Quantity != 3 {
		t.Fatalf("wrong quantity: %d", ns.Quantity)
	}
	if ns.Description == nil || *ns.Description != "near the reef" {
		t.Fatalf("wrong description: %v", ns.Description)
	}
}

func TestParseSubmission_QuantityDefaultsToOne(t *testing.T) {
	ns, err := parse(t, `{"species":"Green Iguana","latitude":26,"longitude":-81}`)
	if err != nil {
		t.Fatalf("ParseSubmission error: %v", err)
	}
	if ns.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", ns.Quantity)
	}
	if ns.Description != nil {
		t.Fatalf("expected nil description, got %v", *ns.Description)
	}
}

func TestParseSubmission_CoercesStringNumbers(t *testing.T) {
	// multipart forms deliver numbers as strings
	ns, err := parse(t, `{"species":"Walking Catfish","latitude":"25.75","longitude":"-80.12345678","quantity":"4"}`)
	if err != nil {
		t.Fatalf("ParseSubmission error: %v", err)
	}
	if ns.Latitude != 25.75 {
		t.Fatalf("latitude not coerced: %v", ns.Latitude)
	}
	if ns.Longitude != -80.12345678 {
		t.Fatalf("longitude not coerced: %v", ns.Longitude)
	}
	if ns.Quantity != 4 {
		t.Fatalf("quantity not coerced: %d", ns.Quantity)
	}
}

func TestParseSubmission_UnknownSpecies(t *testing.T) {
	for _, species := range []string{"Burmese Python", "lionfish", "LIONFISH", ""} {
		_, err := parse(t, `{"species":"`+species+`","latitude":25,"longitude":-80}`)
		if err == nil {
			t.Fatalf("expected validation error for species %q", species)
		}
		details := validationDetails(t, err)
		if len(details) == 0 {
			t.Fatalf("expected at least one violation for species %q", species)
		}
	}
}

func TestParseSubmission_CoordinateRanges(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"latitude too high", `{"species":"Other","latitude":90.1,"longitude":0}`},
		{"latitude too low", `{"species":"Other","latitude":-90.1,"longitude":0}`},
		{"longitude too high", `{"species":"Other","latitude":0,"longitude":180.1}`},
		{"longitude too low", `{"species":"Other","latitude":0,"longitude":-180.1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.payload)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			validationDetails(t, err)
		})
	}

	// edges are inclusive
	for _, payload := range []string{
		`{"species":"Other","latitude":90,"longitude":180}`,
		`{"species":"Other","latitude":-90,"longitude":-180}`,
	} {
		if _, err := parse(t, payload); err != nil {
			t.Fatalf("expected edge coordinates to validate: %v", err)
		}
	}
}

func TestParseSubmission_QuantityBounds(t *testing.T) {
	for _, payload := range []string{
		`{"species":"Other","latitude":0,"longitude":0,"quantity":0}`,
		`{"species":"Other","latitude":0,"longitude":0,"quantity":1001}`,
		`{"species":"Other","latitude":0,"longitude":0,"quantity":2.5}`,
		`{"species":"Other","latitude":0,"longitude":0,"quantity":"2.5"}`,
	} {
		_, err := parse(t, payload)
		if err == nil {
			t.Fatalf("expected validation error for payload %s", payload)
		}
		validationDetails(t, err)
	}

	ns, err := parse(t, `{"species":"Other","latitude":0,"longitude":0,"quantity":1000}`)
	if err != nil {
		t.Fatalf("expected quantity 1000 to validate: %v", err)
	}
	if ns.Quantity != 1000 {
		t.Fatalf("wrong quantity: %d", ns.Quantity)
	}
}

func TestParseSubmission_CollectsAllViolations(t *testing.T) {
	_, err := parse(t, `{"species":"Godzilla","latitude":95,"longitude":-200,"quantity":0}`)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	details := validationDetails(t, err)
	if len(details) < 4 {
		t.Fatalf("expected every violated field listed, got %d: %+v", len(details), details)
	}
}

func TestParseSubmission_MalformedJSON(t *testing.T) {
	for _, payload := range []string{`{not json`, ``, `"just a string"`} {
		_, err := parse(t, payload)
		if err == nil {
			t.Fatalf("expected structural error for %q", payload)
		}
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			t.Fatalf("expected structural error, got validation error for %q", payload)
		}
	}
}

func TestParseSubmission_MissingRequiredFields(t *testing.T) {
	_, err := parse(t, `{"description":"no coordinates"}`)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	details := validationDetails(t, err)
	if len(details) == 0 {
		t.Fatalf("expected required-field violations")
	}
}
