// Package validate checks inbound sighting payloads against the
// submission schema, collecting every violation rather than stopping at
// the first.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/qri-io/jsonschema"
	"github.com/strikenet/strikenet/pkg/models"
)

// FieldError describes a single violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of violations found in a
// payload. It is distinct from structural errors (malformed JSON).
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}
	return "invalid sighting data: " + strings.Join(parts, "; ")
}

var submissionSchema = mustSchema()

func mustSchema() *jsonschema.Schema {
	doc := map[string]any{
		"type":     "object",
		"required": []string{"species", "latitude", "longitude"},
		"properties": map[string]any{
			"species": map[string]any{
				"type": "string",
				"enum": models.SpeciesList,
			},
			"latitude": map[string]any{
				"type":    "number",
				"minimum": -90,
				"maximum": 90,
			},
			"longitude": map[string]any{
				"type":    "number",
				"minimum": -180,
				"maximum": 180,
			},
			"quantity": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 1000,
			},
			"description": map[string]any{
				"type": []string{"string", "null"},
			},
		},
	}

	b, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal submission schema: %v", err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("compile submission schema: %v", err))
	}
	return rs
}

// ParseSubmission decodes and validates a sighting creation payload.
// Multipart transport may deliver latitude, longitude, and quantity as
// strings; those are coerced to numbers before validation. A malformed
// document returns a plain error; a well-formed document with invalid
// fields returns a *ValidationError listing every violation.
func ParseSubmission(ctx context.Context, raw []byte) (*models.NewSighting, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse sighting payload: %w", err)
	}

	coerceNumbers(m)

	doc, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode sighting payload: %w", err)
	}

	keyErrs, err := submissionSchema.ValidateBytes(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("validate sighting payload: %w", err)
	}
	if len(keyErrs) > 0 {
		verr := &ValidationError{Details: make([]FieldError, 0, len(keyErrs))}
		for _, ke := range keyErrs {
			verr.Details = append(verr.Details, FieldError{
				Field:   strings.TrimPrefix(ke.PropertyPath, "/"),
				Message: ke.Message,
			})
		}
		return nil, verr
	}

	var payload struct {
		Species     string   `json:"species"`
		Latitude    float64  `json:"latitude"`
		Longitude   float64  `json:"longitude"`
		Quantity    *float64 `json:"quantity"`
		Description *string  `json:"description"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, fmt.Errorf("decode validated payload: %w", err)
	}

	quantity := 1
	if payload.Quantity != nil {
		quantity = int(*payload.Quantity)
	}

	return &models.NewSighting{
		Species:     payload.Species,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		Quantity:    quantity,
		Description: payload.Description,
	}, nil
}

// coerceNumbers rewrites numeric-looking string fields in place so the
// schema sees numbers. Unparseable strings are left alone for the
// schema to flag as type violations.
func coerceNumbers(m map[string]any) {
	for _, k := range []string{"latitude", "longitude"} {
		if s, ok := m[k].(string); ok {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				m[k] = json.Number(s)
			}
		}
	}
	if s, ok := m["quantity"].(string); ok {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			m["quantity"] = json.Number(s)
		}
	}
}
