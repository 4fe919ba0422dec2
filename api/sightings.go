package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/strikenet/strikenet/internal/validate"
	"github.com/strikenet/strikenet/pkg/models"
	"github.com/strikenet/strikenet/pkg/repository"
)

// maxImageBytes caps an uploaded image at 10 MiB. Anything larger is
// rejected before the classifier or the store sees it.
const maxImageBytes = 10 << 20

// formOverheadBytes allows for the multipart framing and the JSON data
// field on top of the image itself.
const formOverheadBytes = 1 << 20

// Identifier is the species classifier capability. Implementations
// return the raw classifier text for an image, or an error the caller
// downgrades to "no identification".
type Identifier interface {
	Identify(ctx context.Context, image []byte, contentType string) (string, error)
}

type SightingsHandler struct {
	repo            repository.SightingRepo
	classifier      Identifier
	classifyTimeout time.Duration
}

func NewSightingsHandler(repo repository.SightingRepo, classifier Identifier, classifyTimeout time.Duration) *SightingsHandler {
	if classifyTimeout <= 0 {
		classifyTimeout = 30 * time.Second
	}
	return &SightingsHandler{repo: repo, classifier: classifier, classifyTimeout: classifyTimeout}
}

type selectMode int

const (
	selectAll selectMode = iota
	selectBySpecies
	selectByBounds
)

// listSelector is the tagged selection mode for the list endpoint:
// exactly one of all, species, or bounds applies per request.
type listSelector struct {
	mode    selectMode
	species string
	bounds  models.Bounds
}

// parseListSelector picks the selection mode from the query parameters.
// Species takes precedence over bounds when both are supplied.
func parseListSelector(q url.Values) (listSelector, error) {
	if s := q.Get("species"); s != "" {
		return listSelector{mode: selectBySpecies, species: s}, nil
	}
	if b := q.Get("bounds"); b != "" {
		var bounds models.Bounds
		if err := json.Unmarshal([]byte(b), &bounds); err != nil {
			return listSelector{}, fmt.Errorf("parse bounds: %w", err)
		}
		return listSelector{mode: selectByBounds, bounds: bounds}, nil
	}
	return listSelector{mode: selectAll}, nil
}

func (h *SightingsHandler) ListSightings(w http.ResponseWriter, r *http.Request) {
	sel, err := parseListSelector(r.URL.Query())
	if err != nil {
		writeError(w, "Invalid bounds", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var rows []models.Sighting
	switch sel.mode {
	case selectBySpecies:
		rows, err = h.repo.ListSightingsBySpecies(ctx, sel.species)
	case selectByBounds:
		rows, err = h.repo.ListSightingsInBounds(ctx, sel.bounds)
	default:
		rows, err = h.repo.ListSightings(ctx)
	}
	if err != nil {
		logger.Error("list sightings", slog.Any("err", err))
		writeError(w, "Failed to fetch sightings", http.StatusInternalServerError)
		return
	}

	if rows == nil {
		rows = []models.Sighting{}
	}

	writeJSON(w, rows, http.StatusOK)
}

func (h *SightingsHandler) CreateSighting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(maxImageBytes + formOverheadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, "Image exceeds the 10MiB limit", http.StatusBadRequest)
			return
		}
		writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	data := r.FormValue("data")
	if data == "" {
		writeError(w, "Missing sighting data", http.StatusBadRequest)
		return
	}

	ns, err := validate.ParseSubmission(ctx, []byte(data))
	if err != nil {
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, "Invalid sighting data", verr.Details)
			return
		}
		writeError(w, "Invalid sighting data", http.StatusBadRequest)
		return
	}

	file, hdr, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// no image attached
	case err != nil:
		writeError(w, "Invalid image upload", http.StatusBadRequest)
		return
	default:
		defer file.Close()

		if hdr.Size > maxImageBytes {
			writeError(w, "Image exceeds the 10MiB limit", http.StatusBadRequest)
			return
		}
		img, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil || int64(len(img)) > maxImageBytes {
			writeError(w, "Invalid image upload", http.StatusBadRequest)
			return
		}

		contentType := hdr.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		// best-effort identification; failure never aborts the submission
		cctx, cancel := context.WithTimeout(ctx, h.classifyTimeout)
		text, err := h.classifier.Identify(cctx, img, contentType)
		cancel()
		if err != nil {
			logger.Warn("species identification failed", slog.Any("err", err))
		} else {
			ns.AIIdentification = &text
		}

		dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img)
		ns.ImageURL = &dataURL
	}

	if ua := r.Header.Get("User-Agent"); ua != "" {
		ns.UserAgent = &ua
	}

	s, err := h.repo.CreateSighting(ctx, ns)
	if err != nil {
		logger.Error("create sighting", slog.Any("err", err))
		writeError(w, "Failed to create sighting", http.StatusInternalServerError)
		return
	}

	writeJSON(w, s, http.StatusCreated)
}

func (h *SightingsHandler) VerifySighting(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !models.ValidStatus(req.Status) {
		writeError(w, "Invalid verification status", http.StatusBadRequest)
		return
	}

	s, err := h.repo.UpdateSightingVerification(r.Context(), id, req.Status)
	if err != nil {
		logger.Error("update sighting verification", slog.Any("err", err))
		writeError(w, "Failed to update sighting", http.StatusInternalServerError)
		return
	}
	if s == nil {
		writeError(w, "Sighting not found", http.StatusNotFound)
		return
	}

	writeJSON(w, s, http.StatusOK)
}
