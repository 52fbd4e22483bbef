// Package api serves projections over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/scenario"
	"github.com/discochess/contagion/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// HandlerDeps holds what the handlers need.
type HandlerDeps struct {
	Engine *contagion.Engine
	Store  store.Store
	Logger *zap.Logger
}

// Handler implements the HTTP endpoints.
type Handler struct {
	engine *contagion.Engine
	store  store.Store
	logger *zap.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine: deps.Engine,
		store:  deps.Store,
		logger: logger,
	}
}

// ProjectionRequest is the body of POST /v1/projections. Parameter keys
// that are left out take their default values.
type ProjectionRequest struct {
	contagion.Parameters

	// Seed overrides the engine's day-0 values.
	Seed *contagion.Seed `json:"seed,omitempty"`

	// Fields selects the series to return. When empty the response holds
	// the totals and daily views.
	Fields []string `json:"fields,omitempty"`
}

// ProjectionResponse is returned by the projection endpoints.
type ProjectionResponse struct {
	RunID    string             `json:"run_id"`
	Scenario string             `json:"scenario,omitempty"`
	Summary  contagion.Summary  `json:"summary"`
	Totals   []contagion.Record `json:"totals,omitempty"`
	Daily    []contagion.Record `json:"daily,omitempty"`
	Records  []contagion.Record `json:"records,omitempty"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Project handles POST /v1/projections.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	req := ProjectionRequest{Parameters: contagion.DefaultParameters()}
	if err := decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	seed := h.engine.Seed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	resp, err := h.project(r.Context(), req.Parameters, seed, req.Fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListScenarios handles GET /v1/scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"scenarios": names})
}

// GetScenario handles GET /v1/scenarios/{name}.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := scenario.Load(r.Context(), h.store, chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// ProjectScenario handles GET /v1/scenarios/{name}/projection. The
// optional fields query parameter is a comma-separated list of series.
func (h *Handler) ProjectScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := scenario.Load(r.Context(), h.store, chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var fields []string
	if q := r.URL.Query().Get("fields"); q != "" {
		fields = strings.Split(q, ",")
	}

	resp, err := h.project(r.Context(), sc.Parameters, sc.Seed, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp.Scenario = sc.Name
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) project(ctx context.Context, p contagion.Parameters, seed contagion.Seed, names []string) (*ProjectionResponse, error) {
	// Parameters and field names are checked before running so bad requests
	// cost nothing, whatever horizon they ask for.
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fields, err := contagion.ParseFields(names)
	if err != nil {
		return nil, err
	}

	s, err := h.engine.RunWithSeed(ctx, p, seed)
	if err != nil {
		return nil, err
	}

	resp := &ProjectionResponse{
		RunID:   uuid.NewString(),
		Summary: s.Summary(),
	}
	if len(fields) > 0 {
		resp.Records, err = h.engine.Project(s, fields)
		return resp, err
	}
	if resp.Totals, err = h.engine.Project(s, contagion.TotalsView); err != nil {
		return nil, err
	}
	if resp.Daily, err = h.engine.Project(s, contagion.DailyView); err != nil {
		return nil, err
	}
	return resp, nil
}

var errBadRequest = errors.New("malformed request")

// statusOf maps an error to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, contagion.ErrInvalidParameter),
		errors.Is(err, contagion.ErrUnknownField),
		errors.Is(err, store.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scenario.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
