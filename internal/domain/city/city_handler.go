package city

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/worldwise-api/internal/types"
)

const maxBodyBytes = 1 << 20

// Handler serves the city views. The container is resolved per request from the
// scope installed by Provide.
type Handler struct {
	logger *slog.Logger
}

// NewHandler wires a city Handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// RegisterRoutes mounts the city views on mux under /app/cities.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /app/cities", h.ListCities)
	mux.HandleFunc("GET /app/cities/{id}", h.GetCity)
	mux.HandleFunc("POST /app/cities", h.CreateCity)
	mux.HandleFunc("DELETE /app/cities/{id}", h.DeleteCity)
}

// ListCities returns the current snapshot.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	c, ok := h.container(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, c.Snapshot())
}

// GetCity selects the city named in the path and returns the snapshot.
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.container(w, r)
	if !ok {
		return
	}
	id, err := types.ParseCityID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	c.GetCity(detach(r), id)
	h.writeJSON(w, http.StatusOK, c.Snapshot())
}

// CreateCity decodes a city draft, creates it and returns the snapshot.
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.container(w, r)
	if !ok {
		return
	}

	var params types.CreateCityParams
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := params.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	status := http.StatusOK
	if c.createCity(detach(r), params) {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, c.Snapshot())
}

// DeleteCity deletes the city named in the path and returns the snapshot.
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.container(w, r)
	if !ok {
		return
	}
	id, err := types.ParseCityID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	c.DeleteCity(detach(r), id)
	h.writeJSON(w, http.StatusOK, c.Snapshot())
}

// detach keeps the request's values but not its cancellation. The container state is
// shared by every viewer, so a client hanging up must not leave a Rejected error behind;
// STORE_TIMEOUT bounds the store call instead.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (h *Handler) container(w http.ResponseWriter, r *http.Request) (*Container, bool) {
	c, err := FromContext(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "City view rendered outside the container scope",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	h.writeJSON(w, status, errorResponse{Error: msg})
}
