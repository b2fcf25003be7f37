// Package server exposes the calculators over an HTTP JSON API. Each request
// carries a fresh input snapshot and produces an independent result; nothing
// is cached between requests.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fincalcs/calc-engine/internal/config"
	"github.com/fincalcs/calc-engine/internal/scenario"
	"github.com/fincalcs/calc-engine/internal/store"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger   *zap.Logger
	composer *scenario.Composer
	store    store.Store
	conf     *config.Configuration
	maxBody  int64
	version  string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, composer *scenario.Composer, st store.Store, conf *config.Configuration, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = store.NewNoopStore()
	}

	maxBody := conf.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = constants.DefaultMaxBodyBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:   logger,
		composer: composer,
		store:    st,
		conf:     conf,
		maxBody:  maxBody,
		version:  trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/api/scenario", h.handleScenario)
	r.Get("/api/brackets", h.handleBrackets)
	r.Post("/api/saved", h.handleSave)
	r.Get("/api/saved", h.handleListSaved)
	r.Get("/api/saved/{id}", h.handleGetSaved)
	r.Delete("/api/saved/{id}", h.handleDeleteSaved)
	r.Get("/api/version", h.handleVersion)
	r.Get("/healthz", h.handleHealth)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst *scenario.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBody), "")
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), "")
		return false
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "yaml") {
		err = yaml.Unmarshal(body, dst)
	} else {
		err = json.Unmarshal(body, dst)
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode scenario: %v", err), "")
		return false
	}
	return true
}

func (h *handler) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenario.Request
	if !h.decodeRequest(w, r, &req) {
		return
	}

	result, err := h.composer.Run(req)
	if err != nil {
		h.respondScenarioError(w, err, "server.handleScenario")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleBrackets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"taxTables": h.conf.TaxTables,
		"fha":       h.conf.FHA,
	})
}

type savedResponse struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Name      string            `json:"name"`
	Scenario  *scenario.Request `json:"scenario,omitempty"`
	CreatedAt int64             `json:"createdAt"`
}

func (h *handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req scenario.Request
	if !h.decodeRequest(w, r, &req) {
		return
	}

	// Reject unrunnable scenarios instead of storing them.
	if _, err := h.composer.Run(req); err != nil {
		h.respondScenarioError(w, err, "server.handleSave")
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode scenario: %v", err), "")
		return
	}

	id, err := h.store.Save(r.Context(), store.SavedScenario{
		Kind:    req.Kind,
		Name:    req.Name,
		Payload: payload,
	})
	if err != nil {
		h.logger.Error("failed to save scenario",
			zap.String("op", "server.handleSave"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to save scenario", "")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list saved scenarios",
			zap.String("op", "server.handleListSaved"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to list saved scenarios", "")
		return
	}

	out := make([]savedResponse, 0, len(saved))
	for _, s := range saved {
		out = append(out, savedResponse{
			ID:        s.ID,
			Kind:      s.Kind,
			Name:      s.Name,
			CreatedAt: s.CreatedAt.Unix(),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "saved scenario not found", "")
			return
		}
		h.logger.Error("failed to load saved scenario",
			zap.String("op", "server.handleGetSaved"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to load saved scenario", "")
		return
	}

	var req scenario.Request
	if err := json.Unmarshal(s.Payload, &req); err != nil {
		h.respondError(w, http.StatusInternalServerError, "stored scenario is unreadable", "")
		return
	}

	h.writeJSON(w, http.StatusOK, savedResponse{
		ID:        s.ID,
		Kind:      s.Kind,
		Name:      s.Name,
		Scenario:  &req,
		CreatedAt: s.CreatedAt.Unix(),
	})
}

func (h *handler) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "saved scenario not found", "")
			return
		}
		h.logger.Error("failed to delete saved scenario",
			zap.String("op", "server.handleDeleteSaved"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to delete saved scenario", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondScenarioError maps engine errors onto HTTP statuses: validation
// failures carry the offending field back to the UI, everything else from
// the engine is a plain bad request.
func (h *handler) respondScenarioError(w http.ResponseWriter, err error, op string) {
	var vErr *scenario.ValidationError
	if errors.As(err, &vErr) {
		h.logger.Debug("scenario rejected",
			zap.String("op", op),
			zap.String("field", vErr.Field),
			zap.String("reason", vErr.Reason),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: vErr.Reason, Field: vErr.Field})
		return
	}
	h.respondError(w, http.StatusBadRequest, err.Error(), "")
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg, field string) {
	h.writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
