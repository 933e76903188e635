package http

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/bun"
)

type healthHandler struct {
	db      *bun.DB
	version string
}

func newHealthHandler(db *bun.DB, version string) *healthHandler {
	return &healthHandler{db: db, version: version}
}

type livenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *healthHandler) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{Status: "ok", Version: h.version})
}

func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			deps["postgres"] = "down"
			status = "error"
		} else {
			deps["postgres"] = "ok"
		}
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, readinessResponse{Status: status, Version: h.version, Dependencies: deps})
}
