package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/response"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

const (
	msgLive      = "Welcome to the RentSetu API. Server is live!"
	readyTimeout = 3 * time.Second
)

// PingFunc checks a backing dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping   PingFunc
	logger *logger.Logger
}

func NewHealthHandler(ping PingFunc, log *logger.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: log.Named("HealthHTTPHandler")}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusOK, msgLive)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err.Error())
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusNotFound, "Route not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
}
