package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// denialMessages are the error strings shown for each directory's lookups.
type denialMessages struct {
	notFound  string
	forbidden string
}

var (
	primaryMessages = denialMessages{
		notFound:  "User is not verified",
		forbidden: "You cannot access this user",
	}
	secondaryMessages = denialMessages{
		notFound:  "No Discord accounts linked to this Roblox account",
		forbidden: "You cannot access the Discord accounts of this user",
	}
)

const (
	msgCredentialRequired = "Resource requires API key"
	msgCredentialInvalid  = "API key is invalid"
	msgInternal           = "Internal server error"
	msgNotFound           = "Not found"
)

// APIHandler serves the account lookup endpoints.
type APIHandler struct {
	svc    ports.LookupService
	logger *slog.Logger
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(svc ports.LookupService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	primary := CredentialMiddleware(http.HandlerFunc(h.LookupPrimary))
	secondary := CredentialMiddleware(http.HandlerFunc(h.LookupSecondary))

	// The discord/roblox paths are the ones existing integrations call.
	mux.Handle("GET /api/discord/{id}", primary)
	mux.Handle("GET /api/primary/{id}", primary)
	mux.Handle("GET /api/roblox/{id}", secondary)
	mux.Handle("GET /api/secondary/{id}", secondary)

	mux.HandleFunc("/", h.NotFound)
}

// Handler returns the full routing tree wrapped in request middleware.
func (h *APIHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return RequestMiddleware(h.logger)(mux)
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	checks := h.svc.HealthCheck(r.Context())

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	code := http.StatusOK
	if status == "DEGRADED" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

// LookupPrimary returns one verified account by its primary id.
func (h *APIHandler) LookupPrimary(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LookupPrimary(r.Context(), r.PathValue("id"), CredentialFromContext(r.Context()))
	if !h.handleDenial(w, r, out, err, primaryMessages) {
		return
	}
	if len(out.Accounts) != 1 {
		h.logger.ErrorContext(r.Context(), "single lookup allowed without exactly one account", "count", len(out.Accounts))
		h.writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	h.writeJSON(w, http.StatusOK, out.Accounts[0])
}

// LookupSecondary returns every visible account linked to a secondary id.
func (h *APIHandler) LookupSecondary(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LookupSecondary(r.Context(), r.PathValue("id"), CredentialFromContext(r.Context()))
	if !h.handleDenial(w, r, out, err, secondaryMessages) {
		return
	}
	h.writeJSON(w, http.StatusOK, out.Accounts)
}

// NotFound answers every unrouted request.
func (h *APIHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, msgNotFound)
}

// handleDenial writes the error response for err or a non-allowed outcome and
// reports whether the caller should write the allowed body.
func (h *APIHandler) handleDenial(w http.ResponseWriter, r *http.Request, out domain.Outcome, err error, msgs denialMessages) bool {
	if err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return false
		}
		h.logger.ErrorContext(r.Context(), "lookup failed",
			"path", r.URL.Path,
			"request_id", r.Context().Value(CtxRequestID),
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, msgInternal)
		return false
	}

	switch out.Kind {
	case domain.OutcomeAllowed:
		return true
	case domain.OutcomeNotFound:
		h.writeError(w, http.StatusNotFound, msgs.notFound)
	case domain.OutcomeRequiresCredential:
		h.writeError(w, http.StatusUnauthorized, msgCredentialRequired)
	case domain.OutcomeCredentialInvalid:
		h.writeError(w, http.StatusUnauthorized, msgCredentialInvalid)
	case domain.OutcomeForbidden:
		h.writeError(w, http.StatusForbidden, msgs.forbidden)
	default:
		h.writeError(w, http.StatusInternalServerError, msgInternal)
	}
	return false
}

func (h *APIHandler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
