package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hazyhaar/lexicheck/pkg/kit"
	"github.com/hazyhaar/lexicheck/pkg/observe"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 * 1024

// NewRouter returns an http.Handler with all lexicheck API routes.
func NewRouter(d Deps) http.Handler {
	d = d.withDefaults()
	mux := http.NewServeMux()
	h := &handler{ep: newEndpoints(d), deps: d}

	mux.HandleFunc("GET /v1/validate-answer", methodNotAllowed)
	mux.HandleFunc("POST /v1/validate-answer", h.handleValidateAnswer)
	mux.HandleFunc("POST /v1/match", h.handleMatch)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalize)
	mux.HandleFunc("GET /v1/languages", h.handleListLanguages)
	mux.HandleFunc("GET /v1/usage", h.handleUsage)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	if d.MCP != nil {
		mux.Handle("/mcp", server.NewStreamableHTTPServer(d.MCP,
			server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				if user := r.Header.Get(kit.HeaderUserID); user != "" {
					ctx = kit.WithUserID(ctx, user)
				}
				return ctx
			}),
		))
	}

	return cors(kit.Identify(observe.Middleware(d.Metrics, d.Logger)(mux)))
}

type handler struct {
	ep   *endpoints
	deps Deps
}

// --- validate answer ---

func (h *handler) handleValidateAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[answerReq](w, r)
	if !ok {
		return
	}
	resp, err := h.ep.validateAnswer(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- local match ---

func (h *handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[answerReq](w, r)
	if !ok {
		return
	}
	resp, err := h.ep.localMatch(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- normalize ---

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[normalizeReq](w, r)
	if !ok {
		return
	}
	resp, err := h.ep.normalize(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- languages ---

func (h *handler) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.listLanguages(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- usage ---

func (h *handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ep.usage(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status       string `json:"status"`
	Judge        string `json:"judge"`
	Metering     bool   `json:"metering"`
	MonthlyLimit int    `json:"monthly_limit"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "strict"
	if h.deps.Judge != nil {
		mode = "enabled"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Judge:        mode,
		Metering:     h.deps.Usage != nil,
		MonthlyLimit: h.deps.MonthlyLimit,
	})
}

// --- helpers ---

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return &req, true
}

type quotaResponse struct {
	Error     string    `json:"error"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

func writeEndpointError(w http.ResponseWriter, err error) {
	var qe *QuotaError
	switch {
	case errors.As(err, &qe):
		writeJSON(w, http.StatusTooManyRequests, quotaResponse{
			Error:     qe.Error(),
			Remaining: qe.Quota.Remaining,
			ResetAt:   qe.Quota.ResetAt,
		})
	case errors.Is(err, errInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
