package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/health-assistant/internal/config"
	"github.com/kirillkom/health-assistant/internal/core/ports"
	"github.com/kirillkom/health-assistant/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg           config.Config
	assistant     ports.Assistant
	conversations ports.ConversationService
	metrics       *metrics.HTTPServerMetrics
	auth          *Authenticator
	validator     *requestValidator
}

// NewRouter wires the assistant API. httpMetrics may be nil.
func NewRouter(
	cfg config.Config,
	assistant ports.Assistant,
	conversations ports.ConversationService,
	httpMetrics *metrics.HTTPServerMetrics,
) (*Router, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	return &Router{
		cfg:           cfg,
		assistant:     assistant,
		conversations: conversations,
		metrics:       httpMetrics,
		auth:          NewAuthenticator(cfg.JWTSecret),
		validator:     validator,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("POST /v1/assistant/ask", rt.optionalAuth(rt.ask))
	mux.HandleFunc("POST /v1/assistant/search", rt.search)
	mux.HandleFunc("GET /v1/assistant/suggestions", rt.suggestions)
	mux.HandleFunc("GET /v1/assistant/statistics", rt.statistics)
	mux.HandleFunc("GET /v1/assistant/history", rt.requireAuth(rt.history))
	mux.HandleFunc("DELETE /v1/assistant/history/{id}", rt.requireAuth(rt.deleteHistoryEntry))

	var handler http.Handler = rt.validator.middleware(mux)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	size := rt.assistant.CorpusSize()
	status := "ok"
	if size == 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "corpus_size": size})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	result, err := rt.conversations.Ask(r.Context(), userIDFromContext(r.Context()), req.Question)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnswer(metricsService, string(result.Confidence), len(result.RelevantDocs), time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		Limit    int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = rt.cfg.SearchDefaultLimit
	}

	start := time.Now()
	docs := rt.assistant.SearchRelevantDocs(r.Context(), req.Question, req.Limit)
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(metricsService, "search", len(docs), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (rt *Router) suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := intQueryParam(query.Get("limit"), rt.cfg.SuggestionsDefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	topic := strings.TrimSpace(query.Get("topic"))

	suggestions := rt.assistant.SuggestedQuestions(r.Context(), topic, limit)
	if rt.metrics != nil {
		rt.metrics.RecordSuggestions(metricsService, topic != "")
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (rt *Router) statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.assistant.Statistics(r.Context()))
}

func (rt *Router) history(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := intQueryParam(query.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, err := intQueryParam(query.Get("limit"), rt.cfg.HistoryPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	historyPage, err := rt.conversations.History(r.Context(), userIDFromContext(r.Context()), page, limit)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyPage)
}

func (rt *Router) deleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid exchange id")
		return
	}

	if err := rt.conversations.DeleteExchange(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "http_handler_error",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeError(w, status, publicErrorMessage(status, err))
}

var errNotPositive = errors.New("value must be positive")

func intQueryParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 1 {
		return 0, errNotPositive
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
