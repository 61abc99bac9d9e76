package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kirillkom/health-assistant/internal/config"
	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/observability/metrics"
)

const testJWTSecret = "test-secret"

type assistantFake struct {
	docs        []domain.MedicalDocument
	suggestions []string

	gotLimit int
	gotTopic string
}

func (f *assistantFake) GenerateAnswer(context.Context, string) domain.QueryResult {
	return domain.QueryResult{Answer: "ok", Confidence: domain.ConfidenceHigh}
}

func (f *assistantFake) SearchRelevantDocs(_ context.Context, _ string, limit int) []domain.MedicalDocument {
	f.gotLimit = limit
	if limit < len(f.docs) {
		return f.docs[:limit]
	}
	return f.docs
}

func (f *assistantFake) SuggestedQuestions(_ context.Context, topic string, limit int) []string {
	f.gotTopic = topic
	f.gotLimit = limit
	return f.suggestions
}

func (f *assistantFake) Statistics(context.Context) domain.Statistics {
	return domain.Statistics{
		TotalDocs:  len(f.docs),
		Sources:    []string{"vinmec"},
		Categories: map[string]int{"Tim mạch": 1},
	}
}

func (f *assistantFake) CorpusSize() int { return len(f.docs) }

type conversationFake struct {
	askErr     error
	historyErr error
	deleteErr  error

	gotUserID string
	gotPage   int
	gotLimit  int
	gotID     int64
}

func (f *conversationFake) Ask(_ context.Context, userID, question string) (*domain.AskResult, error) {
	f.gotUserID = userID
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &domain.AskResult{
		Question:     question,
		Answer:       "answer",
		RelevantDocs: []domain.RelevantDoc{{DocID: "d1"}},
		Confidence:   domain.ConfidenceHigh,
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *conversationFake) History(_ context.Context, userID string, page, limit int) (*domain.HistoryPage, error) {
	f.gotUserID = userID
	f.gotPage = page
	f.gotLimit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return &domain.HistoryPage{
		Exchanges: []domain.Exchange{{ID: 7, UserID: userID, Question: "q"}},
		Page:      page,
		Limit:     limit,
		Total:     1,
		Pages:     1,
	}, nil
}

func (f *conversationFake) DeleteExchange(_ context.Context, userID string, id int64) error {
	f.gotUserID = userID
	f.gotID = id
	return f.deleteErr
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:               testJWTSecret,
		SearchDefaultLimit:      5,
		SuggestionsDefaultLimit: 6,
		HistoryPageSize:         20,
	}
}

func newTestHandler(t *testing.T, cfg config.Config, assistant *assistantFake, conversations *conversationFake) http.Handler {
	t.Helper()
	if assistant == nil {
		assistant = &assistantFake{}
	}
	if conversations == nil {
		conversations = &conversationFake{}
	}
	router, err := NewRouter(cfg, assistant, conversations, metrics.NewHTTPServerMetrics("test"))
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router.Handler()
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validToken(t *testing.T) string {
	return signToken(t, testJWTSecret, jwt.MapClaims{
		"id":  42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
}

func doJSON(t *testing.T, handler http.Handler, method, target string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
	return out
}

func TestHealthzReportsCorpusSize(t *testing.T) {
	handler := newTestHandler(t, testConfig(), &assistantFake{docs: make([]domain.MedicalDocument, 3)}, nil)

	res := doJSON(t, handler, http.MethodGet, "/healthz", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["status"] != "ok" || body["corpus_size"] != float64(3) {
		t.Fatalf("unexpected healthz body: %v", body)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestHealthzDegradedOnEmptyCorpus(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	body := decodeBody(t, doJSON(t, handler, http.MethodGet, "/healthz", nil, ""))
	if body["status"] != "degraded" {
		t.Fatalf("expected degraded status, got %v", body["status"])
	}
}

func TestAskAnonymous(t *testing.T) {
	conversations := &conversationFake{}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"question": "tiểu đường"}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if conversations.gotUserID != "" {
		t.Fatalf("expected anonymous ask, got user %q", conversations.gotUserID)
	}
	body := decodeBody(t, res)
	if body["question"] != "tiểu đường" || body["confidence"] != "high" {
		t.Fatalf("unexpected ask body: %v", body)
	}
}

func TestAskWithTokenBindsUser(t *testing.T) {
	conversations := &conversationFake{}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"question": "đau đầu"}, validToken(t))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if conversations.gotUserID != "42" {
		t.Fatalf("expected user 42, got %q", conversations.gotUserID)
	}
}

func TestAskWithInvalidTokenReturns401(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)
	token := signToken(t, "other-secret", jwt.MapClaims{"id": 1})

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"question": "ho"}, token)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAskRejectsMissingQuestion(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"text": "x"}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if decodeBody(t, res)["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestAskMapsDomainInvalidInputTo400(t *testing.T) {
	conversations := &conversationFake{
		askErr: domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is empty")),
	}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"question": "   "}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskHidesInternalErrors(t *testing.T) {
	conversations := &conversationFake{askErr: errors.New("pq: connection refused")}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/ask", map[string]any{"question": "ho"}, "")
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if msg := decodeBody(t, res)["error"]; msg != "internal server error" {
		t.Fatalf("expected generic error, got %v", msg)
	}
}

func TestSearchUsesDefaultLimit(t *testing.T) {
	assistant := &assistantFake{docs: []domain.MedicalDocument{{DocID: "a"}, {DocID: "b"}}}
	handler := newTestHandler(t, testConfig(), assistant, nil)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/search", map[string]any{"question": "tim"}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if assistant.gotLimit != 5 {
		t.Fatalf("expected default limit 5, got %d", assistant.gotLimit)
	}
	body := decodeBody(t, res)
	if body["count"] != float64(2) {
		t.Fatalf("expected 2 documents, got %v", body["count"])
	}
}

func TestSearchRejectsLimitOutOfRange(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	res := doJSON(t, handler, http.MethodPost, "/v1/assistant/search", map[string]any{"question": "tim", "limit": 0}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSuggestionsPassTopicAndLimit(t *testing.T) {
	assistant := &assistantFake{suggestions: []string{"Bệnh tim là gì?"}}
	handler := newTestHandler(t, testConfig(), assistant, nil)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/suggestions?topic=tim&limit=3", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if assistant.gotTopic != "tim" || assistant.gotLimit != 3 {
		t.Fatalf("expected topic tim limit 3, got %q %d", assistant.gotTopic, assistant.gotLimit)
	}
}

func TestSuggestionsDefaultLimit(t *testing.T) {
	assistant := &assistantFake{}
	handler := newTestHandler(t, testConfig(), assistant, nil)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/suggestions", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if assistant.gotLimit != 6 {
		t.Fatalf("expected default limit 6, got %d", assistant.gotLimit)
	}
}

func TestSuggestionsRejectInvalidLimit(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	for _, target := range []string{
		"/v1/assistant/suggestions?limit=0",
		"/v1/assistant/suggestions?limit=abc",
	} {
		res := doJSON(t, handler, http.MethodGet, target, nil, "")
		if res.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, res.Code)
		}
	}
}

func TestStatistics(t *testing.T) {
	handler := newTestHandler(t, testConfig(), &assistantFake{docs: make([]domain.MedicalDocument, 2)}, nil)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/statistics", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["total_docs"] != float64(2) {
		t.Fatalf("expected total_docs 2, got %v", body["total_docs"])
	}
}

func TestHistoryRequiresToken(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/history", nil, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/assistant/history", nil, "not-a-jwt")
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestHistoryWithoutSecretTreatsTokensAsAnonymous(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	conversations := &conversationFake{}
	handler := newTestHandler(t, cfg, nil, conversations)

	for _, token := range []string{"", validToken(t), "not-a-jwt"} {
		res := doJSON(t, handler, http.MethodGet, "/v1/assistant/history", nil, token)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, res.Code)
		}
		res = doJSON(t, handler, http.MethodDelete, "/v1/assistant/history/7", nil, token)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401 on delete, got %d", token, res.Code)
		}
	}
}

func TestHistoryReturnsPageForUser(t *testing.T) {
	conversations := &conversationFake{}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/history?page=2&limit=10", nil, validToken(t))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if conversations.gotUserID != "42" || conversations.gotPage != 2 || conversations.gotLimit != 10 {
		t.Fatalf("unexpected history call: user=%q page=%d limit=%d",
			conversations.gotUserID, conversations.gotPage, conversations.gotLimit)
	}
	body := decodeBody(t, res)
	if items, ok := body["conversations"].([]any); !ok || len(items) != 1 {
		t.Fatalf("expected one exchange, got %v", body["conversations"])
	}
}

func TestHistoryDisabledReturns503(t *testing.T) {
	conversations := &conversationFake{
		historyErr: domain.WrapError(domain.ErrHistoryDisabled, "history", errors.New("no repository")),
	}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodGet, "/v1/assistant/history", nil, validToken(t))
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestDeleteHistoryEntry(t *testing.T) {
	conversations := &conversationFake{}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodDelete, "/v1/assistant/history/15", nil, validToken(t))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if conversations.gotID != 15 || conversations.gotUserID != "42" {
		t.Fatalf("unexpected delete call: id=%d user=%q", conversations.gotID, conversations.gotUserID)
	}
}

func TestDeleteHistoryEntryNotFound(t *testing.T) {
	conversations := &conversationFake{
		deleteErr: domain.WrapError(domain.ErrExchangeNotFound, "delete", errors.New("no rows")),
	}
	handler := newTestHandler(t, testConfig(), nil, conversations)

	res := doJSON(t, handler, http.MethodDelete, "/v1/assistant/history/15", nil, validToken(t))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestDeleteHistoryEntryRejectsBadID(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	res := doJSON(t, handler, http.MethodDelete, "/v1/assistant/history/abc", nil, validToken(t))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	if res := doJSON(t, handler, http.MethodGet, "/v1/unknown", nil, ""); res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if res := doJSON(t, handler, http.MethodGet, "/v1/assistant/ask", nil, ""); res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	doJSON(t, handler, http.MethodGet, "/healthz", nil, "")
	res := doJSON(t, handler, http.MethodGet, "/metrics", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "medqa_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
