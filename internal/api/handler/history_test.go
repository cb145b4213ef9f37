package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrexodia/pangram-webui/internal/store"
)

// --- mock HistoryStore ---

type mockHistoryStore struct {
	summaries  []store.AnalysisSummary
	analysis   *store.Analysis
	stats      *store.Stats
	wordCounts []int
	err        error

	gotLimit int
	gotID    int64
}

func (m *mockHistoryStore) ListRecent(_ context.Context, limit int) ([]store.AnalysisSummary, error) {
	m.gotLimit = limit
	return m.summaries, m.err
}

func (m *mockHistoryStore) GetByID(_ context.Context, id int64) (*store.Analysis, error) {
	m.gotID = id
	if m.analysis == nil && m.err == nil {
		return nil, store.ErrNotFound
	}
	return m.analysis, m.err
}

func (m *mockHistoryStore) AggregateStats(_ context.Context) (*store.Stats, error) {
	return m.stats, m.err
}

func (m *mockHistoryStore) ListWordCounts(_ context.Context) ([]int, error) {
	return m.wordCounts, m.err
}

func getReq(t *testing.T, path, paramName, paramVal string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if paramName != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(paramName, paramVal)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	return r
}

// --- tests ---

func TestListHistoryHandler(t *testing.T) {
	mock := &mockHistoryStore{summaries: []store.AnalysisSummary{
		{ID: 2, CreatedAt: "2024-02-17T13:00:00.000Z", WordCount: 2500, PredictionShort: "AI", Preview: "newer text"},
		{ID: 1, CreatedAt: "2024-02-17T12:00:00.000Z", WordCount: 4, PredictionShort: "Human", Preview: "older text"},
	}}
	h := NewListHistoryHandler(mock)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history", "", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if mock.gotLimit != 100 {
		t.Errorf("expected limit 100, got %d", mock.gotLimit)
	}

	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("expected 2 items, got %d", len(env.Data))
	}

	// Credits recomputed from word counts: 2500 -> 3, 4 -> 1.
	if env.Data[0]["credits"] != float64(3) {
		t.Errorf("unexpected credits for first item: %v", env.Data[0]["credits"])
	}
	if env.Data[1]["credits"] != float64(1) {
		t.Errorf("unexpected credits for second item: %v", env.Data[1]["credits"])
	}
}

func TestListHistoryHandler_Empty(t *testing.T) {
	h := NewListHistoryHandler(&mockHistoryStore{})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history", "", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data == nil || len(env.Data) != 0 {
		t.Errorf("expected empty list, got %v", env.Data)
	}
}

func TestGetAnalysisHandler_Success(t *testing.T) {
	mock := &mockHistoryStore{analysis: &store.Analysis{
		ID:           7,
		CreatedAt:    "2024-02-17T12:00:00.000Z",
		Text:         "the quick brown fox",
		WordCount:    4,
		Credits:      1,
		RequestJSON:  `{"text":"the quick brown fox"}`,
		ResponseJSON: `{"prediction_short":"Human"}`,
	}}
	h := NewGetAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history/7", "analysisID", "7"))

	data := parseData(t, rec, http.StatusOK)
	if mock.gotID != 7 {
		t.Errorf("expected store lookup for id 7, got %d", mock.gotID)
	}
	if data["text"] != "the quick brown fox" {
		t.Errorf("unexpected text: %v", data["text"])
	}
	// Payloads come back parsed, not as serialized strings.
	req, ok := data["request"].(map[string]any)
	if !ok {
		t.Fatalf("request payload not embedded as object: %v", data["request"])
	}
	if req["text"] != "the quick brown fox" {
		t.Errorf("unexpected request payload: %v", req)
	}
}

func TestGetAnalysisHandler_NotFound(t *testing.T) {
	h := NewGetAnalysisHandler(&mockHistoryStore{})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history/999", "analysisID", "999"))

	status, code := parseErr(t, rec)
	if status != http.StatusNotFound || code != "NOT_FOUND" {
		t.Errorf("expected 404 NOT_FOUND, got %d %s", status, code)
	}
}

func TestGetAnalysisHandler_BadID(t *testing.T) {
	h := NewGetAnalysisHandler(&mockHistoryStore{})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history/abc", "analysisID", "abc"))

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}

func TestGetAnalysisHandler_StorageFailure(t *testing.T) {
	h := NewGetAnalysisHandler(&mockHistoryStore{err: errors.New("database locked")})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/history/7", "analysisID", "7"))

	status, code := parseErr(t, rec)
	if status != http.StatusInternalServerError || code != "INTERNAL_ERROR" {
		t.Errorf("expected 500 INTERNAL_ERROR, got %d %s", status, code)
	}
}

func TestStatsHandler(t *testing.T) {
	mock := &mockHistoryStore{
		stats: &store.Stats{
			TotalAnalyses: 3,
			TotalWords:    2505,
			FirstAnalysis: "2024-02-17T12:00:00.000Z",
			LastAnalysis:  "2024-02-17T14:00:00.000Z",
		},
		wordCounts: []int{4, 2500, 1},
	}
	h := NewStatsHandler(mock)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/stats", "", ""))

	data := parseData(t, rec, http.StatusOK)
	if data["total_analyses"] != float64(3) {
		t.Errorf("unexpected total_analyses: %v", data["total_analyses"])
	}
	if data["total_words"] != float64(2505) {
		t.Errorf("unexpected total_words: %v", data["total_words"])
	}
	// 1 + 3 + 1: summed per record, not ceil(2505/1000).
	if data["total_credits"] != float64(5) {
		t.Errorf("unexpected total_credits: %v", data["total_credits"])
	}
}

func TestStatsHandler_EmptyStore(t *testing.T) {
	mock := &mockHistoryStore{stats: &store.Stats{}}
	h := NewStatsHandler(mock)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, getReq(t, "/api/v1/stats", "", ""))

	data := parseData(t, rec, http.StatusOK)
	if data["total_analyses"] != float64(0) {
		t.Errorf("unexpected total_analyses: %v", data["total_analyses"])
	}
	if _, present := data["first_analysis"]; present {
		t.Error("first_analysis should be absent for an empty store")
	}
}
