package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrexodia/pangram-webui/internal/api/response"
	"github.com/mrexodia/pangram-webui/internal/credits"
	"github.com/mrexodia/pangram-webui/internal/store"
)

// historyLimit caps the history listing endpoint.
const historyLimit = 100

// HistoryStore is the store subset the read endpoints depend on.
type HistoryStore interface {
	ListRecent(ctx context.Context, limit int) ([]store.AnalysisSummary, error)
	GetByID(ctx context.Context, id int64) (*store.Analysis, error)
	AggregateStats(ctx context.Context) (*store.Stats, error)
	ListWordCounts(ctx context.Context) ([]int, error)
}

type historyItem struct {
	ID              int64   `json:"id"`
	CreatedAt       string  `json:"created_at"`
	WordCount       int     `json:"word_count"`
	Credits         int     `json:"credits"`
	Headline        string  `json:"headline"`
	PredictionShort string  `json:"prediction_short"`
	FractionAI      float64 `json:"fraction_ai"`
	Preview         string  `json:"preview"`
}

// NewListHistoryHandler returns an http.HandlerFunc for GET /api/v1/history.
// Credits are recomputed from word counts; the stored column is ignored on
// reads so a formula change never serves stale values.
func NewListHistoryHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := s.ListRecent(r.Context(), historyLimit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		items := make([]historyItem, 0, len(summaries))
		for _, sum := range summaries {
			items = append(items, historyItem{
				ID:              sum.ID,
				CreatedAt:       sum.CreatedAt,
				WordCount:       sum.WordCount,
				Credits:         credits.ForWordCount(sum.WordCount),
				Headline:        sum.Headline,
				PredictionShort: sum.PredictionShort,
				FractionAI:      sum.FractionAI,
				Preview:         sum.Preview,
			})
		}
		response.JSON(w, items)
	}
}

type analysisDetail struct {
	ID                 int64           `json:"id"`
	CreatedAt          string          `json:"created_at"`
	Text               string          `json:"text"`
	WordCount          int             `json:"word_count"`
	Credits            int             `json:"credits"`
	Headline           string          `json:"headline"`
	PredictionShort    string          `json:"prediction_short"`
	FractionAI         float64         `json:"fraction_ai"`
	FractionAIAssisted float64         `json:"fraction_ai_assisted"`
	FractionHuman      float64         `json:"fraction_human"`
	Request            json.RawMessage `json:"request"`
	Response           json.RawMessage `json:"response"`
}

// NewGetAnalysisHandler returns an http.HandlerFunc for GET /api/v1/history/{analysisID}.
func NewGetAnalysisHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "analysisID"), 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be an integer", nil)
			return
		}

		a, err := s.GetByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, analysisDetail{
			ID:                 a.ID,
			CreatedAt:          a.CreatedAt,
			Text:               a.Text,
			WordCount:          a.WordCount,
			Credits:            credits.ForWordCount(a.WordCount),
			Headline:           a.Headline,
			PredictionShort:    a.PredictionShort,
			FractionAI:         a.FractionAI,
			FractionAIAssisted: a.FractionAIAssisted,
			FractionHuman:      a.FractionHuman,
			Request:            json.RawMessage(a.RequestJSON),
			Response:           json.RawMessage(a.ResponseJSON),
		})
	}
}

type statsResponse struct {
	TotalAnalyses int    `json:"total_analyses"`
	TotalWords    int    `json:"total_words"`
	TotalCredits  int    `json:"total_credits"`
	FirstAnalysis string `json:"first_analysis,omitempty"`
	LastAnalysis  string `json:"last_analysis,omitempty"`
}

// NewStatsHandler returns an http.HandlerFunc for GET /api/v1/stats.
// Total credits is never read from storage: it is reduced over every
// word count with the nonlinear per-record rule.
func NewStatsHandler(s HistoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.AggregateStats(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		wordCounts, err := s.ListWordCounts(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, statsResponse{
			TotalAnalyses: stats.TotalAnalyses,
			TotalWords:    stats.TotalWords,
			TotalCredits:  credits.Total(wordCounts),
			FirstAnalysis: stats.FirstAnalysis,
			LastAnalysis:  stats.LastAnalysis,
		})
	}
}
