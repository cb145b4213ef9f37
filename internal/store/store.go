package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested analysis does not exist.
var ErrNotFound = errors.New("analysis not found")

// Analysis is one persisted detection request/response pair. Rows are
// immutable after creation; the only mutation is permanent deletion.
type Analysis struct {
	ID                 int64   `json:"id"`
	CreatedAt          string  `json:"created_at"`
	Text               string  `json:"text"`
	WordCount          int     `json:"word_count"`
	Credits            int     `json:"credits"`
	RequestJSON        string  `json:"request_json"`
	ResponseJSON       string  `json:"response_json"`
	Headline           string  `json:"headline"`
	PredictionShort    string  `json:"prediction_short"`
	FractionAI         float64 `json:"fraction_ai"`
	FractionAIAssisted float64 `json:"fraction_ai_assisted"`
	FractionHuman      float64 `json:"fraction_human"`
}

// AnalysisSummary is the listing projection: denormalized response fields
// plus a truncated text preview.
type AnalysisSummary struct {
	ID              int64   `json:"id"`
	CreatedAt       string  `json:"created_at"`
	WordCount       int     `json:"word_count"`
	Headline        string  `json:"headline"`
	PredictionShort string  `json:"prediction_short"`
	FractionAI      float64 `json:"fraction_ai"`
	Preview         string  `json:"preview"`
}

// Stats aggregates the whole history table. Timestamps are empty strings
// when no rows exist. Total credits is deliberately not here: it must be
// recomputed from word counts (see credits.Total).
type Stats struct {
	TotalAnalyses int    `json:"total_analyses"`
	TotalWords    int    `json:"total_words"`
	FirstAnalysis string `json:"first_analysis"`
	LastAnalysis  string `json:"last_analysis"`
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// Create assigns ID and CreatedAt on the given record and persists it.
	Create(ctx context.Context, a *Analysis) (int64, error)
	GetByID(ctx context.Context, id int64) (*Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]AnalysisSummary, error)
	SearchByText(ctx context.Context, query string, limit int) ([]AnalysisSummary, error)
	// DeleteByID reports whether a row was removed; a missing id is a
	// no-op, not an error.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	AggregateStats(ctx context.Context) (*Stats, error)
	ListWordCounts(ctx context.Context) ([]int, error)
	ListAll(ctx context.Context) ([]Analysis, error)
}
