// Package analysis orchestrates detection calls and history persistence.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrexodia/pangram-webui/internal/credits"
	"github.com/mrexodia/pangram-webui/internal/pangram"
	"github.com/mrexodia/pangram-webui/internal/store"
)

// Result is the outcome of one successful analysis: the normalized scan
// plus the persisted row's identity and billing.
type Result struct {
	ID        int64
	CreatedAt string
	WordCount int
	Credits   int
	Scan      *pangram.ScanResult
}

// Service ties the detection client to the history store. One record is
// created per successful detection call; a failed call writes nothing.
type Service struct {
	detector pangram.Client
	store    store.Store
}

// NewService creates a new Service.
func NewService(detector pangram.Client, st store.Store) *Service {
	return &Service{detector: detector, store: st}
}

// Analyze submits text to the detection API and persists the exchange.
// Callers validate that text is non-empty after trimming before calling.
func (s *Service) Analyze(ctx context.Context, text string, dashboardLink bool) (*Result, error) {
	wordCount := credits.CountWords(text)

	req := pangram.ScanRequest{Text: text, ReturnDashboardLink: dashboardLink}
	scan, err := s.detector.DeepScan(ctx, req)
	if err != nil {
		return nil, err
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}
	respJSON, err := json.Marshal(scan)
	if err != nil {
		return nil, fmt.Errorf("encoding response payload: %w", err)
	}

	rec := &store.Analysis{
		Text:               text,
		WordCount:          wordCount,
		Credits:            credits.ForWordCount(wordCount),
		RequestJSON:        string(reqJSON),
		ResponseJSON:       string(respJSON),
		Headline:           scan.Headline,
		PredictionShort:    scan.PredictionShort,
		FractionAI:         scan.FractionAI,
		FractionAIAssisted: scan.FractionAIAssisted,
		FractionHuman:      scan.FractionHuman,
	}

	id, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("storing analysis: %w", err)
	}

	return &Result{
		ID:        id,
		CreatedAt: rec.CreatedAt,
		WordCount: wordCount,
		Credits:   rec.Credits,
		Scan:      scan,
	}, nil
}
