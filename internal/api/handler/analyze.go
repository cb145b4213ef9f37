package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mrexodia/pangram-webui/internal/analysis"
	"github.com/mrexodia/pangram-webui/internal/api/response"
	"github.com/mrexodia/pangram-webui/internal/pangram"
)

// Analyzer defines the interface the handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string, dashboardLink bool) (*analysis.Result, error)
}

type analyzeResponse struct {
	ID        int64               `json:"id"`
	CreatedAt string              `json:"created_at"`
	WordCount int                 `json:"word_count"`
	Credits   int                 `json:"credits"`
	Result    *pangram.ScanResult `json:"result"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// Empty (after trimming) text is rejected before any store write or
// external call is made.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text          string `json:"text"`
			DashboardLink bool   `json:"dashboard_link"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Text) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "text must not be empty", nil)
			return
		}

		result, err := svc.Analyze(r.Context(), req.Text, req.DashboardLink)
		if err != nil {
			if errors.Is(err, pangram.ErrDetectionFailed) {
				response.Error(w, http.StatusBadGateway, "DETECTION_FAILED", err.Error(), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Created(w, analyzeResponse{
			ID:        result.ID,
			CreatedAt: result.CreatedAt,
			WordCount: result.WordCount,
			Credits:   result.Credits,
			Result:    result.Scan,
		})
	}
}
