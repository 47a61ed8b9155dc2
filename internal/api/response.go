package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/paperscope/paperscope/internal/catalog"
)

type listResponse struct {
	Success    bool             `json:"success"`
	Papers     []*catalog.Paper `json:"papers"`
	Pagination pagination       `json:"pagination"`
	Metadata   listMetadata     `json:"metadata"`
	Filters    appliedFilters   `json:"filters"`
	Sort       appliedSort      `json:"sort"`
}

type pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type listMetadata struct {
	StartDate        *catalog.Date `json:"startDate"`
	EndDate          *catalog.Date `json:"endDate"`
	TotalPapers      int           `json:"totalPapers"`
	MaxHighestHIndex *int          `json:"maxHighestHIndex"`
	MaxAverageHIndex *float64      `json:"maxAverageHIndex"`
}

// appliedFilters echoes the filter parameters exactly as requested.
type appliedFilters struct {
	Date               string `json:"date"`
	Topics             string `json:"topics"`
	Recommendation     string `json:"recommendation"`
	Impact             string `json:"impact"`
	Novelty            string `json:"novelty"`
	Relevance          string `json:"relevance"`
	Scoring            string `json:"scoring"`
	HIndexStatus       string `json:"h_index_status"`
	HighestHIndexRange string `json:"highest_h_index_range"`
	AverageHIndexRange string `json:"average_h_index_range"`
}

type appliedSort struct {
	By    string `json:"sortBy"`
	Order string `json:"sortOrder"`
}

type detailResponse struct {
	Success bool           `json:"success"`
	Paper   *catalog.Paper `json:"paper"`
}

type metadataResponse struct {
	Success bool `json:"success"`
	*catalog.MetadataResult
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Parameter string `json:"parameter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, param string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg, Parameter: param})
}
