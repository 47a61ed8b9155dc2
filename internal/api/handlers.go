package api

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paperscope/paperscope/internal/catalog"
)

// arXiv identifiers since 2007: YYMM.NNNNN with an optional version.
var arxivIDRe = regexp.MustCompile(`^[0-9]{4}\.[0-9]{4,5}(v[0-9]+)?$`)

// Handler serves the catalogue read endpoints.
type Handler struct {
	store catalog.Store
}

func NewHandler(store catalog.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) listPapers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, perr := catalog.ParseListParams(query)
	if perr != nil {
		writeError(w, http.StatusBadRequest, perr.Reason, perr.Param)
		return
	}

	res, err := h.store.ListPapers(r.Context(), params)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	totalPages := res.TotalCount / params.Limit
	if res.TotalCount%params.Limit != 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Papers:  res.Papers,
		Pagination: pagination{
			CurrentPage: params.Page,
			TotalPages:  totalPages,
			TotalCount:  res.TotalCount,
			Limit:       params.Limit,
			HasNextPage: params.Page < totalPages,
			HasPrevPage: params.Page > 1,
		},
		Metadata: listMetadata{
			StartDate:        res.StartDate,
			EndDate:          res.EndDate,
			TotalPapers:      res.DateTotal,
			MaxHighestHIndex: res.MaxHighestHIndex,
			MaxAverageHIndex: res.MaxAverageHIndex,
		},
		Filters: echoFilters(query),
		Sort:    appliedSort{By: string(params.SortBy), Order: string(params.SortOrder)},
	})
}

func (h *Handler) paperDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !arxivIDRe.MatchString(id) {
		writeError(w, http.StatusBadRequest, "invalid paper id", "id")
		return
	}

	paper, err := h.store.GetPaper(r.Context(), id)
	if err != nil {
		if eris.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "paper not found", "")
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{Success: true, Paper: paper})
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Metadata(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metadataResponse{Success: true, MetadataResult: res})
}

// internalError logs the detailed error and returns a generic message.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error", "")
}

func echoFilters(q url.Values) appliedFilters {
	return appliedFilters{
		Date:               q.Get("date"),
		Topics:             q.Get("topics"),
		Recommendation:     q.Get("recommendation"),
		Impact:             q.Get("impact"),
		Novelty:            q.Get("novelty"),
		Relevance:          q.Get("relevance"),
		Scoring:            q.Get("scoring"),
		HIndexStatus:       q.Get("h_index_status"),
		HighestHIndexRange: q.Get("highest_h_index_range"),
		AverageHIndexRange: q.Get("average_h_index_range"),
	}
}
