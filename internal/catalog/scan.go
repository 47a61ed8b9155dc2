package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// paperColumnList returns the canonical column order for paper reads.
// scanPaper consumes values in exactly this order.
func paperColumnList() []string {
	cols := []string{
		"id", "title", "authors", "categories", "abstract", "published_date",
		"arxiv_url", "pdf_url", "latex_url",
	}
	for _, t := range Topics {
		cols = append(cols,
			string(t)+"_score",
			string(t)+"_relevance",
			string(t)+"_justification",
		)
	}
	cols = append(cols,
		"llm_score_status", "summary",
		"novelty_score", "novelty_justification",
		"impact_score", "impact_justification",
		"recommendation_score", "recommendation_justification",
		"h_index_status", "total_authors", "authors_found",
		"highest_h_index", "average_h_index", "notable_authors_count",
		"author_h_indexes",
		"created_at", "updated_at",
	)
	return cols
}

var paperColumns = strings.Join(paperColumnList(), ", ")

// PaperColumns returns the canonical catalogue column order, for
// callers that write rows rather than read them.
func PaperColumns() []string {
	return paperColumnList()
}

// scanPaper reads one row into a Paper, decoding the JSON-encoded
// list columns. The scan callback abstracts over pgx.Row and pgx.Rows.
func scanPaper(scan func(dest ...any) error) (*Paper, error) {
	p := &Paper{Topics: make(map[Topic]*TopicAssessment, len(Topics))}
	var (
		authorsJSON    []byte
		categoriesJSON []byte
		hIndexJSON     []byte
		published      time.Time
	)

	dests := []any{
		&p.ID, &p.Title, &authorsJSON, &categoriesJSON, &p.Abstract, &published,
		&p.ArxivURL, &p.PDFURL, &p.LatexURL,
	}
	for _, t := range Topics {
		a := &TopicAssessment{}
		p.Topics[t] = a
		dests = append(dests, &a.Score, &a.Relevance, &a.Justification)
	}
	dests = append(dests,
		&p.ScoringStatus, &p.Summary,
		&p.Novelty.Level, &p.Novelty.Justification,
		&p.Impact.Level, &p.Impact.Justification,
		&p.Recommendation.Level, &p.Recommendation.Justification,
		&p.AuthorMetrics.Status, &p.AuthorMetrics.TotalAuthors, &p.AuthorMetrics.AuthorsFound,
		&p.AuthorMetrics.HighestHIndex, &p.AuthorMetrics.AverageHIndex, &p.AuthorMetrics.NotableAuthors,
		&hIndexJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err := scan(dests...); err != nil {
		return nil, err
	}
	p.PublishedDate = Date{published}

	if err := decodeList(authorsJSON, &p.Authors); err != nil {
		return nil, eris.Wrapf(err, "catalog: paper %s: decode authors", p.ID)
	}
	if err := decodeList(categoriesJSON, &p.Categories); err != nil {
		return nil, eris.Wrapf(err, "catalog: paper %s: decode categories", p.ID)
	}
	if len(hIndexJSON) > 0 {
		if err := json.Unmarshal(hIndexJSON, &p.AuthorMetrics.Authors); err != nil {
			return nil, eris.Wrapf(err, "catalog: paper %s: decode author h-indexes", p.ID)
		}
	}
	return p, nil
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// checkAuthorMetrics enforces the response-layer invariant that a
// completed h-index lookup carries its data. A completed status with an
// empty author list or null aggregates is stored-data corruption, not a
// normal empty state, so it surfaces as an error instead of rendering.
func checkAuthorMetrics(p *Paper) error {
	m := &p.AuthorMetrics
	if m.Status != HIndexCompleted {
		return nil
	}
	if len(m.Authors) == 0 || m.HighestHIndex == nil || m.AverageHIndex == nil {
		return eris.Errorf("catalog: paper %s: h_index_status is completed but author metrics are missing", p.ID)
	}
	return nil
}

// narrowTopics nulls the assessment of every topic outside the
// selection. Selection narrows the returned projection only; rows were
// matched on their true values.
func narrowTopics(p *Paper, selected []Topic) {
	keep := make(map[Topic]bool, len(selected))
	for _, t := range selected {
		keep[t] = true
	}
	for t, a := range p.Topics {
		if keep[t] {
			continue
		}
		a.Score = nil
		a.Relevance = nil
		a.Justification = nil
	}
}
