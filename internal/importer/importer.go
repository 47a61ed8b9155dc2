// Package importer loads the scoring pipeline's SQLite catalogue into
// the Postgres store the API serves from.
package importer

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/paperscope/paperscope/internal/catalog"
	"github.com/paperscope/paperscope/internal/db"
)

// Summary reports what one import run did.
type Summary struct {
	RunID    string
	Read     int
	Upserted int64
}

// Importer copies paper rows from a pipeline SQLite file into Postgres.
type Importer struct {
	pool      db.Pool
	batchSize int
}

func New(pool db.Pool, batchSize int) *Importer {
	if batchSize < 1 {
		batchSize = 500
	}
	return &Importer{pool: pool, batchSize: batchSize}
}

// sqliteColumns is the subset of the pipeline schema the catalogue
// keeps. Pipeline-internal bookkeeping (scraper status, embeddings,
// intro extraction) is not carried over.
var sqliteColumns = []string{
	"id", "title", "authors", "categories", "abstract", "published_date",
	"arxiv_url", "pdf_url", "latex_url",
	"agentic_ai_score", "agentic_ai_relevance", "agentic_ai_justification",
	"proximal_policy_optimization_score", "proximal_policy_optimization_relevance", "proximal_policy_optimization_justification",
	"reinforcement_learning_score", "reinforcement_learning_relevance", "reinforcement_learning_justification",
	"reasoning_models_score", "reasoning_models_relevance", "reasoning_models_justification",
	"inference_time_scaling_score", "inference_time_scaling_relevance", "inference_time_scaling_justification",
	"llm_score_status", "summary",
	"novelty_score", "novelty_justification",
	"impact_score", "impact_justification",
	"recommendation_score", "recommendation_justification",
	"h_index_status", "total_authors", "authors_found",
	"highest_h_index", "average_h_index", "notable_authors_count",
	"author_h_indexes",
	"created_at", "updated_at",
}

// Run reads every paper row from the SQLite file at path and upserts
// them into Postgres in batches. Returns a summary of the run.
func (im *Importer) Run(ctx context.Context, path string) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", sum.RunID), zap.String("path", path))

	sdb, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrap(err, "importer: open sqlite")
	}
	defer sdb.Close()

	query := "SELECT " + strings.Join(sqliteColumns, ", ") + " FROM papers"
	rows, err := sdb.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "importer: read papers")
	}
	defer rows.Close()

	batch := make([][]any, 0, im.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := db.BulkUpsert(ctx, im.pool, "papers", catalog.PaperColumns(), []string{"id"}, batch)
		if err != nil {
			return err
		}
		sum.Upserted += n
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		row, err := scanSQLiteRow(rows)
		if err != nil {
			return nil, err
		}
		sum.Read++
		batch = append(batch, row)
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "importer: read papers")
	}
	if err := flush(); err != nil {
		return nil, err
	}

	log.Info("import complete", zap.Int("read", sum.Read), zap.Int64("upserted", sum.Upserted))
	return sum, nil
}

type topicTriple struct {
	score         sql.NullFloat64
	relevance     sql.NullString
	justification sql.NullString
}

// scanSQLiteRow converts one pipeline row into the Postgres column
// order. Text timestamps become typed values; everything else passes
// through, with NULLs preserved.
func scanSQLiteRow(rows *sql.Rows) ([]any, error) {
	var (
		id, title                   string
		authors, categories         sql.NullString
		abstract                    sql.NullString
		publishedRaw                string
		arxivURL, pdfURL, latexURL  sql.NullString
		topics                      [5]topicTriple
		scoringStatus               sql.NullString
		summary                     sql.NullString
		novelty, noveltyWhy         sql.NullString
		impact, impactWhy           sql.NullString
		recommendation, recoWhy     sql.NullString
		hIndexStatus                sql.NullString
		totalAuthors, authorsFound  sql.NullInt64
		highestHIndex               sql.NullInt64
		averageHIndex               sql.NullFloat64
		notableAuthors              sql.NullInt64
		authorHIndexes              sql.NullString
		createdRaw, updatedRaw      sql.NullString
	)

	dests := []any{
		&id, &title, &authors, &categories, &abstract, &publishedRaw,
		&arxivURL, &pdfURL, &latexURL,
	}
	for i := range topics {
		dests = append(dests, &topics[i].score, &topics[i].relevance, &topics[i].justification)
	}
	dests = append(dests,
		&scoringStatus, &summary,
		&novelty, &noveltyWhy,
		&impact, &impactWhy,
		&recommendation, &recoWhy,
		&hIndexStatus, &totalAuthors, &authorsFound,
		&highestHIndex, &averageHIndex, &notableAuthors,
		&authorHIndexes,
		&createdRaw, &updatedRaw,
	)
	if err := rows.Scan(dests...); err != nil {
		return nil, eris.Wrap(err, "importer: scan paper")
	}

	published, err := parseDay(publishedRaw)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: paper %s: published_date", id)
	}
	created, err := parseTimestamp(createdRaw.String)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: paper %s: created_at", id)
	}
	updated, err := parseTimestamp(updatedRaw.String)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: paper %s: updated_at", id)
	}

	row := []any{
		id, title,
		textOr(authors, "[]"), textOr(categories, "[]"), textOr(abstract, ""),
		published,
		nullText(arxivURL), nullText(pdfURL), nullText(latexURL),
	}
	for _, t := range topics {
		row = append(row,
			nullFloat64(t.score),
			nullText(t.relevance),
			nullText(t.justification),
		)
	}
	row = append(row,
		textOr(scoringStatus, catalog.ScoringNotStarted),
		nullText(summary),
		nullText(novelty), nullText(noveltyWhy),
		nullText(impact), nullText(impactWhy),
		nullText(recommendation), nullText(recoWhy),
		textOr(hIndexStatus, catalog.HIndexNotFetched),
		nullInt(totalAuthors), nullInt(authorsFound),
		nullInt(highestHIndex), nullFloat64(averageHIndex), nullInt(notableAuthors),
		nullText(authorHIndexes),
		created, updated,
	)
	return row, nil
}

func parseDay(raw string) (time.Time, error) {
	if len(raw) >= 10 {
		raw = raw[:10]
	}
	return time.Parse("2006-01-02", raw)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("importer: unrecognized timestamp %q", raw)
}

func textOr(v sql.NullString, fallback string) string {
	if v.Valid && v.String != "" {
		return v.String
	}
	return fallback
}

func nullText(v sql.NullString) any {
	if v.Valid {
		return v.String
	}
	return nil
}

func nullInt(v sql.NullInt64) any {
	if v.Valid {
		return v.Int64
	}
	return nil
}

func nullFloat64(v sql.NullFloat64) any {
	if v.Valid {
		return v.Float64
	}
	return nil
}
