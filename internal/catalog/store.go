package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/paperscope/paperscope/internal/db"
)

// ListResult is one page of papers together with the aggregates the
// listing response reports alongside it. TotalCount counts rows under
// the full filter; the remaining fields are computed under the date
// filter alone so they describe the browsed day rather than the
// narrowed page.
type ListResult struct {
	Papers           []*Paper
	TotalCount       int
	DateTotal        int
	StartDate        *Date
	EndDate          *Date
	MaxHighestHIndex *int
	MaxAverageHIndex *float64
}

// DateBucket aggregates one published_date.
type DateBucket struct {
	Date       Date `json:"date"`
	Total      int  `json:"totalPapers"`
	MustRead   int  `json:"mustReadCount"`
	ShouldRead int  `json:"shouldReadCount"`
}

// MetadataResult summarizes the whole catalogue per date, newest first.
type MetadataResult struct {
	Dates      []DateBucket `json:"dates"`
	Total      int          `json:"totalPapers"`
	MustRead   int          `json:"mustReadCount"`
	ShouldRead int          `json:"shouldReadCount"`
}

// Store is the read surface the HTTP layer depends on.
type Store interface {
	ListPapers(ctx context.Context, p *ListParams) (*ListResult, error)
	GetPaper(ctx context.Context, id string) (*Paper, error)
	Metadata(ctx context.Context) (*MetadataResult, error)
}

// PostgresStore implements Store over a Postgres pool.
type PostgresStore struct {
	pool db.Pool
}

func NewStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const migrationSQL = `
CREATE TABLE IF NOT EXISTS papers (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    authors TEXT NOT NULL DEFAULT '[]',
    categories TEXT NOT NULL DEFAULT '[]',
    abstract TEXT NOT NULL DEFAULT '',
    published_date DATE NOT NULL,
    arxiv_url TEXT,
    pdf_url TEXT,
    latex_url TEXT,
    agentic_ai_score DOUBLE PRECISION,
    agentic_ai_relevance TEXT DEFAULT 'not_validated',
    agentic_ai_justification TEXT,
    proximal_policy_optimization_score DOUBLE PRECISION,
    proximal_policy_optimization_relevance TEXT DEFAULT 'not_validated',
    proximal_policy_optimization_justification TEXT,
    reinforcement_learning_score DOUBLE PRECISION,
    reinforcement_learning_relevance TEXT DEFAULT 'not_validated',
    reinforcement_learning_justification TEXT,
    reasoning_models_score DOUBLE PRECISION,
    reasoning_models_relevance TEXT DEFAULT 'not_validated',
    reasoning_models_justification TEXT,
    inference_time_scaling_score DOUBLE PRECISION,
    inference_time_scaling_relevance TEXT DEFAULT 'not_validated',
    inference_time_scaling_justification TEXT,
    llm_score_status TEXT NOT NULL DEFAULT 'not_scored',
    summary TEXT,
    novelty_score TEXT,
    novelty_justification TEXT,
    impact_score TEXT,
    impact_justification TEXT,
    recommendation_score TEXT,
    recommendation_justification TEXT,
    h_index_status TEXT NOT NULL DEFAULT 'not_fetched',
    total_authors INTEGER,
    authors_found INTEGER,
    highest_h_index INTEGER,
    average_h_index DOUBLE PRECISION,
    notable_authors_count INTEGER,
    author_h_indexes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_papers_published_date ON papers (published_date);
CREATE INDEX IF NOT EXISTS idx_papers_recommendation ON papers (recommendation_score);
CREATE INDEX IF NOT EXISTS idx_papers_h_index_status ON papers (h_index_status);
`

// Migrate creates the papers table and its indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return eris.Wrap(err, "catalog: migrate")
	}
	return nil
}

// ListPapers runs the page query and the three aggregate reads
// concurrently. Any failing read fails the whole call.
func (s *PostgresStore) ListPapers(ctx context.Context, p *ListParams) (*ListResult, error) {
	full := BuildFilter(p)
	dateOnly := DateFilter(p)
	res := &ListResult{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		papers, err := s.queryPage(ctx, p, full)
		if err != nil {
			return err
		}
		res.Papers = papers
		return nil
	})

	g.Go(func() error {
		n, err := s.queryCount(ctx, full)
		if err != nil {
			return eris.Wrap(err, "catalog: count papers")
		}
		res.TotalCount = n
		return nil
	})

	g.Go(func() error {
		n, err := s.queryCount(ctx, dateOnly)
		if err != nil {
			return eris.Wrap(err, "catalog: count date papers")
		}
		res.DateTotal = n
		return nil
	})

	g.Go(func() error {
		return s.queryDateAggregates(ctx, dateOnly, res)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, paper := range res.Papers {
		if err := checkAuthorMetrics(paper); err != nil {
			return nil, err
		}
		if p.Topics.Mode == ModeList {
			narrowTopics(paper, p.EffectiveTopics())
		}
	}
	return res, nil
}

func (s *PostgresStore) queryPage(ctx context.Context, p *ListParams, f Filter) ([]*Paper, error) {
	where, args := f.Compile(0)
	sql := "SELECT " + paperColumns + " FROM papers"
	if where != "" {
		sql += " WHERE " + where
	}
	sql += " ORDER BY " + BuildOrderBy(p)
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list papers")
	}
	defer rows.Close()

	papers := make([]*Paper, 0, p.Limit)
	for rows.Next() {
		paper, err := scanPaper(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "catalog: scan paper")
		}
		papers = append(papers, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: list papers")
	}
	return papers, nil
}

func (s *PostgresStore) queryCount(ctx context.Context, f Filter) (int, error) {
	where, args := f.Compile(0)
	sql := "SELECT COUNT(*) FROM papers"
	if where != "" {
		sql += " WHERE " + where
	}
	var n int
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresStore) queryDateAggregates(ctx context.Context, f Filter, res *ListResult) error {
	where, args := f.Compile(0)
	sql := "SELECT MIN(published_date), MAX(published_date), MAX(highest_h_index), MAX(average_h_index) FROM papers"
	if where != "" {
		sql += " WHERE " + where
	}
	var minDate, maxDate *time.Time
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&minDate, &maxDate, &res.MaxHighestHIndex, &res.MaxAverageHIndex)
	if err != nil {
		return eris.Wrap(err, "catalog: date aggregates")
	}
	if minDate != nil {
		res.StartDate = &Date{*minDate}
	}
	if maxDate != nil {
		res.EndDate = &Date{*maxDate}
	}
	return nil
}

// GetPaper fetches a single paper by arXiv id. Returns ErrNotFound for
// an unknown id.
func (s *PostgresStore) GetPaper(ctx context.Context, id string) (*Paper, error) {
	sql := "SELECT " + paperColumns + " FROM papers WHERE id = $1"
	row := s.pool.QueryRow(ctx, sql, id)
	paper, err := scanPaper(row.Scan)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "catalog: get paper")
	}
	if err := checkAuthorMetrics(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

const metadataSQL = `
SELECT published_date,
       COUNT(*),
       COUNT(*) FILTER (WHERE recommendation_score = 'Must Read'),
       COUNT(*) FILTER (WHERE recommendation_score = 'Should Read')
FROM papers
GROUP BY published_date
ORDER BY published_date DESC`

// Metadata reports per-date counts, newest date first, plus the
// catalogue-wide totals.
func (s *PostgresStore) Metadata(ctx context.Context) (*MetadataResult, error) {
	rows, err := s.pool.Query(ctx, metadataSQL)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: metadata")
	}
	defer rows.Close()

	res := &MetadataResult{Dates: []DateBucket{}}
	for rows.Next() {
		var (
			day time.Time
			b   DateBucket
		)
		if err := rows.Scan(&day, &b.Total, &b.MustRead, &b.ShouldRead); err != nil {
			return nil, eris.Wrap(err, "catalog: scan metadata")
		}
		b.Date = Date{day}
		res.Dates = append(res.Dates, b)
		res.Total += b.Total
		res.MustRead += b.MustRead
		res.ShouldRead += b.ShouldRead
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: metadata")
	}
	return res, nil
}
