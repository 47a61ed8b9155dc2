package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fl(v float64) *float64 { return &v }
func in(v int) *int         { return &v }
func st(v string) *string   { return &v }

var testDay = time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

// paperRow returns one full row in paper column order, representing a
// completed paper with h-index data.
func paperRow(id string) []any {
	row := []any{
		id, "Scaling Test-Time Compute",
		[]byte(`["Ada Lovelace","Alan Turing"]`), []byte(`["cs.LG","cs.AI"]`),
		"We study inference-time scaling.", testDay,
		st("https://arxiv.org/abs/" + id), st("https://arxiv.org/pdf/" + id), (*string)(nil),
	}
	for range Topics {
		row = append(row, fl(0.82), st(RelevanceHighly), st("strong topical match"))
	}
	row = append(row,
		ScoringCompleted, st("A concise summary."),
		st("High"), st("novel approach"),
		st("Moderate"), st("solid benchmarks"),
		st(RecommendationMustRead), st("read this one"),
		HIndexCompleted, in(2), in(2),
		in(45), fl(30.5), in(1),
		[]byte(`[{"name":"Ada Lovelace","h_index":45,"profile_url":null}]`),
		time.Now(), time.Now(),
	)
	return row
}

func listMockSetup(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	// The page query and the aggregate reads run concurrently.
	mock.MatchExpectationsInOrder(false)
	return mock, NewStore(mock)
}

func TestPostgresStore_ListPapers(t *testing.T) {
	mock, store := listMockSetup(t)
	defer mock.Close()

	p := mustParams(t, map[string]string{
		"date":           "2025-01-08",
		"recommendation": "must_read",
	})

	mock.ExpectQuery(`SELECT id, title, authors.+ FROM papers WHERE published_date = \$1 AND recommendation_score IN \(\$2\) ORDER BY .+ LIMIT \$3 OFFSET \$4`).
		WithArgs("2025-01-08", "Must Read", 30, 0).
		WillReturnRows(pgxmock.NewRows(PaperColumns()).
			AddRow(paperRow("2501.04519")...).
			AddRow(paperRow("2501.05707")...))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1 AND recommendation_score IN \(\$2\)`).
		WithArgs("2025-01-08", "Must Read").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(17))

	mock.ExpectQuery(`SELECT MIN\(published_date\), MAX\(published_date\), MAX\(highest_h_index\), MAX\(average_h_index\) FROM papers WHERE published_date = \$1`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"min", "max", "max_h", "max_avg"}).
			AddRow(&testDay, &testDay, in(45), fl(30.5)))

	res, err := store.ListPapers(context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, res.Papers, 2)
	assert.Equal(t, "2501.04519", res.Papers[0].ID)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 17, res.DateTotal)
	require.NotNil(t, res.StartDate)
	assert.Equal(t, "2025-01-08", res.StartDate.Format("2006-01-02"))
	assert.Equal(t, 45, *res.MaxHighestHIndex)
	assert.InDelta(t, 30.5, *res.MaxAverageHIndex, 0.001)

	// Topics mode all keeps every topic's assessment.
	paper := res.Papers[0]
	for _, topic := range Topics {
		require.NotNil(t, paper.Topics[topic].Score)
	}
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, paper.Authors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPapers_TopicNulling(t *testing.T) {
	mock, store := listMockSetup(t)
	defer mock.Close()

	p := mustParams(t, map[string]string{
		"date":   "2025-01-08",
		"topics": "agentic_ai",
	})

	mock.ExpectQuery(`SELECT id, title, authors.+ FROM papers WHERE published_date = \$1 ORDER BY .+ LIMIT \$2 OFFSET \$3`).
		WithArgs("2025-01-08", 30, 0).
		WillReturnRows(pgxmock.NewRows(PaperColumns()).AddRow(paperRow("2501.04519")...))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT MIN\(published_date\), MAX\(published_date\)`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"min", "max", "max_h", "max_avg"}).
			AddRow(&testDay, &testDay, in(45), fl(30.5)))

	res, err := store.ListPapers(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Papers, 1)

	paper := res.Papers[0]
	require.NotNil(t, paper.Topics[TopicAgenticAI].Score)
	require.NotNil(t, paper.Topics[TopicAgenticAI].Relevance)
	for _, topic := range Topics {
		if topic == TopicAgenticAI {
			continue
		}
		assert.Nil(t, paper.Topics[topic].Score, "topic %s", topic)
		assert.Nil(t, paper.Topics[topic].Relevance, "topic %s", topic)
		assert.Nil(t, paper.Topics[topic].Justification, "topic %s", topic)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPapers_AuthorMetricsIntegrity(t *testing.T) {
	mock, store := listMockSetup(t)
	defer mock.Close()

	p := mustParams(t, map[string]string{"date": "2025-01-08"})

	// h_index_status claims completed but carries no data.
	row := paperRow("2501.04519")
	cols := PaperColumns()
	for i, col := range cols {
		switch col {
		case "highest_h_index", "average_h_index":
			row[i] = nil
		case "author_h_indexes":
			row[i] = []byte(`[]`)
		}
	}

	mock.ExpectQuery(`SELECT id, title, authors.+ FROM papers WHERE published_date = \$1 ORDER BY`).
		WithArgs("2025-01-08", 30, 0).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(row...))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT MIN\(published_date\), MAX\(published_date\)`).
		WithArgs("2025-01-08").
		WillReturnRows(pgxmock.NewRows([]string{"min", "max", "max_h", "max_avg"}).
			AddRow(&testDay, &testDay, nil, nil))

	_, err := store.ListPapers(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author metrics")
}

func TestPostgresStore_ListPapers_QueryFailureAbortsAll(t *testing.T) {
	mock, store := listMockSetup(t)
	defer mock.Close()

	p := mustParams(t, map[string]string{"date": "2025-01-08"})

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM papers WHERE published_date = \$1$`).
		WithArgs("2025-01-08").
		WillReturnError(eris.New("connection reset"))

	_, err := store.ListPapers(context.Background(), p)
	require.Error(t, err)
}

func TestPostgresStore_GetPaper(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)

	mock.ExpectQuery(`SELECT id, title, authors.+ FROM papers WHERE id = \$1`).
		WithArgs("2501.04519").
		WillReturnRows(pgxmock.NewRows(PaperColumns()).AddRow(paperRow("2501.04519")...))

	paper, err := store.GetPaper(context.Background(), "2501.04519")
	require.NoError(t, err)
	assert.Equal(t, "2501.04519", paper.ID)
	assert.Equal(t, "Scaling Test-Time Compute", paper.Title)
	require.Len(t, paper.AuthorMetrics.Authors, 1)
	assert.Equal(t, "Ada Lovelace", paper.AuthorMetrics.Authors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPaper_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)

	mock.ExpectQuery(`SELECT id, title, authors.+ FROM papers WHERE id = \$1`).
		WithArgs("2501.99999").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetPaper(context.Background(), "2501.99999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_Metadata(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)

	newer := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT published_date,\s+COUNT\(\*\)`).
		WillReturnRows(pgxmock.NewRows([]string{"published_date", "total", "must_read", "should_read"}).
			AddRow(newer, 12, 3, 5).
			AddRow(testDay, 8, 1, 2))

	res, err := store.Metadata(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Dates, 2)
	assert.Equal(t, "2025-01-09", res.Dates[0].Date.Format("2006-01-02"))
	assert.Equal(t, 12, res.Dates[0].Total)
	assert.Equal(t, 3, res.Dates[0].MustRead)
	assert.Equal(t, 20, res.Total)
	assert.Equal(t, 4, res.MustRead)
	assert.Equal(t, 7, res.ShouldRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS papers`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
