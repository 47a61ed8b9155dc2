package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, "papers", []string{"id", "title"}, []string{"id"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, "papers", nil, []string{"id"}, [][]any{{"x", "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, "papers", []string{"id", "title"}, nil, [][]any{{"x", "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_AllColumnsAreKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, "papers", []string{"id"}, []string{"id"}, [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no updatable columns")
}

func TestBulkUpsert_HappyPath(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"2501.04519", "First"},
		{"2501.05707", "Second"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_papers" \(LIKE "papers" INCLUDING DEFAULTS\) ON COMMIT DROP`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_papers"}, []string{"id", "title"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "papers" \("id", "title"\) SELECT "id", "title" FROM "_tmp_upsert_papers" ON CONFLICT \("id"\) DO UPDATE SET "title" = EXCLUDED\."title"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, "papers", []string{"id", "title"}, []string{"id"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_papers"}, []string{"id", "title"}).
		WillReturnError(eris.New("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, "papers", []string{"id", "title"}, []string{"id"}, [][]any{{"x", "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_KeyColumnsExcludedFromUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_papers"}, []string{"id", "title", "abstract"}).
		WillReturnResult(1)
	mock.ExpectExec(`DO UPDATE SET "title" = EXCLUDED\."title", "abstract" = EXCLUDED\."abstract"$`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, "papers",
		[]string{"id", "title", "abstract"}, []string{"id"},
		[][]any{{"2501.04519", "Title", "Abstract"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
