package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "citations", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"citations"}, []string{"extraction_id", "citation_text"}).WillReturnResult(2)

	rows := [][]any{{"e-1", "dated 01/15/2024"}, {"e-2", "price of $50,000"}}
	n, err := CopyFrom(context.Background(), mock, "citations", []string{"extraction_id", "citation_text"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"citations"}, []string{"extraction_id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "citations", []string{"extraction_id"}, [][]any{{"e-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO citations")
	assert.NoError(t, mock.ExpectationsWereMet())
}
