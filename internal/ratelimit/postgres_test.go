package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Take_Admitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	resetAt := now.Add(15 * time.Minute)

	mock.ExpectQuery("INSERT INTO rate_limits").
		WithArgs("1.2.3.4", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(2, resetAt))

	s := NewPostgresStore(db)
	entry, ok, err := s.Take(context.Background(), "1.2.3.4", testPolicy(), now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, entry.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Take_Rejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO rate_limits").
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(4, now.Add(time.Minute)))

	s := NewPostgresStore(db)
	_, ok, err := s.Take(context.Background(), "1.2.3.4", testPolicy(), now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStore_Take_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO rate_limits").WillReturnError(assert.AnError)

	s := NewPostgresStore(db)
	_, _, err = s.Take(context.Background(), "1.2.3.4", testPolicy(), time.Now())
	assert.ErrorContains(t, err, "rate limit upsert")
}
