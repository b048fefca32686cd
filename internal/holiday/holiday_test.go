package holiday

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/validate"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestListNewestFirst(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY date DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "reason", "created_at"}).
			AddRow("h2", time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), "Independence Day", now).
			AddRow("h1", time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), "Republic Day", now))

	list, err := NewService(repo).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-08-15", list[0].Date)
	assert.Equal(t, "Republic Day", list[1].Reason)
}

func TestCreateValidates(t *testing.T) {
	repo, mock := newMock(t)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Input{Date: "26/01/2024", Reason: "Republic Day"})
	assert.ErrorIs(t, err, validate.ErrInvalid)
	_, err = svc.Create(context.Background(), Input{Date: "2024-01-26", Reason: "  "})
	require.ErrorIs(t, err, validate.ErrInvalid)
	assert.Contains(t, validate.Message(err), "reason is required")

	mock.ExpectExec(`INSERT INTO holidays`).
		WithArgs(sqlmock.AnyArg(), "2024-01-26", "Republic Day", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	h, err := svc.Create(context.Background(), Input{Date: "2024-01-26", Reason: " Republic Day "})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Republic Day", h.Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newMock(t)
	svc := NewService(repo)
	id := "5f0c8f4e-1111-4d2a-9a7e-222222222222"

	assert.ErrorIs(t, svc.Delete(context.Background(), "bogus"), ErrNotFound)

	mock.ExpectExec(`DELETE FROM holidays`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrNotFound)

	mock.ExpectExec(`DELETE FROM holidays`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, svc.Delete(context.Background(), id))
}

func TestCount(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM holidays`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewService(repo).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
