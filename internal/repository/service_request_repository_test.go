package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

var requestColumns = []string{
	"id", "service_name", "request_text", "requester_name", "requester_telephone", "status", "created_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestServiceRequestRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewServiceRequestRepository(mock)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO service_requests (service_name, request_text, requester_name, requester_telephone, status)")).
		WithArgs("Carpentry Service", "Need a fence built\n", "Jane Doe", "+254700000000", domain.RequestStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("req-1", created))

	req := &domain.ServiceRequest{
		ServiceName:        "Carpentry Service",
		RequestText:        "Need a fence built\n",
		RequesterName:      "Jane Doe",
		RequesterTelephone: "+254700000000",
		Status:             domain.RequestStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, created, req.CreatedAt)
}

func TestServiceRequestRepository_UpdateStatus(t *testing.T) {
	const query = `UPDATE service_requests SET status=$1 WHERE id::text=$2`

	t.Run("updates one row", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(domain.RequestStatusInProgress, "req-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateStatus(context.Background(), "req-1", domain.RequestStatusInProgress))
	})

	t.Run("unknown id", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(domain.RequestStatusComplete, "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(context.Background(), "missing", domain.RequestStatusComplete)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("driver error passes through", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		boom := errors.New("connection reset")
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(domain.RequestStatusComplete, "req-1").
			WillReturnError(boom)

		err := repo.UpdateStatus(context.Background(), "req-1", domain.RequestStatusComplete)
		assert.ErrorIs(t, err, boom)
	})
}

func TestServiceRequestRepository_List(t *testing.T) {
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	t.Run("unfiltered", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta("FROM service_requests WHERE 1=1 ORDER BY created_at, id")).
			WillReturnRows(pgxmock.NewRows(requestColumns).
				AddRow("req-1", "Storage", "Two pallets", "Jane Doe", "+254700000000", domain.RequestStatusPending, first).
				AddRow("req-2", "Car Rental", "Saloon for a week", "John Roe", "+254711111111", domain.RequestStatusReceived, second))

		got, err := repo.List(context.Background(), RequestFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.ServiceRequest{
			ID:                 "req-1",
			ServiceName:        "Storage",
			RequestText:        "Two pallets",
			RequesterName:      "Jane Doe",
			RequesterTelephone: "+254700000000",
			Status:             domain.RequestStatusPending,
			CreatedAt:          first,
		}, got[0])
		assert.Equal(t, domain.RequestStatusReceived, got[1].Status)
	})

	t.Run("filters by telephone and name", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		tel, name := "+254700000000", "Jane Doe"
		mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND requester_telephone=$1 AND requester_name=$2 ORDER BY created_at, id")).
			WithArgs(tel, name).
			WillReturnRows(pgxmock.NewRows(requestColumns))

		got, err := repo.List(context.Background(), RequestFilter{RequesterTelephone: &tel, RequesterName: &name})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("name only takes the first placeholder", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		name := "Jane Doe"
		mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND requester_name=$1 ORDER BY")).
			WithArgs(name).
			WillReturnRows(pgxmock.NewRows(requestColumns).
				AddRow("req-1", "Storage", "Two pallets", name, "+254700000000", domain.RequestStatusPending, first))

		got, err := repo.List(context.Background(), RequestFilter{RequesterName: &name})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, name, got[0].RequesterName)
	})
}

func TestServiceRequestRepository_DeleteMatching(t *testing.T) {
	const query = `DELETE FROM service_requests WHERE service_name=$1 AND request_text=$2 AND status=$3`
	match := RequestMatch{
		ServiceName: "Carpentry Service",
		RequestText: "Need a fence built\n",
		Status:      domain.RequestStatusPending,
	}

	t.Run("returns deleted count", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(match.ServiceName, match.RequestText, match.Status).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		deleted, err := repo.DeleteMatching(context.Background(), match)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)
	})

	t.Run("nothing matched", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewServiceRequestRepository(mock)
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(match.ServiceName, match.RequestText, match.Status).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		deleted, err := repo.DeleteMatching(context.Background(), match)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("create maps unique violation", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (first_name, surname, telephone, pin_digest, is_admin)")).
			WithArgs("Jane", "Doe", "+254700000000", "digest", false).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.Create(ctx, &domain.UserAccount{FirstName: "Jane", Surname: "Doe", Telephone: "+254700000000", PINDigest: "digest"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get by telephone", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE telephone=$1")).
			WithArgs("+254700000000").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "first_name", "surname", "telephone", "pin_digest", "is_admin", "created_at", "updated_at",
			}).AddRow("user-1", "Jane", "Doe", "+254700000000", "digest", true, now, now))

		user, err := repo.GetByTelephone(ctx, "+254700000000")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.True(t, user.IsAdmin)
		assert.Equal(t, "digest", user.PINDigest)
	})

	t.Run("get unknown telephone", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE telephone=$1")).
			WithArgs("+254799999999").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "first_name", "surname", "telephone", "pin_digest", "is_admin", "created_at", "updated_at",
			}))

		_, err := repo.GetByTelephone(ctx, "+254799999999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update pin of missing user", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewUserRepository(mock)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET pin_digest=$1, updated_at=NOW() WHERE id=$2")).
			WithArgs("digest", "user-9").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePIN(ctx, "user-9", "digest")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
