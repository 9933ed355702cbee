package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/observability"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

func newRequestFixture(t *testing.T) (*RequestService, *memRequestRepo, *recorder) {
	t.Helper()
	repo := &memRequestRepo{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := newRecorder(dispatcher)
	svc := NewRequestService(testConfig(), RequestDependencies{
		RequestRepo: repo,
		Dispatcher:  dispatcher,
		Metrics:     observability.NewMetrics("test"),
	})
	return svc, repo, rec
}

func submitFence(t *testing.T, svc *RequestService) *domain.ServiceRequest {
	t.Helper()
	req, err := svc.Submit(context.Background(), SubmitInput{
		ServiceName:        "Construction",
		RequesterName:      "Jane Doe",
		RequesterTelephone: janeTel,
		RequestText:        "Need a fence built",
	})
	require.NoError(t, err)
	return req
}

func TestRequestService_Submit(t *testing.T) {
	svc, repo, rec := newRequestFixture(t)

	req := submitFence(t, svc)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, "Jane Doe", req.RequesterName)
	assert.Equal(t, janeTel, req.RequesterTelephone)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Equal(t, []events.EventType{events.EventRequestSubmitted}, rec.types())

	stored, ok := repo.get(req.ID)
	require.True(t, ok)
	assert.Equal(t, "Need a fence built", stored.RequestText)
}

func TestRequestService_SubmitValidation(t *testing.T) {
	svc, repo, _ := newRequestFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitInput{ServiceName: "Construction", RequestText: "   "})
	assert.True(t, apperrors.IsKind(err, apperrors.CodeValidationFailed))

	_, err = svc.Submit(ctx, SubmitInput{ServiceName: "Plumbing", RequestText: "Leaking tap"})
	assert.True(t, apperrors.IsKind(err, apperrors.CodeValidationFailed))

	assert.Empty(t, repo.requests)
}

func TestRequestService_SubmitStoreFailures(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		svc, repo, rec := newRequestFixture(t)
		repo.err = errBackendDown

		_, err := svc.Submit(context.Background(), SubmitInput{ServiceName: "Cleaning", RequestText: "Office"})
		assert.True(t, apperrors.IsKind(err, apperrors.CodeStoreUnavailable))
		assert.Empty(t, rec.types())
	})

	t.Run("call deadline", func(t *testing.T) {
		svc, repo, _ := newRequestFixture(t)
		repo.block = true
		svc.store = newStoreCall(20 * time.Millisecond)

		_, err := svc.Submit(context.Background(), SubmitInput{ServiceName: "Cleaning", RequestText: "Office"})
		assert.True(t, apperrors.IsKind(err, apperrors.CodeStoreUnavailable))
	})
}

func TestRequestService_SetStatus(t *testing.T) {
	svc, repo, rec := newRequestFixture(t)
	ctx := context.Background()
	req := submitFence(t, svc)

	require.NoError(t, svc.SetStatus(ctx, req.ID, domain.RequestStatusInProgress))

	stored, ok := repo.get(req.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusInProgress, stored.Status)
	assert.Equal(t, req.ServiceName, stored.ServiceName)
	assert.Equal(t, req.RequestText, stored.RequestText)
	assert.Equal(t, req.RequesterName, stored.RequesterName)
	assert.Equal(t, req.RequesterTelephone, stored.RequesterTelephone)
	assert.Equal(t, req.CreatedAt, stored.CreatedAt)
	assert.Contains(t, rec.types(), events.EventRequestStatusChanged)
}

func TestRequestService_SetStatusAnyOrder(t *testing.T) {
	svc, repo, _ := newRequestFixture(t)
	ctx := context.Background()
	req := submitFence(t, svc)

	for _, status := range domain.RequestStatuses {
		require.NoError(t, svc.SetStatus(ctx, req.ID, status))
		stored, _ := repo.get(req.ID)
		assert.Equal(t, status, stored.Status)
	}
	require.NoError(t, svc.SetStatus(ctx, req.ID, domain.RequestStatusPending))
}

func TestRequestService_SetStatusFailures(t *testing.T) {
	svc, repo, _ := newRequestFixture(t)
	ctx := context.Background()
	req := submitFence(t, svc)

	err := svc.SetStatus(ctx, req.ID, domain.RequestStatus("Done"))
	assert.True(t, apperrors.IsKind(err, apperrors.CodeValidationFailed))

	err = svc.SetStatus(ctx, "missing", domain.RequestStatusComplete)
	assert.True(t, apperrors.IsKind(err, apperrors.CodeNotFound))

	repo.err = errBackendDown
	err = svc.SetStatus(ctx, req.ID, domain.RequestStatusComplete)
	assert.True(t, apperrors.IsKind(err, apperrors.CodeStoreUnavailable))
}

func TestRequestService_Listing(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	ctx := context.Background()

	submitFence(t, svc)
	_, err := svc.Submit(ctx, SubmitInput{
		ServiceName:        "Cleaning",
		RequesterName:      "John Roe",
		RequesterTelephone: "+254711111111",
		RequestText:        "Carpets",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{
		ServiceName:        "Moving",
		RequesterName:      "Jane Doe",
		RequesterTelephone: janeTel,
		RequestText:        "Two rooms",
	})
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, janeTel, "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, req := range mine {
		assert.Equal(t, janeTel, req.RequesterTelephone)
	}

	named, err := svc.ListForUser(ctx, janeTel, "Someone Else")
	require.NoError(t, err)
	assert.Empty(t, named)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListForUser(ctx, "", "")
	assert.True(t, apperrors.IsKind(err, apperrors.CodeValidationFailed))
}

func TestRequestService_Cancel(t *testing.T) {
	svc, repo, rec := newRequestFixture(t)
	ctx := context.Background()

	first := submitFence(t, svc)
	second := submitFence(t, svc)
	other, err := svc.Submit(ctx, SubmitInput{
		ServiceName:        "Construction",
		RequesterName:      "Jane Doe",
		RequesterTelephone: janeTel,
		RequestText:        "Need a wall built",
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, second.ID, domain.RequestStatusReceived))

	deleted, err := svc.Cancel(ctx, CancelInput{
		ServiceName: "Construction",
		RequestText: "Need a fence built",
		Status:      domain.RequestStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ok := repo.get(first.ID)
	assert.False(t, ok)
	_, ok = repo.get(second.ID)
	assert.True(t, ok, "different status must survive")
	_, ok = repo.get(other.ID)
	assert.True(t, ok, "different text must survive")
	assert.Contains(t, rec.types(), events.EventRequestCanceled)
}

func TestRequestService_CancelEdgeCases(t *testing.T) {
	t.Run("no match is a no-op", func(t *testing.T) {
		svc, repo, rec := newRequestFixture(t)
		submitFence(t, svc)

		deleted, err := svc.Cancel(context.Background(), CancelInput{
			ServiceName: "Construction",
			RequestText: "Something else",
			Status:      domain.RequestStatusPending,
		})
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Len(t, repo.requests, 1)
		assert.NotContains(t, rec.types(), events.EventRequestCanceled)
	})

	t.Run("identical requests are all removed", func(t *testing.T) {
		svc, repo, _ := newRequestFixture(t)
		submitFence(t, svc)
		submitFence(t, svc)

		deleted, err := svc.Cancel(context.Background(), CancelInput{
			ServiceName: "Construction",
			RequestText: "Need a fence built",
			Status:      domain.RequestStatusPending,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)
		assert.Empty(t, repo.requests)
	})

	t.Run("text with surrounding whitespace round-trips", func(t *testing.T) {
		svc, repo, _ := newRequestFixture(t)
		const text = "  Need a fence built\n"
		req, err := svc.Submit(context.Background(), SubmitInput{
			ServiceName:        "Construction",
			RequesterName:      "Jane Doe",
			RequesterTelephone: janeTel,
			RequestText:        text,
		})
		require.NoError(t, err)
		stored, ok := repo.get(req.ID)
		require.True(t, ok)
		assert.Equal(t, text, stored.RequestText)

		deleted, err := svc.Cancel(context.Background(), CancelInput{
			ServiceName: "Construction",
			RequestText: text,
			Status:      domain.RequestStatusPending,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.Empty(t, repo.requests)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _, _ := newRequestFixture(t)
		_, err := svc.Cancel(context.Background(), CancelInput{ServiceName: "Construction", Status: "Gone"})
		assert.True(t, apperrors.IsKind(err, apperrors.CodeValidationFailed))
	})

	t.Run("backend failure is surfaced", func(t *testing.T) {
		svc, repo, _ := newRequestFixture(t)
		repo.err = errBackendDown
		_, err := svc.Cancel(context.Background(), CancelInput{
			ServiceName: "Construction",
			RequestText: "Need a fence built",
			Status:      domain.RequestStatusPending,
		})
		assert.True(t, apperrors.IsKind(err, apperrors.CodeStoreUnavailable))
	})
}
