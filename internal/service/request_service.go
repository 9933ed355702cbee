package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/service-marketplace/internal/config"
	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/observability"
	"github.com/spec-kit/service-marketplace/internal/repository"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

// RequestService manages the service request lifecycle and its listings.
type RequestService struct {
	requests   repository.ServiceRequestRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	store      storeCall
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.ServiceRequestRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// SubmitInput describes a new service request. Requester fields come from
// the authenticated identity, never from the request body.
type SubmitInput struct {
	ServiceName        string
	RequesterName      string
	RequesterTelephone string
	RequestText        string
}

// CancelInput is the value triple a cancellation matches on.
type CancelInput struct {
	ServiceName string
	RequestText string
	Status      domain.RequestStatus
}

// NewRequestService constructs the service.
func NewRequestService(cfg config.Config, deps RequestDependencies) *RequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		store:      newStoreCall(cfg.Store.CallTimeout()),
	}
}

// Submit stores a new request in the Pending state.
func (s *RequestService) Submit(ctx context.Context, input SubmitInput) (*domain.ServiceRequest, error) {
	if strings.TrimSpace(input.RequestText) == "" {
		return nil, apperrors.NewValidationError("Please enter your request", nil)
	}
	if !domain.IsCatalogService(input.ServiceName) {
		return nil, apperrors.NewValidationError("unknown service",
			map[string]any{"service_name": input.ServiceName})
	}

	req := &domain.ServiceRequest{
		ServiceName:        input.ServiceName,
		RequestText:        input.RequestText,
		RequesterName:      input.RequesterName,
		RequesterTelephone: input.RequesterTelephone,
		Status:             domain.RequestStatusPending,
	}

	callCtx, cancel := s.store.context(ctx)
	err := s.requests.Create(callCtx, req)
	cancel()
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.metrics.RecordSubmitted(req.ServiceName)
	s.publish(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Telephone: req.RequesterTelephone,
		Payload: events.RequestSubmittedPayload{
			ServiceName:   req.ServiceName,
			RequesterName: req.RequesterName,
		},
	})
	return req, nil
}

// SetStatus overwrites a request's status. Any status may follow any other.
func (s *RequestService) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("request id is required", nil)
	}
	if !status.Valid() {
		return apperrors.NewValidationError("invalid status",
			map[string]any{"allowed": domain.RequestStatuses})
	}

	callCtx, cancel := s.store.context(ctx)
	err := s.requests.UpdateStatus(callCtx, id, status)
	cancel()
	if err != nil {
		return storeError(err, "service request")
	}

	s.metrics.RecordStatusChange(string(status))
	s.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: id,
		Payload:   events.RequestStatusChangedPayload{NewStatus: status},
	})
	return nil
}

// Cancel deletes every request whose service, text and status all match.
// It returns how many were removed; zero is not an error.
func (s *RequestService) Cancel(ctx context.Context, input CancelInput) (int, error) {
	if !input.Status.Valid() {
		return 0, apperrors.NewValidationError("invalid status",
			map[string]any{"allowed": domain.RequestStatuses})
	}

	callCtx, cancel := s.store.context(ctx)
	deleted, err := s.requests.DeleteMatching(callCtx, repository.RequestMatch{
		ServiceName: input.ServiceName,
		RequestText: input.RequestText,
		Status:      input.Status,
	})
	cancel()
	if err != nil {
		s.logger.Error("cancel request", zap.String("service", input.ServiceName), zap.Error(err))
		return 0, apperrors.NewStoreUnavailable(err)
	}
	if deleted == 0 {
		return 0, nil
	}

	s.publish(ctx, events.Event{
		Type: events.EventRequestCanceled,
		Payload: events.RequestCanceledPayload{
			ServiceName: input.ServiceName,
			Status:      input.Status,
			Deleted:     deleted,
		},
	})
	return deleted, nil
}

// ListForUser returns requests raised from telephone, narrowed to name when given.
func (s *RequestService) ListForUser(ctx context.Context, telephone, name string) ([]domain.ServiceRequest, error) {
	if strings.TrimSpace(telephone) == "" {
		return nil, apperrors.NewValidationError("telephone is required", nil)
	}
	filter := repository.RequestFilter{RequesterTelephone: &telephone}
	if name != "" {
		filter.RequesterName = &name
	}
	return s.list(ctx, filter)
}

// ListAll returns every request from every user.
func (s *RequestService) ListAll(ctx context.Context) ([]domain.ServiceRequest, error) {
	return s.list(ctx, repository.RequestFilter{})
}

func (s *RequestService) list(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	requests, err := s.requests.List(callCtx, filter)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return requests, nil
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
