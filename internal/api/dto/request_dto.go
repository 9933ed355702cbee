package dto

import (
	"time"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

// SubmitRequestPayload payload. The requester comes from the bearer token.
type SubmitRequestPayload struct {
	ServiceName string `json:"service_name"`
	RequestText string `json:"request_text"`
}

// CancelRequestPayload identifies requests to cancel by value.
type CancelRequestPayload struct {
	ServiceName string               `json:"service_name"`
	RequestText string               `json:"request_text"`
	Status      domain.RequestStatus `json:"status"`
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status domain.RequestStatus `json:"status"`
}

// ServiceRequestResponse response.
type ServiceRequestResponse struct {
	ID                 string               `json:"id"`
	ServiceName        string               `json:"service_name"`
	RequestText        string               `json:"request_text"`
	RequesterName      string               `json:"requester_name"`
	RequesterTelephone string               `json:"requester_telephone"`
	Status             domain.RequestStatus `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
}

// NewServiceRequestResponse maps a domain request.
func NewServiceRequestResponse(req *domain.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:                 req.ID,
		ServiceName:        req.ServiceName,
		RequestText:        req.RequestText,
		RequesterName:      req.RequesterName,
		RequesterTelephone: req.RequesterTelephone,
		Status:             req.Status,
		CreatedAt:          req.CreatedAt,
	}
}

// NewServiceRequestList maps a listing.
func NewServiceRequestList(requests []domain.ServiceRequest) []ServiceRequestResponse {
	items := make([]ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, NewServiceRequestResponse(&requests[i]))
	}
	return items
}
