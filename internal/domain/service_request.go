package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusReceived   RequestStatus = "Received"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusComplete   RequestStatus = "Complete"
	RequestStatusCanceled   RequestStatus = "Canceled"
)

// RequestStatuses lists every status in display order.
var RequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusReceived,
	RequestStatusInProgress,
	RequestStatusComplete,
	RequestStatusCanceled,
}

// Valid reports whether s is one of the enumerated statuses.
func (s RequestStatus) Valid() bool {
	for _, status := range RequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ServiceRequest is a user's request for a catalog service.
// RequesterName and RequesterTelephone are copied from the identity that created it.
type ServiceRequest struct {
	ID                 string        `firestore:"-"`
	ServiceName        string        `firestore:"serviceName"`
	RequestText        string        `firestore:"serviceRequest"`
	RequesterName      string        `firestore:"userName"`
	RequesterTelephone string        `firestore:"userTelephone"`
	Status             RequestStatus `firestore:"status"`
	CreatedAt          time.Time     `firestore:"timestamp,serverTimestamp"`
}
