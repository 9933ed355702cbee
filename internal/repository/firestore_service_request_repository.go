package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

type firestoreServiceRequestRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreServiceRequestRepository stores requests as documents with fields
// serviceName, userName, userTelephone, serviceRequest, status and timestamp.
// Listings come back in backend order; no sort is applied.
func NewFirestoreServiceRequestRepository(client *firestore.Client, collection string) ServiceRequestRepository {
	return &firestoreServiceRequestRepository{client: client, collection: collection}
}

func (r *firestoreServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	ref, _, err := r.client.Collection(r.collection).Add(ctx, req)
	if err != nil {
		return mapFirestoreError(err)
	}
	req.ID = ref.ID
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (r *firestoreServiceRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
	})
	return mapFirestoreError(err)
}

func (r *firestoreServiceRequestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	query := r.client.Collection(r.collection).Query
	if filter.RequesterTelephone != nil {
		query = query.Where("userTelephone", "==", *filter.RequesterTelephone)
	}
	if filter.RequesterName != nil {
		query = query.Where("userName", "==", *filter.RequesterName)
	}
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	return decodeServiceRequests(docs)
}

func (r *firestoreServiceRequestRepository) DeleteMatching(ctx context.Context, match RequestMatch) (int, error) {
	docs, err := r.client.Collection(r.collection).
		Where("serviceName", "==", match.ServiceName).
		Where("serviceRequest", "==", match.RequestText).
		Where("status", "==", string(match.Status)).
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, mapFirestoreError(err)
	}
	deleted := 0
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return deleted, mapFirestoreError(err)
		}
		deleted++
	}
	return deleted, nil
}

func decodeServiceRequests(docs []*firestore.DocumentSnapshot) ([]domain.ServiceRequest, error) {
	result := make([]domain.ServiceRequest, 0, len(docs))
	for _, doc := range docs {
		var req domain.ServiceRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, err
		}
		req.ID = doc.Ref.ID
		result = append(result, req)
	}
	return result, nil
}
