package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

// RequestFilter narrows request listings. Nil fields do not filter.
type RequestFilter struct {
	RequesterTelephone *string
	RequesterName      *string
}

// RequestMatch is the exact value triple used to cancel requests.
type RequestMatch struct {
	ServiceName string
	RequestText string
	Status      domain.RequestStatus
}

// ServiceRequestRepository encapsulates service request persistence.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
	List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	DeleteMatching(ctx context.Context, match RequestMatch) (int, error)
}

type serviceRequestRepository struct {
	db DB
}

// NewServiceRequestRepository instantiates a Postgres-backed repository.
func NewServiceRequestRepository(db DB) ServiceRequestRepository {
	return &serviceRequestRepository{db: db}
}

func (r *serviceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (service_name, request_text, requester_name, requester_telephone, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		req.ServiceName,
		req.RequestText,
		req.RequesterName,
		req.RequesterTelephone,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	return mapPgError(err)
}

func (r *serviceRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	const query = `UPDATE service_requests SET status=$1 WHERE id::text=$2`
	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serviceRequestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	base := `SELECT id, service_name, request_text, requester_name, requester_telephone, status, created_at
             FROM service_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterTelephone != nil {
		args = append(args, *filter.RequesterTelephone)
		clauses = append(clauses, fmt.Sprintf("requester_telephone=$%d", len(args)))
	}
	if filter.RequesterName != nil {
		args = append(args, *filter.RequesterName)
		clauses = append(clauses, fmt.Sprintf("requester_name=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at, id`, base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanServiceRequests(rows)
}

func (r *serviceRequestRepository) DeleteMatching(ctx context.Context, match RequestMatch) (int, error) {
	const query = `
        DELETE FROM service_requests
        WHERE service_name=$1 AND request_text=$2 AND status=$3`
	cmd, err := r.db.Exec(ctx, query, match.ServiceName, match.RequestText, match.Status)
	if err != nil {
		return 0, mapPgError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func scanServiceRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	result := []domain.ServiceRequest{}
	for rows.Next() {
		var req domain.ServiceRequest
		if err := rows.Scan(
			&req.ID,
			&req.ServiceName,
			&req.RequestText,
			&req.RequesterName,
			&req.RequesterTelephone,
			&req.Status,
			&req.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
