package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

const signUpDraftKeyPrefix = "signup:draft:"

// SignUpDraftRepository keeps in-progress registrations between steps.
type SignUpDraftRepository interface {
	Save(ctx context.Context, draft *domain.SignUpDraft) error
	Get(ctx context.Context, id string) (*domain.SignUpDraft, error)
	Delete(ctx context.Context, id string) error
}

type redisSignUpDraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSignUpDraftRepository stores drafts as JSON with a sliding TTL.
func NewSignUpDraftRepository(client *redis.Client, ttl time.Duration) SignUpDraftRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &redisSignUpDraftRepository{client: client, ttl: ttl}
}

func (r *redisSignUpDraftRepository) Save(ctx context.Context, draft *domain.SignUpDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, signUpDraftKeyPrefix+draft.ID, payload, r.ttl).Err()
}

func (r *redisSignUpDraftRepository) Get(ctx context.Context, id string) (*domain.SignUpDraft, error) {
	payload, err := r.client.Get(ctx, signUpDraftKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var draft domain.SignUpDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *redisSignUpDraftRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, signUpDraftKeyPrefix+id).Err()
}
