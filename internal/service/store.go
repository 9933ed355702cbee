package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/service-marketplace/internal/repository"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

const defaultStoreTimeout = 10 * time.Second

// storeCall bounds a single backend call with a deadline.
type storeCall struct {
	timeout time.Duration
}

func newStoreCall(timeout time.Duration) storeCall {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return storeCall{timeout: timeout}
}

func (s storeCall) context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

// storeError converts repository sentinels into domain errors. Anything
// unrecognized is a backend failure.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	default:
		return apperrors.NewStoreUnavailable(err)
	}
}
