package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/repository"
)

var errBackendDown = errors.New("backend down")

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.UserAccount
	seq   int
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.UserAccount{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[user.Telephone]; ok {
		return repository.ErrDuplicate
	}
	r.seq++
	user.ID = "u-" + strconv.Itoa(r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Telephone] = *user
	return nil
}

func (r *memUserRepo) GetByTelephone(_ context.Context, telephone string) (*domain.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[telephone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) UpdatePIN(_ context.Context, id, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for tel, user := range r.users {
		if user.ID == id {
			user.PINDigest = digest
			r.users[tel] = user
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memRequestRepo struct {
	mu       sync.Mutex
	requests []domain.ServiceRequest
	seq      int
	err      error
	block    bool
}

func (r *memRequestRepo) Create(ctx context.Context, req *domain.ServiceRequest) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.seq++
	req.ID = "r-" + strconv.Itoa(r.seq)
	req.CreatedAt = time.Now()
	r.requests = append(r.requests, *req)
	return nil
}

func (r *memRequestRepo) UpdateStatus(_ context.Context, id string, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for i := range r.requests {
		if r.requests[i].ID == id {
			r.requests[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.ServiceRequest{}
	for _, req := range r.requests {
		if filter.RequesterTelephone != nil && req.RequesterTelephone != *filter.RequesterTelephone {
			continue
		}
		if filter.RequesterName != nil && req.RequesterName != *filter.RequesterName {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *memRequestRepo) DeleteMatching(_ context.Context, match repository.RequestMatch) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	kept := r.requests[:0]
	deleted := 0
	for _, req := range r.requests {
		if req.ServiceName == match.ServiceName && req.RequestText == match.RequestText && req.Status == match.Status {
			deleted++
			continue
		}
		kept = append(kept, req)
	}
	r.requests = kept
	return deleted, nil
}

func (r *memRequestRepo) get(id string) (domain.ServiceRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ID == id {
			return req, true
		}
	}
	return domain.ServiceRequest{}, false
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type fakeDelivery struct {
	sent map[string]string
	err  error
}

func (d *fakeDelivery) DeliverPIN(_ context.Context, telephone, pin string) error {
	if d.err != nil {
		return d.err
	}
	if d.sent == nil {
		d.sent = map[string]string{}
	}
	d.sent[telephone] = pin
	return nil
}

type fakeProvider struct {
	created  []string
	existing map[string]string
	err      error
}

func (p *fakeProvider) CreateIdentity(_ context.Context, telephone string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, telephone)
	return "uid-" + telephone, nil
}

func (p *fakeProvider) LookupIdentity(_ context.Context, telephone string) (string, error) {
	if uid, ok := p.existing[telephone]; ok {
		return uid, nil
	}
	for _, tel := range p.created {
		if tel == telephone {
			return "uid-" + telephone, nil
		}
	}
	return "", nil
}

// recorder collects every event published on a dispatcher.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecorder(dispatcher events.Dispatcher) *recorder {
	rec := &recorder{}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, event)
			return nil
		})
	}
	return rec
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}
