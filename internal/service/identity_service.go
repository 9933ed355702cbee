package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-marketplace/internal/auth"
	"github.com/spec-kit/service-marketplace/internal/config"
	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/repository"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

// maxPINLength keeps PINs well inside bcrypt's 72-byte input limit.
const maxPINLength = 12

var (
	telephonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	pinPattern       = regexp.MustCompile(`^[0-9]+$`)
)

// Locker reserves a key for the duration of a registration.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// PINDelivery sends a plaintext PIN to a telephone out of band.
type PINDelivery interface {
	DeliverPIN(ctx context.Context, telephone, pin string) error
}

// IdentityService coordinates registration, sign-in and PIN reset flows.
type IdentityService struct {
	users      repository.UserRepository
	drafts     repository.SignUpDraftRepository
	hasher     auth.Hasher
	provider   auth.IdentityProvider
	locker     Locker
	delivery   PINDelivery
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	store      storeCall
	now        func() time.Time
}

// IdentityDependencies encapsulates collaborators for the identity service.
type IdentityDependencies struct {
	UserRepo   repository.UserRepository
	DraftRepo  repository.SignUpDraftRepository
	Hasher     auth.Hasher
	Provider   auth.IdentityProvider
	Locker     Locker
	Delivery   PINDelivery
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput is the full sign-up payload.
type RegisterInput struct {
	FirstName  string
	Surname    string
	Telephone  string
	PIN        string
	ConfirmPIN string
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.SHA256Hasher{}
	}
	provider := deps.Provider
	if provider == nil {
		provider = auth.NoopProvider{Domain: cfg.Auth.PseudoEmailDomain}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		users:      deps.UserRepo,
		drafts:     deps.DraftRepo,
		hasher:     hasher,
		provider:   provider,
		locker:     deps.Locker,
		delivery:   deps.Delivery,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		store:      newStoreCall(cfg.Store.CallTimeout()),
		now:        time.Now,
	}
}

// Register creates a new non-admin account after checking the telephone is free.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*domain.UserAccount, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Surname = strings.TrimSpace(input.Surname)
	input.Telephone = normalizeTelephone(input.Telephone)

	if input.FirstName == "" || input.Surname == "" {
		return nil, apperrors.NewValidationError("First Name and Surname are required", nil)
	}
	if err := validateTelephone(input.Telephone); err != nil {
		return nil, err
	}
	if err := validatePIN(input.PIN); err != nil {
		return nil, err
	}
	if input.PIN != input.ConfirmPIN {
		return nil, apperrors.NewValidationError("PINs do not match", nil)
	}

	if s.locker != nil {
		locked, err := s.locker.Acquire(ctx, input.Telephone)
		if err != nil {
			return nil, apperrors.NewStoreUnavailable(err)
		}
		if !locked {
			return nil, apperrors.NewDuplicateIdentity("a registration for this telephone is already in progress")
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), input.Telephone); err != nil {
				s.logger.Warn("release registration lock", zap.Error(err))
			}
		}()
	}

	if err := s.ensureTelephoneFree(ctx, input.Telephone); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.PIN)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.UserAccount{
		FirstName: input.FirstName,
		Surname:   input.Surname,
		Telephone: input.Telephone,
		PINDigest: digest,
		IsAdmin:   false,
	}
	callCtx, cancel := s.store.context(ctx)
	err = s.users.Create(callCtx, user)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateTelephone()
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.createProviderIdentity(ctx, user.Telephone)

	s.publish(ctx, events.Event{
		Type:      events.EventUserRegistered,
		Telephone: user.Telephone,
		Payload:   events.UserRegisteredPayload{Name: user.DisplayName()},
	})
	return user, nil
}

// SignIn verifies the PIN for a telephone and returns the caller's identity.
func (s *IdentityService) SignIn(ctx context.Context, telephone, pin string) (*domain.Identity, error) {
	telephone = normalizeTelephone(telephone)
	if telephone == "" || pin == "" {
		return nil, apperrors.NewValidationError("telephone and PIN are required", nil)
	}

	user, err := s.lookup(ctx, telephone)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(user.PINDigest, pin) {
		return nil, apperrors.NewInvalidCredentials("Incorrect PIN. Please try again.")
	}

	identity := user.Identity()
	return &identity, nil
}

// ResetPIN replaces the account's PIN with a random one and delivers it.
// The old digest is gone once the store write succeeds, even if delivery fails.
func (s *IdentityService) ResetPIN(ctx context.Context, telephone string) error {
	telephone = normalizeTelephone(telephone)
	if telephone == "" {
		return apperrors.NewValidationError("telephone is required", nil)
	}

	if s.delivery == nil {
		return apperrors.NewDeliveryFailed(errors.New("no PIN delivery channel configured"))
	}

	user, err := s.lookup(ctx, telephone)
	if err != nil {
		return err
	}

	pin, err := auth.GeneratePIN()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	digest, err := s.hasher.Hash(pin)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	callCtx, cancel := s.store.context(ctx)
	err = s.users.UpdatePIN(callCtx, user.ID, digest)
	cancel()
	if err != nil {
		return storeError(err, "user")
	}

	if err := s.delivery.DeliverPIN(ctx, telephone, pin); err != nil {
		s.logger.Error("pin delivery failed", zap.String("telephone", telephone), zap.Error(err))
		return apperrors.NewDeliveryFailed(err)
	}

	s.publish(ctx, events.Event{Type: events.EventPINReset, Telephone: telephone})
	return nil
}

// CheckTelephone reports whether a telephone can still be registered.
func (s *IdentityService) CheckTelephone(ctx context.Context, telephone string) error {
	telephone = normalizeTelephone(telephone)
	if err := validateTelephone(telephone); err != nil {
		return err
	}
	return s.ensureTelephoneFree(ctx, telephone)
}

// StartSignUp opens a staged registration with the user's names.
func (s *IdentityService) StartSignUp(ctx context.Context, firstName, surname string) (*domain.SignUpDraft, error) {
	draft := domain.NewSignUpDraft(uuid.NewString(), s.now().UTC())
	if err := draft.SetNames(firstName, surname); err != nil {
		return nil, draftError(err)
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SubmitSignUpTelephone checks availability and records the telephone on the draft.
func (s *IdentityService) SubmitSignUpTelephone(ctx context.Context, draftID, telephone string) (*domain.SignUpDraft, error) {
	draft, err := s.loadDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Stage != domain.SignUpStageTelephone {
		return nil, draftError(domain.ErrDraftStage)
	}
	if err := s.CheckTelephone(ctx, telephone); err != nil {
		return nil, err
	}
	if err := draft.SetTelephone(normalizeTelephone(telephone)); err != nil {
		return nil, draftError(err)
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// CompleteSignUp confirms the PIN and registers the account described by the draft.
func (s *IdentityService) CompleteSignUp(ctx context.Context, draftID, pin, confirmPIN string) (*domain.UserAccount, error) {
	draft, err := s.loadDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := draft.ConfirmPIN(pin, confirmPIN); err != nil {
		return nil, draftError(err)
	}

	user, err := s.Register(ctx, RegisterInput{
		FirstName:  draft.FirstName,
		Surname:    draft.Surname,
		Telephone:  draft.Telephone,
		PIN:        pin,
		ConfirmPIN: confirmPIN,
	})
	if err != nil {
		return nil, err
	}

	draft.MarkComplete()
	if err := s.drafts.Delete(ctx, draft.ID); err != nil {
		s.logger.Warn("delete completed sign-up draft", zap.String("draft_id", draft.ID), zap.Error(err))
	}
	return user, nil
}

// IssueToken signs a session token for an identity.
func (s *IdentityService) IssueToken(identity domain.Identity) (string, time.Time, error) {
	return s.tokenMgr.GenerateToken(identity)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *IdentityService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *IdentityService) lookup(ctx context.Context, telephone string) (*domain.UserAccount, error) {
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	user, err := s.users.GetByTelephone(callCtx, telephone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewDomainError(apperrors.CodeNotFound,
				"User not found. Please check your telephone number.", http.StatusNotFound, nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return user, nil
}

func (s *IdentityService) ensureTelephoneFree(ctx context.Context, telephone string) error {
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	_, err := s.users.GetByTelephone(callCtx, telephone)
	switch {
	case err == nil:
		return duplicateTelephone()
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return apperrors.NewStoreUnavailable(err)
	}
}

// createProviderIdentity mirrors the account into the auth provider. The
// credential store is authoritative, so failures are logged only.
func (s *IdentityService) createProviderIdentity(ctx context.Context, telephone string) {
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	uid, err := s.provider.LookupIdentity(callCtx, telephone)
	if err != nil {
		s.logger.Warn("lookup provider identity", zap.String("telephone", telephone), zap.Error(err))
	}
	if uid != "" {
		s.logger.Debug("provider identity already exists", zap.String("uid", uid))
		return
	}
	uid, err = s.provider.CreateIdentity(callCtx, telephone)
	switch {
	case errors.Is(err, auth.ErrIdentityExists):
		s.logger.Warn("provider identity already exists", zap.String("telephone", telephone))
	case err != nil:
		s.logger.Error("create provider identity", zap.String("telephone", telephone), zap.Error(err))
	default:
		s.logger.Debug("provider identity created", zap.String("uid", uid))
	}
}

func (s *IdentityService) loadDraft(ctx context.Context, id string) (*domain.SignUpDraft, error) {
	if s.drafts == nil {
		return nil, apperrors.NewStoreUnavailable(errors.New("sign-up drafts not configured"))
	}
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	draft, err := s.drafts.Get(callCtx, id)
	if err != nil {
		return nil, storeError(err, "sign-up draft")
	}
	return draft, nil
}

func (s *IdentityService) saveDraft(ctx context.Context, draft *domain.SignUpDraft) error {
	if s.drafts == nil {
		return apperrors.NewStoreUnavailable(errors.New("sign-up drafts not configured"))
	}
	callCtx, cancel := s.store.context(ctx)
	defer cancel()
	if err := s.drafts.Save(callCtx, draft); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

func (s *IdentityService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeTelephone(telephone string) string {
	return strings.ReplaceAll(strings.TrimSpace(telephone), " ", "")
}

func validateTelephone(telephone string) error {
	if telephone == "" {
		return apperrors.NewValidationError("telephone is required", nil)
	}
	if !telephonePattern.MatchString(telephone) {
		return apperrors.NewValidationError("telephone must be digits with an optional leading +",
			map[string]any{"example": domain.DefaultCountryPrefix + "700000000"})
	}
	return nil
}

func validatePIN(pin string) error {
	if pin == "" {
		return apperrors.NewValidationError("PIN is required", nil)
	}
	if !pinPattern.MatchString(pin) {
		return apperrors.NewValidationError("PIN must contain digits only", nil)
	}
	if len(pin) > maxPINLength {
		return apperrors.NewValidationError(fmt.Sprintf("PIN must be at most %d digits", maxPINLength), nil)
	}
	return nil
}

func duplicateTelephone() error {
	return apperrors.NewDuplicateIdentity("User already exists. Please enter a different telephone number.")
}

func draftError(err error) error {
	return apperrors.NewValidationError(err.Error(), nil)
}
