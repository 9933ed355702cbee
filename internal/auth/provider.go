package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// ErrIdentityExists is returned when the provider already holds the pseudo-email.
var ErrIdentityExists = errors.New("identity already exists")

// IdentityProvider is the external authentication collaborator. Identities are
// keyed by a pseudo-email derived from the telephone; the real credential is
// the PIN digest kept in the credential store.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, telephone string) (string, error)
	LookupIdentity(ctx context.Context, telephone string) (string, error)
}

// PseudoEmail derives the provider login for a telephone.
func PseudoEmail(telephone, domain string) string {
	return strings.TrimSpace(telephone) + "@" + domain
}

// FirebaseProvider registers pseudo-email identities with Firebase Auth.
type FirebaseProvider struct {
	client *fbauth.Client
	domain string
	secret string
}

// NewFirebaseProvider wraps an initialized Firebase Auth client.
func NewFirebaseProvider(client *fbauth.Client, domain, placeholderSecret string) *FirebaseProvider {
	return &FirebaseProvider{client: client, domain: domain, secret: placeholderSecret}
}

func (p *FirebaseProvider) CreateIdentity(ctx context.Context, telephone string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(PseudoEmail(telephone, p.domain)).
		Password(p.secret)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrIdentityExists
		}
		return "", fmt.Errorf("create firebase identity: %w", err)
	}
	return record.UID, nil
}

func (p *FirebaseProvider) LookupIdentity(ctx context.Context, telephone string) (string, error) {
	record, err := p.client.GetUserByEmail(ctx, PseudoEmail(telephone, p.domain))
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("lookup firebase identity: %w", err)
	}
	return record.UID, nil
}

// NoopProvider is used when no Firebase project is configured.
type NoopProvider struct {
	Domain string
}

func (p NoopProvider) CreateIdentity(_ context.Context, telephone string) (string, error) {
	return PseudoEmail(telephone, p.Domain), nil
}

func (p NoopProvider) LookupIdentity(_ context.Context, _ string) (string, error) {
	return "", nil
}
