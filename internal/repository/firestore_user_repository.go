package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

type firestoreUserRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreUserRepository stores accounts in a Firestore collection with
// fields firstName, surname, telephone, pin and isAdmin.
func NewFirestoreUserRepository(client *firestore.Client, collection string) UserRepository {
	return &firestoreUserRepository{client: client, collection: collection}
}

// Create checks telephone uniqueness and writes the account in one transaction.
func (r *firestoreUserRepository) Create(ctx context.Context, user *domain.UserAccount) error {
	col := r.client.Collection(r.collection)
	ref := col.NewDoc()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("telephone", "==", user.Telephone).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrDuplicate
		}
		return tx.Create(ref, user)
	})
	if err != nil {
		return mapFirestoreError(err)
	}
	now := time.Now().UTC()
	user.ID = ref.ID
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *firestoreUserRepository) GetByTelephone(ctx context.Context, telephone string) (*domain.UserAccount, error) {
	docs, err := r.client.Collection(r.collection).
		Where("telephone", "==", telephone).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var user domain.UserAccount
	if err := docs[0].DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = docs[0].Ref.ID
	return &user, nil
}

func (r *firestoreUserRepository) UpdatePIN(ctx context.Context, id, digest string) error {
	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "pin", Value: digest},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	return mapFirestoreError(err)
}

func mapFirestoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrNotFound) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrDuplicate
	}
	return err
}
