package domain

import (
	"strings"
	"time"
)

// UserAccount is a registered marketplace user keyed by telephone.
type UserAccount struct {
	ID        string    `json:"id" firestore:"-"`
	FirstName string    `json:"first_name" firestore:"firstName"`
	Surname   string    `json:"surname" firestore:"surname"`
	Telephone string    `json:"telephone" firestore:"telephone"`
	PINDigest string    `json:"-" firestore:"pin"`
	IsAdmin   bool      `json:"is_admin" firestore:"isAdmin"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt,serverTimestamp"`
}

// DisplayName joins first name and surname with a single space.
func (u *UserAccount) DisplayName() string {
	return strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.Surname)
}

// Identity returns the authenticated view of the account.
func (u *UserAccount) Identity() Identity {
	return Identity{
		Name:      u.DisplayName(),
		Telephone: u.Telephone,
		IsAdmin:   u.IsAdmin,
	}
}
