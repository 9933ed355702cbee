package domain

import (
	"errors"
	"strings"
	"time"
)

// SignUpStage is the step a sign-up draft is waiting on.
type SignUpStage string

const (
	SignUpStageNames     SignUpStage = "NAMES"
	SignUpStageTelephone SignUpStage = "TELEPHONE"
	SignUpStagePIN       SignUpStage = "PIN"
	SignUpStageComplete  SignUpStage = "COMPLETE"
)

var (
	ErrDraftStage    = errors.New("sign-up step is out of order")
	ErrNamesRequired = errors.New("first name and surname are required")
	ErrPINMismatch   = errors.New("PINs do not match")
)

// SignUpDraft carries a partially completed registration between steps.
// Each step only succeeds from its own stage and advances to the next one.
type SignUpDraft struct {
	ID        string      `json:"id"`
	Stage     SignUpStage `json:"stage"`
	FirstName string      `json:"first_name"`
	Surname   string      `json:"surname"`
	Telephone string      `json:"telephone"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewSignUpDraft starts a draft at the names stage.
func NewSignUpDraft(id string, now time.Time) *SignUpDraft {
	return &SignUpDraft{ID: id, Stage: SignUpStageNames, CreatedAt: now}
}

// SetNames records the display name and moves to the telephone stage.
func (d *SignUpDraft) SetNames(firstName, surname string) error {
	if d.Stage != SignUpStageNames {
		return ErrDraftStage
	}
	firstName = strings.TrimSpace(firstName)
	surname = strings.TrimSpace(surname)
	if firstName == "" || surname == "" {
		return ErrNamesRequired
	}
	d.FirstName = firstName
	d.Surname = surname
	d.Stage = SignUpStageTelephone
	return nil
}

// SetTelephone records an already availability-checked telephone.
func (d *SignUpDraft) SetTelephone(telephone string) error {
	if d.Stage != SignUpStageTelephone {
		return ErrDraftStage
	}
	d.Telephone = strings.TrimSpace(telephone)
	d.Stage = SignUpStagePIN
	return nil
}

// ConfirmPIN checks the PIN against its confirmation before registration.
func (d *SignUpDraft) ConfirmPIN(pin, confirm string) error {
	if d.Stage != SignUpStagePIN {
		return ErrDraftStage
	}
	if pin != confirm {
		return ErrPINMismatch
	}
	return nil
}

// MarkComplete closes the draft once the account exists.
func (d *SignUpDraft) MarkComplete() {
	d.Stage = SignUpStageComplete
}
