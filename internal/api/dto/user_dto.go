package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	FirstName  string `json:"first_name"`
	Surname    string `json:"surname"`
	Telephone  string `json:"telephone"`
	PIN        string `json:"pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Telephone string `json:"telephone"`
	PIN       string `json:"pin"`
}

// TelephoneRequest carries a single telephone, for availability checks and PIN resets.
type TelephoneRequest struct {
	Telephone string `json:"telephone"`
}

// SignUpNamesRequest opens a staged sign-up.
type SignUpNamesRequest struct {
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
}

// SignUpPINRequest completes a staged sign-up.
type SignUpPINRequest struct {
	PIN        string `json:"pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

// SignUpDraftResponse shows where a staged sign-up stands.
type SignUpDraftResponse struct {
	ID        string `json:"id"`
	Stage     string `json:"stage"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Telephone string `json:"telephone,omitempty"`
}

// IdentityResponse is the signed-in user's view of themselves.
type IdentityResponse struct {
	Name      string `json:"name"`
	Telephone string `json:"telephone"`
	IsAdmin   bool   `json:"is_admin"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
