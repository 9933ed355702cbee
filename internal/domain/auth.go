package domain

// Identity is the {name, telephone, role} tuple established at sign-in.
type Identity struct {
	Name      string `json:"name"`
	Telephone string `json:"telephone"`
	IsAdmin   bool   `json:"is_admin"`
}

// DefaultCountryPrefix is prefilled by the mobile client; it is not enforced.
const DefaultCountryPrefix = "+254"
