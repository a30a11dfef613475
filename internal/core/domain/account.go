package domain

import "time"

// Well-known role names.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Role is a named grant. Two roles with the same Name are the same role.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account models a user able to sign in to the back office.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddRole grants r to the account. Granting a role the account already
// holds is a no-op.
func (a *Account) AddRole(r Role) {
	if a.HasRole(r.Name) {
		return
	}
	a.Roles = append(a.Roles, r)
}

// HasRole reports whether the account holds the named role.
func (a *Account) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the account's roles.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	AccountID string
	Username  string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}
