package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that logs in with a short numeric code. A user starts
// inactive, holding an admin-issued invite token; redeeming the invite sets
// the code and activates the account. Codes are unique among active users
// only; an inactive user has no code.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Code          string     `json:"code,omitempty"`
	IsAdmin       bool       `json:"is_admin"`
	IsActive      bool       `json:"is_active"`
	InviteToken   string     `json:"invite_token,omitempty"`
	InviteExpires *time.Time `json:"invite_expires,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Redacted returns a copy safe to expose to any caller: the login code is
// secret-equivalent and the invite token is a one-time credential, so both
// are stripped. InviteExpires stays so admins can see pending invites.
func (u *User) Redacted() *User {
	out := *u
	out.Code = ""
	out.InviteToken = ""
	return &out
}

// UserPatch is the partial-update payload for a user. Code, activation state
// and invite fields are state-machine-owned and only change through the auth
// flows, never through a patch.
type UserPatch struct {
	Name    Field[string] `json:"name"`
	IsAdmin Field[bool]   `json:"is_admin"`
}
