package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AdminUID is the canonical administrator account. Tasks created by this
// account are "admin-assigned" team tasks; the account itself cannot be
// deleted.
const AdminUID = "admin-id"

type UserAccount struct {
	UID         string `gorm:"primaryKey" json:"uid"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `gorm:"index" json:"email"`
	Role        Role   `gorm:"not null" json:"role"`

	// HashedPassword is management-only and never serialized to clients.
	HashedPassword string `json:"-"`

	PhotoURL string `json:"photoURL,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *UserAccount) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Matches reports whether an assignment entry refers to this account.
// An entry matches on display name, email, uid or username.
func (u *UserAccount) Matches(entry string) bool {
	if u == nil || entry == "" {
		return false
	}
	switch entry {
	case u.DisplayName, u.Email, u.UID, u.Username:
		return true
	}
	return false
}
