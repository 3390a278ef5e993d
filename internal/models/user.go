package models

import (
	"strings"
	"time"
)

const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleStudent = "student"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage catalog and schedule resources.
func IsStaff(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	AvatarURL        *string    `json:"avatar_url"`
	ParentID         *int64     `json:"parent_id,omitempty"`
	StripeCustomerID *string    `json:"-"`
	EmailVerified    bool       `json:"email_verified"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// FullName joins the optional name parts, falling back to the email when
// neither is set.
func (u *User) FullName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}
