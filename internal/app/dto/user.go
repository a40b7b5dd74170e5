package dto

import (
	"time"

	"addisstay/internal/domain/user"
)

type User struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone,omitempty"`
	Avatar      string           `json:"avatar,omitempty"`
	DateOfBirth *time.Time       `json:"date_of_birth,omitempty"`
	Nationality string           `json:"nationality,omitempty"`
	Preferences user.Preferences `json:"preferences"`
	Verified    bool             `json:"verified"`
	Roles       []string         `json:"roles"`
	Role        string           `json:"role"`
	CreatedAt   time.Time        `json:"created_at"`
}

func MapUser(u *user.User) User {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	out := User{
		ID:          string(u.ID),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Name:        u.FullName(),
		Phone:       u.Phone,
		Avatar:      u.Avatar,
		Nationality: u.Nationality,
		Preferences: u.Preferences,
		Verified:    u.Verified,
		Roles:       roles,
		Role:        string(u.PrimaryRole()),
		CreatedAt:   u.CreatedAt,
	}
	if !u.DateOfBirth.IsZero() {
		dob := u.DateOfBirth
		out.DateOfBirth = &dob
	}
	return out
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
