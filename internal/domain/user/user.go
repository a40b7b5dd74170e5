package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"addisstay/internal/domain/shared/locale"
	"addisstay/internal/domain/shared/money"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrEmailInvalid        = errors.New("user: email is invalid")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: first and last name are required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
	ErrTermsNotAccepted    = errors.New("user: terms must be accepted")
	ErrInvalidBirthDate    = errors.New("user: date of birth is invalid")
)

type ID string

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Preferences drive how prices and copy are presented to the user.
type Preferences struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{Currency: money.BaseCurrency, Language: locale.DefaultLanguage}
}

type User struct {
	ID           ID
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Avatar       string
	DateOfBirth  time.Time
	Nationality  string
	Preferences  Preferences
	Verified     bool
	PasswordHash string
	Roles        []Role
	TermsAt      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	AcceptTerms  bool
	Roles        []Role
	Now          time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	if !params.AcceptTerms {
		return nil, ErrTermsNotAccepted
	}
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	first, last := strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName)
	if first == "" || last == "" {
		return nil, ErrNameRequired
	}
	roles, err := normalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleGuest}
	}
	now := params.Now.UTC()
	return &User{
		ID:           ID(id),
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Phone:        strings.TrimSpace(params.Phone),
		Preferences:  DefaultPreferences(),
		PasswordHash: params.PasswordHash,
		Roles:        roles,
		TermsAt:      now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProfileUpdate carries optional changes; nil fields are left alone.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Avatar      *string
	DateOfBirth *time.Time
	Nationality *string
	Currency    *string
	Language    *string
}

func (u *User) UpdateProfile(p ProfileUpdate, now time.Time) error {
	next := *u
	if p.FirstName != nil {
		next.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		next.LastName = strings.TrimSpace(*p.LastName)
	}
	if next.FirstName == "" || next.LastName == "" {
		return ErrNameRequired
	}
	if p.Phone != nil {
		next.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Avatar != nil {
		next.Avatar = strings.TrimSpace(*p.Avatar)
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.UTC()
		if dob.After(now) {
			return ErrInvalidBirthDate
		}
		next.DateOfBirth = dob
	}
	if p.Nationality != nil {
		next.Nationality = strings.TrimSpace(*p.Nationality)
	}
	if p.Currency != nil {
		c, err := money.Lookup(*p.Currency)
		if err != nil {
			return err
		}
		next.Preferences.Currency = c.Code
	}
	if p.Language != nil {
		lang, err := locale.ParseLanguage(*p.Language)
		if err != nil {
			return err
		}
		next.Preferences.Language = lang
	}
	*u = next
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

func (u *User) MarkVerified(now time.Time) {
	if u.Verified {
		return
	}
	u.Verified = true
	u.touch(now)
}

func (u *User) EnsureRole(role Role, now time.Time) error {
	role = normalizeRole(role)
	if !validRole(role) {
		return ErrInvalidRole
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	u.touch(now)
	return nil
}

func (u *User) HasRole(role Role) bool {
	role = normalizeRole(role)
	for _, current := range u.Roles {
		if current == role {
			return true
		}
	}
	return false
}

// PrimaryRole is the most privileged role, the single role clients display.
func (u *User) PrimaryRole() Role {
	switch {
	case u.HasRole(RoleAdmin):
		return RoleAdmin
	case u.HasRole(RoleHost):
		return RoleHost
	default:
		return RoleGuest
	}
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}

func normalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, role := range roles {
		role = normalizeRole(role)
		if !validRole(role) {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out, nil
}

func normalizeRole(role Role) Role {
	return Role(strings.ToLower(strings.TrimSpace(string(role))))
}

func validRole(role Role) bool {
	switch role {
	case RoleGuest, RoleHost, RoleAdmin:
		return true
	default:
		return false
	}
}
