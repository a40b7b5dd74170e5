package profile

import (
	"context"
	"time"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainuser "addisstay/internal/domain/user"
)

const (
	updateProfileKey = "profile.update"
	becomeHostKey    = "profile.become_host"
	getProfileKey    = "profile.get"
)

// UpdateProfileCommand applies the non-nil fields.
type UpdateProfileCommand struct {
	UserID      string  `validate:"required"`
	FirstName   *string `validate:"omitempty,max=60"`
	LastName    *string `validate:"omitempty,max=60"`
	Phone       *string `validate:"omitempty,max=32"`
	Avatar      *string `validate:"omitempty,url"`
	DateOfBirth *time.Time
	Nationality *string `validate:"omitempty,max=60"`
	Currency    *string `validate:"omitempty,currency_code"`
	Language    *string `validate:"omitempty,min=2,max=5"`
}

func (UpdateProfileCommand) Key() string       { return updateProfileKey }
func (c UpdateProfileCommand) ActorID() string { return c.UserID }

type UpdateProfileHandler struct {
	Clock support.Clock
}

func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (dto.User, error) {
	unit, u, err := load(ctx, cmd.UserID)
	if err != nil {
		return dto.User{}, err
	}
	err = u.UpdateProfile(domainuser.ProfileUpdate{
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Phone:       cmd.Phone,
		Avatar:      cmd.Avatar,
		DateOfBirth: cmd.DateOfBirth,
		Nationality: cmd.Nationality,
		Currency:    cmd.Currency,
		Language:    cmd.Language,
	}, h.Clock.Now())
	if err != nil {
		return dto.User{}, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.User{}, err
	}
	return dto.MapUser(u), nil
}

// BecomeHostCommand grants the host role to a signed-in guest.
type BecomeHostCommand struct {
	UserID string `validate:"required"`
}

func (BecomeHostCommand) Key() string       { return becomeHostKey }
func (c BecomeHostCommand) ActorID() string { return c.UserID }

type BecomeHostHandler struct {
	Clock support.Clock
}

func (h *BecomeHostHandler) Handle(ctx context.Context, cmd BecomeHostCommand) (dto.User, error) {
	unit, u, err := load(ctx, cmd.UserID)
	if err != nil {
		return dto.User{}, err
	}
	if err := u.EnsureRole(domainuser.RoleHost, h.Clock.Now()); err != nil {
		return dto.User{}, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.User{}, err
	}
	return dto.MapUser(u), nil
}

type GetProfileQuery struct {
	UserID string `validate:"required"`
}

func (GetProfileQuery) Key() string { return getProfileKey }

type GetProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (dto.User, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.User{}, err
	}
	defer support.Release(cleanup)
	u, err := unit.Users().ByID(ctx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.User{}, err
	}
	return dto.MapUser(u), nil
}

func load(ctx context.Context, id string) (uow.UnitOfWork, *domainuser.User, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, nil, err
	}
	u, err := unit.Users().ByID(ctx, domainuser.ID(id))
	if err != nil {
		return nil, nil, err
	}
	return unit, u, nil
}

var (
	_ commands.Handler[UpdateProfileCommand, dto.User] = (*UpdateProfileHandler)(nil)
	_ commands.Handler[BecomeHostCommand, dto.User]    = (*BecomeHostHandler)(nil)
	_ queries.Handler[GetProfileQuery, dto.User]       = (*GetProfileHandler)(nil)
)
