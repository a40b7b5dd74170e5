package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/handlertest"
	profileapp "addisstay/internal/app/handlers/profile"
	"addisstay/internal/app/queries"
	"addisstay/internal/domain/shared/money"
	domainuser "addisstay/internal/domain/user"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	e := handlertest.New(t)
	commands.RegisterHandler(e.CommandBus, &profileapp.UpdateProfileHandler{Clock: e.Clock.Now})
	commands.RegisterHandler(e.CommandBus, &profileapp.BecomeHostHandler{Clock: e.Clock.Now})
	queries.RegisterHandler(e.QueryBus, &profileapp.GetProfileHandler{UoWFactory: e.Factory})
	return e
}

func update(e *handlertest.Env, cmd profileapp.UpdateProfileCommand) (dto.User, error) {
	return commands.Dispatch[profileapp.UpdateProfileCommand, dto.User](context.Background(), e.Commands, cmd)
}

func get(t *testing.T, e *handlertest.Env, id string) dto.User {
	t.Helper()
	out, err := queries.Ask[profileapp.GetProfileQuery, dto.User](context.Background(), e.Queries, profileapp.GetProfileQuery{UserID: id})
	require.NoError(t, err)
	return out
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfileAndPreferences(t *testing.T) {
	e := setup(t)
	out, err := update(e, profileapp.UpdateProfileCommand{
		UserID:    "guest-abebe",
		FirstName: ptr("Abebe"),
		LastName:  ptr("Kebede"),
		Currency:  ptr("eur"),
		Language:  ptr("am"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Abebe Kebede", out.Name)

	stored := get(t, e, "guest-abebe")
	assert.Equal(t, "EUR", stored.Preferences.Currency)
	assert.Equal(t, "am", stored.Preferences.Language)
	assert.Equal(t, "guest-abebe@example.com", stored.Email)

	b := e.Book(t, "addis-hilton", "guest-abebe", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), 2, false)
	assert.Equal(t, "EUR", b.Price.Total.DisplayCurrency)
	assert.Equal(t, "Abebe Kebede", b.Guest.Name)
}

func TestUpdateProfileRejectsBadValues(t *testing.T) {
	e := setup(t)

	_, err := update(e, profileapp.UpdateProfileCommand{UserID: "guest-sara", Currency: ptr("XYZ")})
	assert.ErrorIs(t, err, money.ErrUnknownCurrency)

	_, err = update(e, profileapp.UpdateProfileCommand{UserID: "guest-sara", FirstName: ptr("  ")})
	assert.ErrorIs(t, err, domainuser.ErrNameRequired)

	_, err = update(e, profileapp.UpdateProfileCommand{UserID: "guest-sara", DateOfBirth: ptr(handlertest.Today.AddDate(0, 0, 1))})
	assert.ErrorIs(t, err, domainuser.ErrInvalidBirthDate)

	stored := get(t, e, "guest-sara")
	assert.Equal(t, "Guest sara", stored.Name)
	assert.Equal(t, domainuser.DefaultPreferences(), stored.Preferences)
}

func TestBecomeHostIsIdempotent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for range 2 {
		out, err := commands.Dispatch[profileapp.BecomeHostCommand, dto.User](ctx, e.Commands, profileapp.BecomeHostCommand{UserID: "guest-sara"})
		require.NoError(t, err)
		assert.Equal(t, []string{"guest", "host"}, out.Roles)
	}
	assert.Contains(t, get(t, e, "guest-sara").Roles, "host")

	_, err := commands.Dispatch[profileapp.BecomeHostCommand, dto.User](ctx, e.Commands, profileapp.BecomeHostCommand{UserID: "nobody"})
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}
