// Package handlertest runs application handlers over the in-memory store,
// seeded with the bundled catalog, the way the server wires them in memory
// mode.
package handlertest

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	bookingapp "addisstay/internal/app/handlers/booking"
	"addisstay/internal/app/handlers/notifications"
	"addisstay/internal/app/middleware"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/queries"
	domainuser "addisstay/internal/domain/user"
	"addisstay/internal/infra/fixtures"
	"addisstay/internal/infra/storage/memory"
)

// Today is where every Env clock starts.
var Today = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

// Guests are created on top of the catalog hosts.
var Guests = []string{"guest-abebe", "guest-sara"}

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

// Env dispatches commands through outbox flush and a transaction. Booking
// transitions and the notification list are registered up front; tests add
// the handlers they exercise to CommandBus and QueryBus.
type Env struct {
	Factory       *memory.Factory
	Outbox        *memory.Outbox
	Conversations *memory.ConversationStore
	Projector     *notifications.Projector
	Encoder       outbox.JSONEventEncoder
	Clock         *Clock

	CommandBus *commands.InMemoryBus
	QueryBus   *queries.InMemoryBus
	Commands   commands.Bus
	Queries    queries.Bus
}

func New(t *testing.T) *Env {
	t.Helper()
	ctx := context.Background()
	clock := &Clock{now: Today}

	box := memory.NewOutbox(nil, nil)
	factory := memory.NewFactory(box)
	convs := memory.NewConversationStore()
	projector := &notifications.Projector{UoWFactory: factory, Conversations: convs}
	box.Handler = projector

	_, err := fixtures.Loader{Factory: factory, Hasher: plainHasher{}, Now: clock.Now}.LoadFile(ctx, catalogPath())
	require.NoError(t, err)
	for _, id := range Guests {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(id),
			Email:        id + "@example.com",
			FirstName:    "Guest",
			LastName:     id[len("guest-"):],
			PasswordHash: "hashed",
			AcceptTerms:  true,
			Now:          Today,
		})
		require.NoError(t, err)
		require.NoError(t, factory.Users.Save(ctx, u))
	}

	e := &Env{
		Factory:       factory,
		Outbox:        box,
		Conversations: convs,
		Projector:     projector,
		Encoder:       outbox.JSONEventEncoder{IDGenerator: uuid.NewString},
		Clock:         clock,
		CommandBus:    commands.NewInMemoryBus(),
		QueryBus:      queries.NewInMemoryBus(),
	}
	transitions := bookingapp.Transitions{Encoder: e.Encoder, Clock: clock.Now}
	commands.RegisterHandler(e.CommandBus, &bookingapp.RequestBookingHandler{Encoder: e.Encoder, Clock: clock.Now})
	commands.RegisterHandler(e.CommandBus, &bookingapp.ConfirmBookingHandler{Transitions: transitions})
	commands.RegisterHandler(e.CommandBus, &bookingapp.CancelBookingHandler{Transitions: transitions})
	commands.RegisterHandler(e.CommandBus, &bookingapp.CompleteBookingHandler{Transitions: transitions})
	queries.RegisterHandler(e.QueryBus, &notifications.ListNotificationsHandler{UoWFactory: factory})

	e.Commands = middleware.ChainCommands(e.CommandBus,
		middleware.OutboxFlush(box),
		middleware.Transaction(factory, nil),
	)
	e.Queries = e.QueryBus
	return e
}

// Book requests a stay and, when confirm is set, has the listing's host
// accept it.
func (e *Env) Book(t *testing.T, listingID, guest string, checkIn time.Time, nights int, confirm bool) dto.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](ctx, e.Commands, bookingapp.RequestBookingCommand{
		ListingID: listingID,
		GuestID:   guest,
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, nights),
		Adults:    1,
	})
	require.NoError(t, err)
	if !confirm {
		return *b
	}
	out, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.Booking](ctx, e.Commands, bookingapp.ConfirmBookingCommand{BookingID: b.ID, HostID: b.HostID})
	require.NoError(t, err)
	return out
}

func (e *Env) Inbox(t *testing.T, userID, filter string) dto.NotificationCollection {
	t.Helper()
	out, err := queries.Ask[notifications.ListNotificationsQuery, dto.NotificationCollection](context.Background(), e.Queries, notifications.ListNotificationsQuery{UserID: userID, Filter: filter})
	require.NoError(t, err)
	return out
}

func catalogPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "listings.json")
}
