package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/actor"
	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	bookingapp "addisstay/internal/app/handlers/booking"
	listingapp "addisstay/internal/app/handlers/listings"
	"addisstay/internal/app/middleware"
	"addisstay/internal/app/queries"
	authsvc "addisstay/internal/app/services/auth"
	domainauth "addisstay/internal/domain/auth"
	"addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	domainuser "addisstay/internal/domain/user"
	"addisstay/internal/infra/obs"
	"addisstay/internal/infra/storage/s3"
	"addisstay/internal/infra/validation"
)

type fakeAuth struct {
	users map[string]*domainuser.User
}

func (f fakeAuth) Register(context.Context, authsvc.RegisterParams) (*authsvc.AuthResult, error) {
	return nil, domainuser.ErrEmailAlreadyUsed
}

func (f fakeAuth) Login(_ context.Context, p authsvc.LoginParams) (*authsvc.AuthResult, error) {
	for token, u := range f.users {
		if u.Email == p.Email {
			return &authsvc.AuthResult{User: u, Token: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
	}
	return nil, authsvc.ErrInvalidCredentials
}

func (f fakeAuth) Logout(context.Context, string) error { return nil }

func (f fakeAuth) ResolveToken(_ context.Context, token string) (*authsvc.ResolveResult, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return &authsvc.ResolveResult{User: u}, nil
}

func (f fakeAuth) RequestPasswordReset(context.Context, string) error { return errors.New("smtp down") }
func (f fakeAuth) ResetPassword(context.Context, string, string) error {
	return authsvc.ErrInvalidActionToken
}
func (f fakeAuth) RequestVerification(context.Context, domainuser.ID) error { return nil }
func (f fakeAuth) VerifyEmail(context.Context, string) (*domainuser.User, error) {
	return nil, authsvc.ErrInvalidActionToken
}

// recorder stands in for both buses and remembers the last message.
type recorder struct {
	last   any
	actor  actor.Actor
	result any
	err    error
}

func (r *recorder) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	r.last = cmd
	r.actor, _ = actor.FromContext(ctx)
	return r.result, r.err
}

func (r *recorder) Ask(ctx context.Context, q queries.Query) (any, error) {
	r.last = q
	r.actor, _ = actor.FromContext(ctx)
	return r.result, r.err
}

func testUsers() map[string]*domainuser.User {
	return map[string]*domainuser.User{
		"guest-token": {
			ID:          "u-guest",
			Email:       "selam@example.com",
			FirstName:   "Selam",
			LastName:    "Bekele",
			Roles:       []domainuser.Role{domainuser.RoleGuest},
			Preferences: domainuser.Preferences{Currency: "USD", Language: "en"},
		},
		"host-token": {
			ID:          "u-host",
			Email:       "dawit@example.com",
			FirstName:   "Dawit",
			LastName:    "Haile",
			Roles:       []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost},
			Preferences: domainuser.DefaultPreferences(),
		},
	}
}

func newTestRouter(bus *recorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuth{users: testUsers()}
	h := Handlers{
		Auth:          &AuthHandler{Service: auth, Queries: bus},
		Profile:       &ProfileHandler{Commands: bus},
		Currency:      &CurrencyHandler{},
		Listing:       &ListingHandler{Queries: bus},
		Review:        &ReviewHandler{Commands: bus, Queries: bus},
		Booking:       &BookingHandler{Commands: bus, Queries: bus},
		Wishlist:      &WishlistHandler{Commands: bus, Queries: bus},
		Notification:  &NotificationHandler{Commands: bus, Queries: bus},
		Conversation:  &ConversationHandler{Commands: bus, Queries: bus},
		HostListing:   &HostListingHandler{Commands: bus, Queries: bus},
		HostBooking:   &HostBookingHandler{Commands: bus, Queries: bus},
		Analytics:     &AnalyticsHandler{Queries: bus},
		Authenticator: AuthMiddleware{Service: auth}.Handle,
	}
	return NewRouter(Options{}, obs.Middleware{}, obs.HealthHandlers{}, h)
}

func do(t *testing.T, router http.Handler, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{validation.Errors{{Field: "Title", Message: "is required"}}, http.StatusUnprocessableEntity},
		{middleware.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("load: %w", middleware.ErrForbidden), http.StatusForbidden},
		{domainlistings.ErrListingNotFound, http.StatusNotFound},
		{booking.ErrDatesUnavailable, http.StatusConflict},
		{errors.Join(middleware.ErrReplayedFailure, errors.New("booking: dates overlap")), http.StatusConflict},
		{s3.ErrNotConfigured, http.StatusServiceUnavailable},
		{booking.ErrCheckInPast, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestLivez(t *testing.T) {
	w := do(t, newTestRouter(&recorder{}), http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedAuth(t *testing.T) {
	router := newTestRouter(&recorder{})

	w := do(t, router, http.MethodGet, "/api/v1/me/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/me/bookings", "stale-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/host/listings", "guest-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewarePutsActorOnRequestContext(t *testing.T) {
	bus := &recorder{result: dto.BookingCollection{Items: []dto.Booking{}}}
	w := do(t, newTestRouter(bus), http.MethodGet, "/api/v1/host/bookings?view=pending", "host-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-host", bus.actor.ID)
	assert.True(t, bus.actor.HasRole("host"))
	q, ok := bus.last.(bookingapp.HostBookingsQuery)
	require.True(t, ok)
	assert.Equal(t, "pending", q.View)
	assert.Equal(t, "ETB", q.Currency)
}

func TestCreateBooking(t *testing.T) {
	bus := &recorder{result: &dto.Booking{ID: "b-1", Status: "pending"}}
	body := gin.H{"listing_id": "l-1", "check_in": "2026-11-02", "check_out": "2026-11-05", "adults": 2}
	w := do(t, newTestRouter(bus), http.MethodPost, "/api/v1/bookings", "guest-token", body, "Idempotency-Key", "req-42")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cmd, ok := bus.last.(bookingapp.RequestBookingCommand)
	require.True(t, ok)
	assert.Equal(t, "u-guest", cmd.GuestID)
	assert.Equal(t, "req-42", cmd.RequestKey)
	assert.Equal(t, "USD", cmd.Currency)
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), cmd.CheckIn)
	assert.Equal(t, 2, cmd.Adults)

	var got dto.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "b-1", got.ID)
}

func TestCreateBookingRejectsBadDates(t *testing.T) {
	bus := &recorder{}
	body := gin.H{"listing_id": "l-1", "check_in": "next week", "check_out": "2026-11-05", "adults": 1}
	w := do(t, newTestRouter(bus), http.MethodPost, "/api/v1/bookings", "guest-token", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, bus.last)
}

func TestValidationFailureIs422WithFields(t *testing.T) {
	bus := &recorder{err: validation.Errors{{Field: "Input.Title", Message: "is required"}}}
	w := do(t, newTestRouter(bus), http.MethodPost, "/api/v1/host/listings", "host-token", gin.H{"location": "Bole"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error  string                 `json:"error"`
		Fields []validation.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "Input.Title", body.Fields[0].Field)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	bus := &recorder{err: errors.New("mongo: connection reset")}
	w := do(t, newTestRouter(bus), http.MethodGet, "/api/v1/listings/l-1", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "mongo")
}

func TestCatalogFilters(t *testing.T) {
	bus := &recorder{result: dto.ListingCatalog{}}
	w := do(t, newTestRouter(bus), http.MethodGet, "/api/v1/listings?q=bole&amenities=wifi,%20pool&kind=hotel&min_price=20&guests=3&sort=price_low&currency=eur", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	q, ok := bus.last.(listingapp.SearchCatalogQuery)
	require.True(t, ok)
	assert.Equal(t, "EUR", q.Currency)
	assert.Equal(t, []string{"wifi", "pool"}, q.Params.Amenities)
	assert.Equal(t, []domainlistings.Kind{domainlistings.KindHotel}, q.Params.Kinds)
	assert.True(t, decimal.NewFromInt(20).Equal(q.Params.PriceMin))
	assert.Equal(t, 3, q.Params.MinGuests)
	assert.Equal(t, domainlistings.SortPriceLow, q.Params.Sort)

	w = do(t, newTestRouter(bus), http.MethodGet, "/api/v1/listings?min_price=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingDetailUsesViewerPreference(t *testing.T) {
	bus := &recorder{result: dto.ListingDetail{}}
	w := do(t, newTestRouter(bus), http.MethodGet, "/api/v1/listings/l-9", "guest-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := bus.last.(listingapp.GetListingQuery)
	assert.Equal(t, "l-9", q.ID)
	assert.Equal(t, "u-guest", q.ViewerID)
	assert.Equal(t, "USD", q.Currency)
}

func TestUnknownDisplayCurrencyIsRejected(t *testing.T) {
	stay := map[string]any{"check_in": "2026-11-01", "check_out": "2026-11-03"}
	cases := []struct {
		method, path, token string
		body                any
	}{
		{http.MethodGet, "/api/v1/listings?currency=XYZ", "", nil},
		{http.MethodGet, "/api/v1/listings/l-1?currency=XYZ", "guest-token", nil},
		{http.MethodGet, "/api/v1/listings/l-1/recommendations?currency=xyz", "", nil},
		{http.MethodPost, "/api/v1/listings/l-1/quote?currency=XYZ", "", stay},
		{http.MethodPost, "/api/v1/bookings?currency=XYZ", "guest-token", map[string]any{"listing_id": "l-1", "check_in": "2026-11-01", "check_out": "2026-11-03", "adults": 1}},
		{http.MethodGet, "/api/v1/me/bookings?currency=XYZ", "guest-token", nil},
		{http.MethodGet, "/api/v1/currencies?currency=XYZ", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			bus := &recorder{}
			w := do(t, newTestRouter(bus), tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "unknown currency")
			assert.Nil(t, bus.last)
		})
	}
}

func TestStoredPreferenceStillApplies(t *testing.T) {
	bus := &recorder{result: dto.BookingCollection{}}
	w := do(t, newTestRouter(bus), http.MethodGet, "/api/v1/me/bookings", "guest-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "USD", bus.last.(bookingapp.GuestBookingsQuery).Currency)

	w = do(t, newTestRouter(bus), http.MethodGet, "/api/v1/me/bookings?currency=kes", "guest-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "KES", bus.last.(bookingapp.GuestBookingsQuery).Currency)
}

func TestConvertCurrency(t *testing.T) {
	router := newTestRouter(&recorder{})
	w := do(t, router, http.MethodGet, "/api/v1/currencies/convert?amount=100&to=usd", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got dto.Conversion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ETB", got.From)
	assert.Equal(t, "USD", got.To)
	assert.True(t, decimal.RequireFromString("1.8").Equal(got.Result), got.Result.String())

	w = do(t, router, http.MethodGet, "/api/v1/currencies/convert?amount=100&to=XYZ", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrenciesAndLanguages(t *testing.T) {
	router := newTestRouter(&recorder{})
	w := do(t, router, http.MethodGet, "/api/v1/currencies", "guest-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"selected":"USD"`)

	w = do(t, router, http.MethodGet, "/api/v1/languages", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"am"`)
}

func TestLoginAndPasswordReset(t *testing.T) {
	router := newTestRouter(&recorder{})
	w := do(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "dawit@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var s dto.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "host-token", s.Token)
	assert.Equal(t, "host", s.User.Role)

	w = do(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/password-reset", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/password-reset/confirm", "", gin.H{"token": "bad", "password": "longenough"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "dawit@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelWithoutBody(t *testing.T) {
	bus := &recorder{result: dto.Booking{ID: "b-1", Status: "cancelled"}}
	w := do(t, newTestRouter(bus), http.MethodPost, "/api/v1/me/bookings/b-1/cancel", "guest-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cmd := bus.last.(bookingapp.CancelBookingCommand)
	assert.Equal(t, "b-1", cmd.BookingID)
	assert.Equal(t, "u-guest", cmd.ActorUser)
}

func TestUploadPhotosSniffsContentType(t *testing.T) {
	bus := &recorder{result: dto.ListingCard{ID: "l-1"}}
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photos", "living-room.jpg")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/host/listings/l-1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer host-token")
	w := httptest.NewRecorder()
	newTestRouter(bus).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cmd := bus.last.(listingapp.AddPhotosCommand)
	require.Len(t, cmd.Photos, 1)
	assert.Equal(t, "image/png", cmd.Photos[0].ContentType)
	assert.Equal(t, "living-room.jpg", cmd.Photos[0].Name)
}

func TestUploadPhotosWhenStorageDisabled(t *testing.T) {
	bus := &recorder{err: fmt.Errorf("upload a.png: %w", s3.ErrNotConfigured)}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("photos", "a.png")
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/host/listings/l-1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer host-token")
	w := httptest.NewRecorder()
	newTestRouter(bus).ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
