package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/handlers/listings"
	"addisstay/internal/app/middleware"
	"addisstay/internal/app/services/auth"
	"addisstay/internal/app/uow"
	"addisstay/internal/domain/analytics"
	domainauth "addisstay/internal/domain/auth"
	"addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/messaging"
	"addisstay/internal/domain/notifications"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/reviews"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/locale"
	"addisstay/internal/domain/shared/money"
	"addisstay/internal/domain/user"
	"addisstay/internal/domain/wishlist"
	"addisstay/internal/infra/storage/s3"
	"addisstay/internal/infra/validation"
)

var errBadRequest = errors.New("http: malformed request")

var statusTable = []struct {
	status int
	errs   []error
}{
	{http.StatusUnprocessableEntity, []error{validation.ErrInvalid}},
	{http.StatusUnauthorized, []error{
		middleware.ErrUnauthenticated,
		auth.ErrInvalidCredentials,
		auth.ErrInvalidActionToken,
		domainauth.ErrSessionNotFound,
		domainauth.ErrSessionExpired,
	}},
	{http.StatusForbidden, []error{
		middleware.ErrForbidden,
		domainlistings.ErrNotOwner,
		booking.ErrNotParticipant,
		booking.ErrOwnListing,
		messaging.ErrNotParticipant,
		notifications.ErrNotOwner,
		reviews.ErrOwnListing,
		reviews.ErrOwnReview,
	}},
	{http.StatusNotFound, []error{
		domainlistings.ErrListingNotFound,
		booking.ErrBookingNotFound,
		reviews.ErrNotFound,
		notifications.ErrNotFound,
		messaging.ErrConversationNotFound,
		user.ErrNotFound,
	}},
	{http.StatusConflict, []error{
		user.ErrEmailAlreadyUsed,
		reviews.ErrAlreadyReviewed,
		reviews.ErrAlreadyMarked,
		booking.ErrDatesUnavailable,
		booking.ErrInvalidState,
		booking.ErrStayNotFinished,
		domainlistings.ErrInvalidState,
		uow.ErrConcurrentUpdate,
		middleware.ErrReplayedFailure,
	}},
	{http.StatusServiceUnavailable, []error{s3.ErrNotConfigured}},
	{http.StatusBadRequest, []error{
		errBadRequest,
		money.ErrUnknownCurrency,
		money.ErrInvalidCurrency,
		money.ErrInvalidAmount,
		locale.ErrUnsupportedLanguage,
		daterange.ErrInvalidRange,
		pricing.ErrNoNights,
		pricing.ErrInvalidNightly,
		booking.ErrInvalidGuests,
		booking.ErrTooManyGuests,
		booking.ErrCheckInPast,
		booking.ErrListingInactive,
		reviews.ErrInvalidRating,
		reviews.ErrCommentTooShort,
		reviews.ErrCommentTooLong,
		reviews.ErrTooManyPhotos,
		messaging.ErrEmptyMessage,
		messaging.ErrMessageTooLong,
		messaging.ErrSelfConversation,
		domainlistings.ErrTitleRequired,
		domainlistings.ErrLocationMissing,
		domainlistings.ErrGuestsLimit,
		domainlistings.ErrNightlyRate,
		domainlistings.ErrInvalidKind,
		domainlistings.ErrImagesRequired,
		listings.ErrNoPhotos,
		listings.ErrUnsupportedPhoto,
		user.ErrEmailRequired,
		user.ErrEmailInvalid,
		user.ErrNameRequired,
		user.ErrTermsNotAccepted,
		user.ErrInvalidBirthDate,
		user.ErrInvalidRole,
		auth.ErrPasswordTooShort,
		domainauth.ErrTokenRequired,
		analytics.ErrInvalidPeriod,
		wishlist.ErrUserRequired,
	}},
}

func statusFor(err error) int {
	for _, row := range statusTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal failures are attached to the gin
// context for the access log and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	var fields validation.Errors
	if errors.As(err, &fields) {
		body["error"] = "validation failed"
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
