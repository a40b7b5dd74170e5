package listings

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"addisstay/internal/domain/shared/events"
	"addisstay/internal/domain/shared/money"
)

var (
	ErrListingNotFound = errors.New("listings: not found")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrLocationMissing = errors.New("listings: location is required")
	ErrGuestsLimit     = errors.New("listings: max guests must be at least 1")
	ErrNightlyRate     = errors.New("listings: nightly rate must be positive")
	ErrInvalidKind     = errors.New("listings: kind must be hotel or property")
	ErrInvalidState    = errors.New("listings: invalid state transition")
	ErrImagesRequired  = errors.New("listings: at least one image is required to activate")
	ErrInvalidRating   = errors.New("listings: rating must be between 1 and 5")
	ErrNotOwner        = errors.New("listings: listing belongs to another host")
)

type ListingID string
type HostID string

// Kind is the storefront category a listing is shown under.
type Kind string

const (
	KindHotel    Kind = "hotel"
	KindProperty Kind = "property"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindHotel:
		return KindHotel, nil
	case KindProperty, "":
		return KindProperty, nil
	default:
		return "", ErrInvalidKind
	}
}

type ListingState string

const (
	ListingDraft    ListingState = "draft"
	ListingActive   ListingState = "active"
	ListingInactive ListingState = "inactive"
)

type Listing struct {
	ID           ListingID
	Host         HostID
	Title        string
	Description  string
	Location     string
	Area         string
	Kind         Kind
	PropertyType string
	NightlyRate  money.Money
	Rating       float64
	ReviewsCount int
	Images       []string
	Amenities    []string
	MaxGuests    int
	Bedrooms     int
	Bathrooms    int
	Verified     bool
	Superhost    bool
	Distance     string
	State        ListingState
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	// All returns every listing in catalog order; recommendations score against it.
	All(ctx context.Context) ([]*Listing, error)
}

type CreateListingParams struct {
	ID           ListingID
	Host         HostID
	Title        string
	Description  string
	Location     string
	Area         string
	Kind         Kind
	PropertyType string
	NightlyRate  money.Money
	Rating       float64
	ReviewsCount int
	Images       []string
	Amenities    []string
	MaxGuests    int
	Bedrooms     int
	Bathrooms    int
	Verified     bool
	Superhost    bool
	Distance     string
	Now          time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listings: host is required")
	}
	details := Details{
		Title:        params.Title,
		Description:  params.Description,
		Location:     params.Location,
		Area:         params.Area,
		Kind:         params.Kind,
		PropertyType: params.PropertyType,
		NightlyRate:  params.NightlyRate,
		Amenities:    params.Amenities,
		MaxGuests:    params.MaxGuests,
		Bedrooms:     params.Bedrooms,
		Bathrooms:    params.Bathrooms,
		Distance:     params.Distance,
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Rating:       params.Rating,
		ReviewsCount: params.ReviewsCount,
		Images:       normalizeImages(params.Images),
		Verified:     params.Verified,
		Superhost:    params.Superhost,
		State:        ListingDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.apply(details)
	l.Record(ListingCreatedEvent{ListingID: l.ID, HostID: l.Host, Title: l.Title, At: now})
	return l, nil
}

// Details is the host-editable part of a listing.
type Details struct {
	Title        string
	Description  string
	Location     string
	Area         string
	Kind         Kind
	PropertyType string
	NightlyRate  money.Money
	Amenities    []string
	MaxGuests    int
	Bedrooms     int
	Bathrooms    int
	Distance     string
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(d.Location) == "" {
		return ErrLocationMissing
	}
	if d.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	if d.NightlyRate.Currency != money.BaseCurrency || !d.NightlyRate.IsPositive() {
		return ErrNightlyRate
	}
	if _, err := ParseKind(string(d.Kind)); err != nil {
		return err
	}
	return nil
}

func (l *Listing) apply(d Details) {
	kind, _ := ParseKind(string(d.Kind))
	l.Title = strings.TrimSpace(d.Title)
	l.Description = strings.TrimSpace(d.Description)
	l.Location = strings.TrimSpace(d.Location)
	l.Area = NormalizeArea(d.Area, d.Location)
	l.Kind = kind
	l.PropertyType = strings.ToLower(strings.TrimSpace(d.PropertyType))
	l.NightlyRate = d.NightlyRate
	l.Amenities = NormalizeTokens(d.Amenities)
	l.MaxGuests = d.MaxGuests
	l.Bedrooms = d.Bedrooms
	l.Bathrooms = d.Bathrooms
	l.Distance = strings.TrimSpace(d.Distance)
}

func (l *Listing) Update(d Details, now time.Time) error {
	if err := d.validate(); err != nil {
		return err
	}
	l.apply(d)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, HostID: l.Host, Title: l.Title, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if len(l.Images) == 0 {
		return ErrImagesRequired
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingActivatedEvent{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Deactivate(now time.Time, reason string) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingInactive
	l.UpdatedAt = now.UTC()
	l.Record(ListingDeactivatedEvent{ListingID: l.ID, HostID: l.Host, Reason: strings.TrimSpace(reason), At: l.UpdatedAt})
	return nil
}

// AddImages appends uploaded image URLs, skipping ones already attached.
func (l *Listing) AddImages(urls []string, now time.Time) {
	l.Images = normalizeImages(append(append([]string(nil), l.Images...), urls...))
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, HostID: l.Host, Title: l.Title, At: l.UpdatedAt})
}

// ApplyReview folds a new star rating into the rolling average.
func (l *Listing) ApplyReview(rating int, now time.Time) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	total := l.Rating*float64(l.ReviewsCount) + float64(rating)
	l.ReviewsCount++
	l.Rating = math.Round(total/float64(l.ReviewsCount)*100) / 100
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) OwnedBy(host HostID) bool {
	return l.Host == host
}

func (l *Listing) IsActive() bool {
	return l.State == ListingActive
}

// Cover is the first image, used on cards and notifications.
func (l *Listing) Cover() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// NormalizeArea lower-cases the neighbourhood. Without an explicit area the
// first comma-separated part of the location is used ("Bole, Addis Ababa").
func NormalizeArea(area, location string) string {
	area = strings.TrimSpace(area)
	if area == "" {
		area, _, _ = strings.Cut(location, ",")
	}
	return strings.ToLower(strings.TrimSpace(area))
}

func normalizeImages(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
