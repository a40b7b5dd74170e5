// Package fixtures seeds demo hosts and listings from a JSON file.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"addisstay/internal/app/uow"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/money"
	"addisstay/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// File is the on-disk layout of data/listings.json.
type File struct {
	Hosts    []Host    `json:"hosts"`
	Listings []Listing `json:"listings"`
}

type Host struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// Listing carries NightlyRate in birr.
type Listing struct {
	ID           string          `json:"id"`
	Host         string          `json:"host"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Area         string          `json:"area"`
	Kind         string          `json:"kind"`
	PropertyType string          `json:"property_type"`
	NightlyRate  decimal.Decimal `json:"nightly_rate"`
	Rating       float64         `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
	Images       []string        `json:"images"`
	Amenities    []string        `json:"amenities"`
	MaxGuests    int             `json:"max_guests"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Verified     bool            `json:"verified"`
	Superhost    bool            `json:"superhost"`
	Distance     string          `json:"distance"`
}

type Loader struct {
	Factory uow.UoWFactory
	Hasher  PasswordHasher
	Logger  *slog.Logger
	Now     func() time.Time
}

// Summary counts what a Load call created.
type Summary struct {
	Hosts    int
	Listings int
}

// LoadFile reads path and seeds it. A missing file is not an error.
func (l Loader) LoadFile(ctx context.Context, path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger().Info("fixtures file not found, skipping", "path", path)
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		return Summary{}, nil
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return Summary{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return l.Load(ctx, f)
}

// Load inserts hosts and active listings that do not exist yet, so it is
// safe to run on every start against a persistent store.
func (l Loader) Load(ctx context.Context, f File) (Summary, error) {
	if l.Factory == nil {
		return Summary{}, errors.New("fixtures: unit of work factory required")
	}
	unit, err := l.Factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return Summary{}, err
	}
	ctx = uow.Bind(ctx, unit)
	summary, err := l.seed(ctx, unit, f)
	if err != nil {
		_ = unit.Rollback(ctx)
		return Summary{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (l Loader) seed(ctx context.Context, unit uow.UnitOfWork, f File) (Summary, error) {
	now := l.now()
	var s Summary
	for _, h := range f.Hosts {
		if _, err := unit.Users().ByID(ctx, user.ID(h.ID)); err == nil {
			continue
		} else if !errors.Is(err, user.ErrNotFound) {
			return s, err
		}
		u, err := l.host(h, now)
		if err != nil {
			l.logger().Error("fixture host invalid", "host_id", h.ID, "error", err)
			continue
		}
		if err := unit.Users().Save(ctx, u); err != nil {
			return s, fmt.Errorf("save host %s: %w", h.ID, err)
		}
		s.Hosts++
	}
	for i, fx := range f.Listings {
		if _, err := unit.Listings().ByID(ctx, listings.ListingID(fx.ID)); err == nil {
			continue
		} else if !errors.Is(err, listings.ErrListingNotFound) {
			return s, err
		}
		// later entries get later timestamps so catalog order follows the file
		listing, err := newListing(fx, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			l.logger().Error("fixture listing invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return s, fmt.Errorf("save listing %s: %w", fx.ID, err)
		}
		s.Listings++
	}
	l.logger().Info("fixtures loaded", "hosts", s.Hosts, "listings", s.Listings)
	return s, nil
}

func (l Loader) host(h Host, now time.Time) (*user.User, error) {
	if l.Hasher == nil {
		return nil, errors.New("fixtures: password hasher required")
	}
	hash, err := l.Hasher.Hash(h.Password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(user.CreateParams{
		ID:           user.ID(h.ID),
		Email:        h.Email,
		FirstName:    h.FirstName,
		LastName:     h.LastName,
		Phone:        h.Phone,
		PasswordHash: hash,
		AcceptTerms:  true,
		Roles:        []user.Role{user.RoleGuest, user.RoleHost},
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	u.MarkVerified(now)
	return u, nil
}

func newListing(fx Listing, now time.Time) (*listings.Listing, error) {
	l, err := listings.NewListing(listings.CreateListingParams{
		ID:           listings.ListingID(fx.ID),
		Host:         listings.HostID(fx.Host),
		Title:        fx.Title,
		Description:  fx.Description,
		Location:     fx.Location,
		Area:         fx.Area,
		Kind:         listings.Kind(fx.Kind),
		PropertyType: fx.PropertyType,
		NightlyRate:  money.Birr(fx.NightlyRate),
		Rating:       fx.Rating,
		ReviewsCount: fx.ReviewsCount,
		Images:       fx.Images,
		Amenities:    fx.Amenities,
		MaxGuests:    fx.MaxGuests,
		Bedrooms:     fx.Bedrooms,
		Bathrooms:    fx.Bathrooms,
		Verified:     fx.Verified,
		Superhost:    fx.Superhost,
		Distance:     fx.Distance,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if err := l.Activate(now); err != nil {
		return nil, err
	}
	// seeded listings are not news; nothing should reach the outbox
	l.PullEvents()
	return l, nil
}

// DefaultPath finds data/listings.json from the repo root or a subdirectory.
func DefaultPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("..", "..", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func (l Loader) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
