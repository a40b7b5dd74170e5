package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/money"
)

const (
	createListingKey     = "host.listings.create"
	updateListingKey     = "host.listings.update"
	activateListingKey   = "host.listings.activate"
	deactivateListingKey = "host.listings.deactivate"
)

// ListingInput is the host-editable form. NightlyRate is in birr.
type ListingInput struct {
	Title        string `validate:"required,max=120"`
	Description  string `validate:"max=4000"`
	Location     string `validate:"required"`
	Area         string
	Kind         string `validate:"omitempty,oneof=hotel property"`
	PropertyType string
	NightlyRate  decimal.Decimal
	Amenities    []string
	MaxGuests    int `validate:"min=1,max=50"`
	Bedrooms     int `validate:"min=0"`
	Bathrooms    int `validate:"min=0"`
	Distance     string
}

func (in ListingInput) details() domainlistings.Details {
	return domainlistings.Details{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Area:         in.Area,
		Kind:         domainlistings.Kind(in.Kind),
		PropertyType: in.PropertyType,
		NightlyRate:  money.Birr(in.NightlyRate),
		Amenities:    in.Amenities,
		MaxGuests:    in.MaxGuests,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Distance:     in.Distance,
	}
}

type CreateListingCommand struct {
	HostID string `validate:"required"`
	Input  ListingInput
	Images []string
}

func (CreateListingCommand) Key() string          { return createListingKey }
func (CreateListingCommand) RequiredRole() string { return "host" }
func (c CreateListingCommand) ActorID() string    { return c.HostID }

type UpdateListingCommand struct {
	HostID    string `validate:"required"`
	ListingID string `validate:"required"`
	Input     ListingInput
}

func (UpdateListingCommand) Key() string          { return updateListingKey }
func (UpdateListingCommand) RequiredRole() string { return "host" }
func (c UpdateListingCommand) ActorID() string    { return c.HostID }

type ActivateListingCommand struct {
	HostID    string `validate:"required"`
	ListingID string `validate:"required"`
}

func (ActivateListingCommand) Key() string          { return activateListingKey }
func (ActivateListingCommand) RequiredRole() string { return "host" }
func (c ActivateListingCommand) ActorID() string    { return c.HostID }

type DeactivateListingCommand struct {
	HostID    string `validate:"required"`
	ListingID string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (DeactivateListingCommand) Key() string          { return deactivateListingKey }
func (DeactivateListingCommand) RequiredRole() string { return "host" }
func (c DeactivateListingCommand) ActorID() string    { return c.HostID }

// HostCatalog holds what every host catalog mutation needs. Any change purges
// cached recommendations since scores depend on the whole catalog.
type HostCatalog struct {
	Cache   policies.RecommendationCache
	Encoder outbox.EventEncoder
	Clock   support.Clock
}

type CreateListingHandler struct{ HostCatalog }

type UpdateListingHandler struct{ HostCatalog }

type ActivateListingHandler struct{ HostCatalog }

type DeactivateListingHandler struct{ HostCatalog }

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (dto.ListingCard, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.ListingCard{}, err
	}
	d := cmd.Input.details()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:           domainlistings.ListingID(uuid.NewString()),
		Host:         domainlistings.HostID(cmd.HostID),
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		Area:         d.Area,
		Kind:         d.Kind,
		PropertyType: d.PropertyType,
		NightlyRate:  d.NightlyRate,
		Images:       cmd.Images,
		Amenities:    d.Amenities,
		MaxGuests:    d.MaxGuests,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Distance:     d.Distance,
		Now:          h.Clock.Now(),
	})
	if err != nil {
		return dto.ListingCard{}, err
	}
	return h.save(ctx, unit, listing)
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (dto.ListingCard, error) {
	return h.mutate(ctx, cmd.HostID, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Update(cmd.Input.details(), now)
	})
}

func (h *ActivateListingHandler) Handle(ctx context.Context, cmd ActivateListingCommand) (dto.ListingCard, error) {
	return h.mutate(ctx, cmd.HostID, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Activate(now)
	})
}

func (h *DeactivateListingHandler) Handle(ctx context.Context, cmd DeactivateListingCommand) (dto.ListingCard, error) {
	return h.mutate(ctx, cmd.HostID, cmd.ListingID, func(l *domainlistings.Listing, now time.Time) error {
		return l.Deactivate(now, cmd.Reason)
	})
}

func (h *HostCatalog) mutate(ctx context.Context, hostID, listingID string, change func(*domainlistings.Listing, time.Time) error) (dto.ListingCard, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.ListingCard{}, err
	}
	listing, err := loadOwned(ctx, unit, hostID, listingID)
	if err != nil {
		return dto.ListingCard{}, err
	}
	if err := change(listing, h.Clock.Now()); err != nil {
		return dto.ListingCard{}, err
	}
	return h.save(ctx, unit, listing)
}

func (h *HostCatalog) save(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing) (dto.ListingCard, error) {
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingCard{}, err
	}
	if err := support.PublishEvents(ctx, unit, h.Encoder, listing); err != nil {
		return dto.ListingCard{}, err
	}
	if h.Cache != nil {
		unit.AfterCommit(h.Cache.Purge)
	}
	return dto.MapListingCard(listing, money.BaseCurrency), nil
}

func loadOwned(ctx context.Context, unit uow.UnitOfWork, hostID, listingID string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(domainlistings.HostID(hostID)) {
		return nil, domainlistings.ErrNotOwner
	}
	return listing, nil
}

var (
	_ commands.Handler[CreateListingCommand, dto.ListingCard]     = (*CreateListingHandler)(nil)
	_ commands.Handler[UpdateListingCommand, dto.ListingCard]     = (*UpdateListingHandler)(nil)
	_ commands.Handler[ActivateListingCommand, dto.ListingCard]   = (*ActivateListingHandler)(nil)
	_ commands.Handler[DeactivateListingCommand, dto.ListingCard] = (*DeactivateListingHandler)(nil)
)
