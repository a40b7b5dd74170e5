package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/uow"
)

const addPhotosKey = "host.listings.photos"

var (
	ErrNoPhotos         = errors.New("listings: no photos provided")
	ErrUnsupportedPhoto = errors.New("listings: photos must be jpeg, png or webp")
)

type Photo struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type AddPhotosCommand struct {
	HostID    string `validate:"required"`
	ListingID string `validate:"required"`
	Photos    []Photo
}

func (AddPhotosCommand) Key() string          { return addPhotosKey }
func (AddPhotosCommand) RequiredRole() string { return "host" }
func (c AddPhotosCommand) ActorID() string    { return c.HostID }

// AddPhotosHandler uploads images to object storage and attaches their
// public URLs to the listing.
type AddPhotosHandler struct {
	HostCatalog
	Storage policies.PhotoStorage
}

var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (h *AddPhotosHandler) Handle(ctx context.Context, cmd AddPhotosCommand) (dto.ListingCard, error) {
	if len(cmd.Photos) == 0 {
		return dto.ListingCard{}, ErrNoPhotos
	}
	if h.Storage == nil {
		return dto.ListingCard{}, errors.New("listings: photo storage not configured")
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.ListingCard{}, err
	}
	listing, err := loadOwned(ctx, unit, cmd.HostID, cmd.ListingID)
	if err != nil {
		return dto.ListingCard{}, err
	}
	urls := make([]string, 0, len(cmd.Photos))
	for _, p := range cmd.Photos {
		ext, ok := photoExt[strings.ToLower(p.ContentType)]
		if !ok {
			return dto.ListingCard{}, fmt.Errorf("%w: %s", ErrUnsupportedPhoto, p.Name)
		}
		key := path.Join("listings", string(listing.ID), uuid.NewString()+ext)
		url, err := h.Storage.Upload(ctx, key, p.Reader, p.ContentType)
		if err != nil {
			return dto.ListingCard{}, fmt.Errorf("upload %s: %w", p.Name, err)
		}
		urls = append(urls, url)
	}
	listing.AddImages(urls, h.Clock.Now())
	return h.save(ctx, unit, listing)
}

var _ commands.Handler[AddPhotosCommand, dto.ListingCard] = (*AddPhotosHandler)(nil)
