package ginserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	analyticsapp "addisstay/internal/app/handlers/analytics"
	listingapp "addisstay/internal/app/handlers/listings"
	"addisstay/internal/app/queries"
	domainlistings "addisstay/internal/domain/listings"
)

const (
	maxListingPhotoSizeBytes int64 = 10 * 1024 * 1024
	maxPhotosPerUpload             = 10
)

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type hostListingRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Area         string          `json:"area"`
	Kind         string          `json:"kind"`
	PropertyType string          `json:"property_type"`
	NightlyRate  decimal.Decimal `json:"nightly_rate"`
	Amenities    []string        `json:"amenities"`
	MaxGuests    int             `json:"max_guests"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Distance     string          `json:"distance"`
	Images       []string        `json:"images"`
}

func (r hostListingRequest) input() listingapp.ListingInput {
	return listingapp.ListingInput{
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		Area:         r.Area,
		Kind:         r.Kind,
		PropertyType: r.PropertyType,
		NightlyRate:  r.NightlyRate,
		Amenities:    r.Amenities,
		MaxGuests:    r.MaxGuests,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Distance:     r.Distance,
	}
}

func (h *HostListingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := listingapp.ListHostListingsQuery{
		HostID:   p.ID,
		Sort:     domainlistings.CatalogSort(c.Query("sort")),
		Currency: currency,
	}
	result, err := queries.Ask[listingapp.ListHostListingsQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HostListingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.CreateListingCommand{HostID: p.ID, Input: req.input(), Images: req.Images}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, dto.ListingCard](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *HostListingHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.UpdateListingCommand{HostID: p.ID, ListingID: c.Param("id"), Input: req.input()}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, dto.ListingCard](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HostListingHandler) Activate(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := listingapp.ActivateListingCommand{HostID: p.ID, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.ActivateListingCommand, dto.ListingCard](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HostListingHandler) Deactivate(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	cmd := listingapp.DeactivateListingCommand{HostID: p.ID, ListingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[listingapp.DeactivateListingCommand, dto.ListingCard](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPhotos takes a multipart form with one or more "photos" parts. The
// content type is sniffed from the bytes, not trusted from the client.
func (h *HostListingHandler) UploadPhotos(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, fmt.Errorf("%w: multipart form expected", errBadRequest))
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		respondError(c, listingapp.ErrNoPhotos)
		return
	}
	if len(files) > maxPhotosPerUpload {
		respondError(c, fmt.Errorf("%w: at most %d photos per upload", errBadRequest, maxPhotosPerUpload))
		return
	}
	photos := make([]listingapp.Photo, 0, len(files))
	for _, fh := range files {
		photo, err := readPhoto(fh)
		if err != nil {
			respondError(c, err)
			return
		}
		photos = append(photos, photo)
	}
	cmd := listingapp.AddPhotosCommand{HostID: p.ID, ListingID: c.Param("id"), Photos: photos}
	result, err := commands.Dispatch[listingapp.AddPhotosCommand, dto.ListingCard](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("photo upload failed", "listing_id", cmd.ListingID, "error", err)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func readPhoto(fh *multipart.FileHeader) (listingapp.Photo, error) {
	if fh.Size > maxListingPhotoSizeBytes {
		return listingapp.Photo{}, fmt.Errorf("%w: %s is larger than %d MB", errBadRequest, fh.Filename, maxListingPhotoSizeBytes/1024/1024)
	}
	file, err := fh.Open()
	if err != nil {
		return listingapp.Photo{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingPhotoSizeBytes+1))
	if err != nil {
		return listingapp.Photo{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(data) == 0 {
		return listingapp.Photo{}, fmt.Errorf("%w: %s is empty", errBadRequest, fh.Filename)
	}
	if int64(len(data)) > maxListingPhotoSizeBytes {
		return listingapp.Photo{}, fmt.Errorf("%w: %s is larger than %d MB", errBadRequest, fh.Filename, maxListingPhotoSizeBytes/1024/1024)
	}
	return listingapp.Photo{
		Name:        fh.Filename,
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}, nil
}

type AnalyticsHandler struct {
	Queries queries.Bus
}

// Dashboard accepts ?period=7days|30days|90days|1year.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := analyticsapp.HostDashboardQuery{HostID: p.ID, Period: c.Query("period"), Currency: currency}
	result, err := queries.Ask[analyticsapp.HostDashboardQuery, dto.Dashboard](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
