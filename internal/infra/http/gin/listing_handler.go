package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/dto"
	listingapp "addisstay/internal/app/handlers/listings"
	"addisstay/internal/app/queries"
	domainlistings "addisstay/internal/domain/listings"
)

// ListingHandler wires the public catalog queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
}

// Catalog responds with a filtered page of active listings. Price bounds are
// read in the display currency.
func (h *ListingHandler) Catalog(c *gin.Context) {
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	priceMin, err := parseDecimal("min_price", c.Query("min_price"))
	if err != nil {
		respondError(c, err)
		return
	}
	priceMax, err := parseDecimal("max_price", c.Query("max_price"))
	if err != nil {
		respondError(c, err)
		return
	}
	var kinds []domainlistings.Kind
	for _, k := range splitCSV(c.Query("kind")) {
		kinds = append(kinds, domainlistings.Kind(k))
	}
	query := listingapp.SearchCatalogQuery{
		Params: domainlistings.SearchParams{
			Query:         c.Query("q"),
			Area:          c.Query("area"),
			PriceMin:      priceMin,
			PriceMax:      priceMax,
			Amenities:     splitCSV(c.Query("amenities")),
			MinRating:     parseFloat(c.Query("min_rating")),
			Kinds:         kinds,
			PropertyTypes: splitCSV(c.Query("property_type")),
			MinGuests:     parseInt(c.Query("guests")),
			Sort:          domainlistings.CatalogSort(c.Query("sort")),
			Limit:         parseInt(c.Query("limit")),
			Offset:        parseInt(c.Query("offset")),
		},
		Currency: currency,
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ListingHandler) Detail(c *gin.Context) {
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := listingapp.GetListingQuery{
		ID:       c.Param("id"),
		ViewerID: viewerID(c),
		Currency: currency,
	}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ListingHandler) Recommendations(c *gin.Context) {
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := listingapp.RecommendationsQuery{
		ID:       c.Param("id"),
		Limit:    parseInt(c.Query("limit")),
		Currency: currency,
	}
	result, err := queries.Ask[listingapp.RecommendationsQuery, dto.RecommendationList](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type stayRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

func (h *ListingHandler) Quote(c *gin.Context) {
	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	checkIn, err := parseDate("check_in", req.CheckIn)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDate("check_out", req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Adults == 0 {
		req.Adults = 1
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := listingapp.QuoteQuery{
		ID:       c.Param("id"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Adults:   req.Adults,
		Children: req.Children,
		Currency: currency,
	}
	result, err := queries.Ask[listingapp.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
