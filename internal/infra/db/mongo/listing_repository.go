package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "seq", Value: 1}}},
	})
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainlistings.ErrListingNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	doc.Version = l.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, l.Version, doc); err != nil {
		return err
	}
	l.Version = doc.Version
	return nil
}

// Search pushes the indexable filters to Mongo and applies the rest in memory
// so both backends agree on matching and ordering.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	filter := bson.M{}
	if params.Host != "" {
		filter["host_id"] = string(params.Host)
	}
	if !params.IncludeHidden {
		filter["state"] = string(domainlistings.ListingActive)
	}
	if len(params.Kinds) > 0 {
		kinds := make([]string, len(params.Kinds))
		for i, k := range params.Kinds {
			kinds[i] = string(k)
		}
		filter["kind"] = bson.M{"$in": kinds}
	}
	if len(params.PropertyTypes) > 0 {
		filter["property_type"] = bson.M{"$in": params.PropertyTypes}
	}
	if len(params.Amenities) > 0 {
		filter["amenities"] = bson.M{"$in": params.Amenities}
	}
	if params.MinGuests > 0 {
		filter["max_guests"] = bson.M{"$gte": params.MinGuests}
	}
	if params.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": params.MinRating}
	}
	candidates, err := r.find(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	matched := candidates[:0]
	for _, l := range candidates {
		if params.Matches(l) {
			matched = append(matched, l)
		}
	}
	domainlistings.SortListings(matched, params.Sort)
	return domainlistings.Page(matched, params.Offset, params.Limit), nil
}

func (r *ListingRepository) All(ctx context.Context) ([]*domainlistings.Listing, error) {
	return r.find(ctx, bson.M{})
}

// find returns matches in catalog order.
func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type listingDocument struct {
	ID           string        `bson:"_id"`
	HostID       string        `bson:"host_id"`
	Title        string        `bson:"title"`
	Description  string        `bson:"description"`
	Location     string        `bson:"location"`
	Area         string        `bson:"area"`
	Kind         string        `bson:"kind"`
	PropertyType string        `bson:"property_type"`
	NightlyRate  moneyDocument `bson:"nightly_rate"`
	Rating       float64       `bson:"rating"`
	ReviewsCount int           `bson:"reviews_count"`
	Images       []string      `bson:"images"`
	Amenities    []string      `bson:"amenities"`
	MaxGuests    int           `bson:"max_guests"`
	Bedrooms     int           `bson:"bedrooms"`
	Bathrooms    int           `bson:"bathrooms"`
	Verified     bool          `bson:"verified"`
	Superhost    bool          `bson:"superhost"`
	Distance     string        `bson:"distance"`
	State        string        `bson:"state"`
	// Seq is the creation instant in ms; it defines catalog order.
	Seq       int64 `bson:"seq"`
	CreatedAt int64 `bson:"created_at"`
	UpdatedAt int64 `bson:"updated_at"`
	Version   int64 `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		Location:     l.Location,
		Area:         l.Area,
		Kind:         string(l.Kind),
		PropertyType: l.PropertyType,
		NightlyRate:  newMoneyDocument(l.NightlyRate),
		Rating:       l.Rating,
		ReviewsCount: l.ReviewsCount,
		Images:       l.Images,
		Amenities:    l.Amenities,
		MaxGuests:    l.MaxGuests,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Verified:     l.Verified,
		Superhost:    l.Superhost,
		Distance:     l.Distance,
		State:        string(l.State),
		Seq:          timeToTimestamp(l.CreatedAt),
		CreatedAt:    timeToTimestamp(l.CreatedAt),
		UpdatedAt:    timeToTimestamp(l.UpdatedAt),
		Version:      l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	rate := d.NightlyRate.toMoney()
	if rate.Currency == "" {
		rate.Currency = money.BaseCurrency
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainlistings.HostID(d.HostID),
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		Area:         d.Area,
		Kind:         domainlistings.Kind(d.Kind),
		PropertyType: d.PropertyType,
		NightlyRate:  rate,
		Rating:       d.Rating,
		ReviewsCount: d.ReviewsCount,
		Images:       d.Images,
		Amenities:    d.Amenities,
		MaxGuests:    d.MaxGuests,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Verified:     d.Verified,
		Superhost:    d.Superhost,
		Distance:     d.Distance,
		State:        domainlistings.ListingState(d.State),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}
