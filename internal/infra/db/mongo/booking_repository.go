package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "addisstay/internal/domain/booking"
	"addisstay/internal/domain/listings"
	domainrange "addisstay/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "range.check_in", Value: 1}}},
	})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainbooking.ErrBookingNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, b.Version, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"host_id": string(hostID)})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) ListCheckingIn(ctx context.Context, status domainbooking.Status, from, to time.Time) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{
		"status":         string(status),
		"range.check_in": bson.M{"$gte": from.UnixMilli(), "$lt": to.UnixMilli()},
	})
}

// find returns matches oldest first.
func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID              string            `bson:"_id"`
	ListingID       string            `bson:"listing_id"`
	ListingTitle    string            `bson:"listing_title"`
	ListingImage    string            `bson:"listing_image"`
	HostID          string            `bson:"host_id"`
	GuestID         string            `bson:"guest_id"`
	Guest           guestDocument     `bson:"guest"`
	Range           rangeDocument     `bson:"range"`
	Adults          int               `bson:"adults"`
	Children        int               `bson:"children"`
	Price           breakdownDocument `bson:"price"`
	Status          string            `bson:"status"`
	SpecialRequests string            `bson:"special_requests"`
	CancelReason    string            `bson:"cancel_reason"`
	CancelledBy     string            `bson:"cancelled_by"`
	CreatedAt       int64             `bson:"created_at"`
	UpdatedAt       int64             `bson:"updated_at"`
	Version         int64             `bson:"version"`
}

type guestDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		ListingTitle:    b.ListingTitle,
		ListingImage:    b.ListingImage,
		HostID:          string(b.HostID),
		GuestID:         b.GuestID,
		Guest:           guestDocument{Name: b.Guest.Name, Email: b.Guest.Email, Phone: b.Guest.Phone},
		Range:           rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Adults:          b.Adults,
		Children:        b.Children,
		Price:           newBreakdownDocument(b.Price),
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CancelReason:    b.CancelReason,
		CancelledBy:     b.CancelledBy,
		CreatedAt:       timeToTimestamp(b.CreatedAt),
		UpdatedAt:       timeToTimestamp(b.UpdatedAt),
		Version:         b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		ListingID:       listings.ListingID(d.ListingID),
		ListingTitle:    d.ListingTitle,
		ListingImage:    d.ListingImage,
		HostID:          listings.HostID(d.HostID),
		GuestID:         d.GuestID,
		Guest:           domainbooking.Guest{Name: d.Guest.Name, Email: d.Guest.Email, Phone: d.Guest.Phone},
		Range:           domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Adults:          d.Adults,
		Children:        d.Children,
		Price:           d.Price.toBreakdown(),
		Status:          domainbooking.Status(d.Status),
		SpecialRequests: d.SpecialRequests,
		CancelReason:    d.CancelReason,
		CancelledBy:     d.CancelledBy,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}
