package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"addisstay/internal/domain/listings"
	domainreviews "addisstay/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("agg_review")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
	})
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainreviews.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrAlreadyReviewed
	}
	return err
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *ReviewRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"host_id": string(hostID)})
}

func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, listingID listings.ListingID, authorID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"listing_id": string(listingID), "author_id": authorID}, options.Count().SetLimit(1))
	return n > 0, err
}

// find returns matches newest first.
func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domainreviews.Review, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type reviewDocument struct {
	ID           string   `bson:"_id"`
	ListingID    string   `bson:"listing_id"`
	HostID       string   `bson:"host_id"`
	AuthorID     string   `bson:"author_id"`
	AuthorName   string   `bson:"author_name"`
	AuthorAvatar string   `bson:"author_avatar"`
	Rating       int      `bson:"rating"`
	Comment      string   `bson:"comment"`
	Photos       []string `bson:"photos"`
	Helpful      int      `bson:"helpful"`
	HelpfulBy    []string `bson:"helpful_by"`
	CreatedAt    int64    `bson:"created_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:           string(r.ID),
		ListingID:    string(r.ListingID),
		HostID:       string(r.HostID),
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName,
		AuthorAvatar: r.AuthorAvatar,
		Rating:       r.Rating,
		Comment:      r.Comment,
		Photos:       r.Photos,
		Helpful:      r.Helpful,
		HelpfulBy:    r.HelpfulBy,
		CreatedAt:    timeToTimestamp(r.CreatedAt),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:           domainreviews.ReviewID(d.ID),
		ListingID:    listings.ListingID(d.ListingID),
		HostID:       listings.HostID(d.HostID),
		AuthorID:     d.AuthorID,
		AuthorName:   d.AuthorName,
		AuthorAvatar: d.AuthorAvatar,
		Rating:       d.Rating,
		Comment:      d.Comment,
		Photos:       d.Photos,
		Helpful:      d.Helpful,
		HelpfulBy:    d.HelpfulBy,
		CreatedAt:    timestampToTime(d.CreatedAt),
	}
}
