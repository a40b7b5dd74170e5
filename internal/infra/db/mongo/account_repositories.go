package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnotifications "addisstay/internal/domain/notifications"
	domainuser "addisstay/internal/domain/user"
	domainwishlist "addisstay/internal/domain/wishlist"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection("agg_user")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)})
	return &UserRepository{col: col}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	normalized, err := domainuser.NormalizeEmail(email)
	if err != nil {
		return nil, domainuser.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"email": normalized})
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domainuser.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

type userDocument struct {
	ID           string   `bson:"_id"`
	Email        string   `bson:"email"`
	FirstName    string   `bson:"first_name"`
	LastName     string   `bson:"last_name"`
	Phone        string   `bson:"phone"`
	Avatar       string   `bson:"avatar"`
	DateOfBirth  int64    `bson:"date_of_birth"`
	Nationality  string   `bson:"nationality"`
	Currency     string   `bson:"currency"`
	Language     string   `bson:"language"`
	Verified     bool     `bson:"verified"`
	PasswordHash string   `bson:"password_hash"`
	Roles        []string `bson:"roles"`
	TermsAt      int64    `bson:"terms_at"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Avatar:       u.Avatar,
		DateOfBirth:  timeToTimestamp(u.DateOfBirth),
		Nationality:  u.Nationality,
		Currency:     u.Preferences.Currency,
		Language:     u.Preferences.Language,
		Verified:     u.Verified,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		TermsAt:      timeToTimestamp(u.TermsAt),
		CreatedAt:    timeToTimestamp(u.CreatedAt),
		UpdatedAt:    timeToTimestamp(u.UpdatedAt),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	roles := make([]domainuser.Role, len(d.Roles))
	for i, r := range d.Roles {
		roles[i] = domainuser.Role(r)
	}
	prefs := domainuser.DefaultPreferences()
	if d.Currency != "" {
		prefs.Currency = d.Currency
	}
	if d.Language != "" {
		prefs.Language = d.Language
	}
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		Avatar:       d.Avatar,
		DateOfBirth:  timestampToTime(d.DateOfBirth),
		Nationality:  d.Nationality,
		Preferences:  prefs,
		Verified:     d.Verified,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		TermsAt:      timestampToTime(d.TermsAt),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	col := db.Collection("app_notification")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "key", Value: 1}}},
	})
	return &NotificationRepository{col: col}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotifications.ID) (*domainnotifications.Notification, error) {
	var doc notificationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainnotifications.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *NotificationRepository) Save(ctx context.Context, n *domainnotifications.Notification) error {
	doc := newNotificationDocument(n)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *NotificationRepository) Delete(ctx context.Context, id domainnotifications.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainnotifications.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domainnotifications.Notification, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []notificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainnotifications.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

func (r *NotificationRepository) ExistsByKey(ctx context.Context, userID, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "key": key}, options.Count().SetLimit(1))
	return n > 0, err
}

type notificationDocument struct {
	ID        string                       `bson:"_id"`
	UserID    string                       `bson:"user_id"`
	Type      string                       `bson:"type"`
	Title     string                       `bson:"title"`
	Message   string                       `bson:"message"`
	Priority  string                       `bson:"priority"`
	ActionURL string                       `bson:"action_url"`
	Metadata  domainnotifications.Metadata `bson:"metadata"`
	Key       string                       `bson:"key"`
	Read      bool                         `bson:"read"`
	CreatedAt int64                        `bson:"created_at"`
}

func newNotificationDocument(n *domainnotifications.Notification) notificationDocument {
	return notificationDocument{
		ID:        string(n.ID),
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		ActionURL: n.ActionURL,
		Metadata:  n.Metadata,
		Key:       n.Key,
		Read:      n.Read,
		CreatedAt: timeToTimestamp(n.CreatedAt),
	}
}

func (d notificationDocument) toAggregate() *domainnotifications.Notification {
	return &domainnotifications.Notification{
		ID:        domainnotifications.ID(d.ID),
		UserID:    d.UserID,
		Type:      domainnotifications.Type(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		Priority:  domainnotifications.Priority(d.Priority),
		ActionURL: d.ActionURL,
		Metadata:  d.Metadata,
		Key:       d.Key,
		Read:      d.Read,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

type WishlistRepository struct {
	col *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{col: db.Collection("app_wishlist")}
}

// ByUser returns nil when the user has not saved anything yet.
func (r *WishlistRepository) ByUser(ctx context.Context, userID string) (*domainwishlist.Wishlist, error) {
	var doc wishlistDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &domainwishlist.Wishlist{UserID: doc.UserID, Entries: doc.Entries}, nil
}

func (r *WishlistRepository) Save(ctx context.Context, w *domainwishlist.Wishlist) error {
	doc := wishlistDocument{UserID: w.UserID, Entries: w.Entries}
	if doc.Entries == nil {
		doc.Entries = []domainwishlist.Entry{}
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.UserID}, doc, options.Replace().SetUpsert(true))
	return err
}

type wishlistDocument struct {
	UserID  string                 `bson:"_id"`
	Entries []domainwishlist.Entry `bson:"entries"`
}

var (
	_ domainuser.Repository          = (*UserRepository)(nil)
	_ domainnotifications.Repository = (*NotificationRepository)(nil)
	_ domainwishlist.Repository      = (*WishlistRepository)(nil)
)
