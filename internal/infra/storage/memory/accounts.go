package memory

import (
	"context"
	"slices"
	"sync"

	domainauth "addisstay/internal/domain/auth"
	domainnotifications "addisstay/internal/domain/notifications"
	domainuser "addisstay/internal/domain/user"
	domainwishlist "addisstay/internal/domain/wishlist"
)

type UserRepository struct {
	mu      sync.RWMutex
	items   map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:   make(map[domainuser.ID]*domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(r.items[id]), nil
}

// Save rejects a second account for an email already taken by another user.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	_, err := r.save(u)
	return err
}

func (r *UserRepository) save(u *domainuser.User) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[u.Email]; ok && owner != u.ID {
		return nil, domainuser.ErrEmailAlreadyUsed
	}
	id := u.ID
	prev, existed := r.items[id]
	r.put(cloneUser(u))
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.items[id]; ok {
			delete(r.byEmail, cur.Email)
			delete(r.items, id)
		}
		if existed {
			r.put(prev)
		}
	}, nil
}

// put must be called with mu held.
func (r *UserRepository) put(u *domainuser.User) {
	if prev, ok := r.items[u.ID]; ok && prev.Email != u.Email {
		delete(r.byEmail, prev.Email)
	}
	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID
}

func cloneUser(u *domainuser.User) *domainuser.User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

type SessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.items[session.Token] = &c
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.items {
		if session.UserID == userID {
			delete(s.items, token)
		}
	}
	return nil
}

// WishlistRepository returns nil without error for users who never saved a
// listing.
type WishlistRepository struct {
	mu    sync.RWMutex
	items map[string]*domainwishlist.Wishlist
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{items: make(map[string]*domainwishlist.Wishlist)}
}

func (r *WishlistRepository) ByUser(ctx context.Context, userID string) (*domainwishlist.Wishlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return &domainwishlist.Wishlist{UserID: w.UserID, Entries: slices.Clone(w.Entries)}, nil
}

func (r *WishlistRepository) Save(ctx context.Context, w *domainwishlist.Wishlist) error {
	r.save(w)
	return nil
}

func (r *WishlistRepository) save(w *domainwishlist.Wishlist) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := w.UserID
	prev, existed := r.items[id]
	r.items[id] = &domainwishlist.Wishlist{UserID: w.UserID, Entries: slices.Clone(w.Entries)}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	}
}

type NotificationRepository struct {
	mu    sync.RWMutex
	items map[domainnotifications.ID]*domainnotifications.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[domainnotifications.ID]*domainnotifications.Notification)}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotifications.ID) (*domainnotifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[id]
	if !ok {
		return nil, domainnotifications.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *NotificationRepository) Save(ctx context.Context, n *domainnotifications.Notification) error {
	r.save(n)
	return nil
}

func (r *NotificationRepository) save(n *domainnotifications.Notification) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	prev, existed := r.items[n.ID]
	r.items[n.ID] = &c
	return r.restore(n.ID, prev, existed)
}

func (r *NotificationRepository) Delete(ctx context.Context, id domainnotifications.ID) error {
	_, err := r.delete(id)
	return err
}

func (r *NotificationRepository) delete(id domainnotifications.ID) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.items[id]
	if !ok {
		return nil, domainnotifications.ErrNotFound
	}
	delete(r.items, id)
	return r.restore(id, prev, true), nil
}

func (r *NotificationRepository) restore(id domainnotifications.ID, prev *domainnotifications.Notification, existed bool) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	}
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domainnotifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainnotifications.Notification, 0)
	for _, n := range r.items {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *domainnotifications.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) ExistsByKey(ctx context.Context, userID, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.items {
		if n.UserID == userID && n.Key == key {
			return true, nil
		}
	}
	return false, nil
}
