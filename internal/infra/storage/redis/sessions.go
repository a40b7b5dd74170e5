package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainauth "addisstay/internal/domain/auth"
	domainuser "addisstay/internal/domain/user"
)

// SessionStore keeps sessions as JSON values that expire with the session.
// A per-user set indexes tokens for DeleteByUser.
type SessionStore struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewSessionStore(client goredis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type sessionDocument struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(token domainauth.Token) string { return "session:" + string(token) }
func userSessionsKey(id domainuser.ID) string  { return "user_sessions:" + string(id) }

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return domainauth.ErrSessionExpired
	}
	roles := make([]string, len(session.Roles))
	for i, r := range session.Roles {
		roles[i] = string(r)
	}
	data, err := json.Marshal(sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Roles:     roles,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, userSessionsKey(session.UserID), string(session.Token)).Err()
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	var doc sessionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	roles := make([]domainuser.Role, len(doc.Roles))
	for i, r := range doc.Roles {
		roles[i] = domainuser.Role(r)
	}
	return &domainauth.Session{
		Token:     domainauth.Token(doc.Token),
		UserID:    domainuser.ID(doc.UserID),
		Roles:     roles,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	tokens, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(domainauth.Token(t)))
	}
	keys = append(keys, userSessionsKey(userID))
	return s.client.Del(ctx, keys...).Err()
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
