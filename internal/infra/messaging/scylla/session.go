package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gocql/gocql"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type SessionConfig struct {
	Hosts             []string
	Keyspace          string
	Username          string
	Password          string
	Timeout           time.Duration
	ReplicationFactor int
}

// NewSession ensures schema exists and returns a connected Scylla session.
func NewSession(ctx context.Context, cfg SessionConfig, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(cfg.Keyspace) {
		return nil, fmt.Errorf("invalid keyspace name: %s", cfg.Keyspace)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ReplicationFactor <= 0 {
		cfg.ReplicationFactor = 1
	}

	baseSession, err := newCluster(cfg, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to scylla: %w", err)
	}
	defer baseSession.Close()
	if err := ensureKeyspace(ctx, baseSession, cfg); err != nil {
		return nil, err
	}

	session, err := newCluster(cfg, cfg.Keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", cfg.Keyspace, err)
	}
	if err := ensureTables(ctx, session); err != nil {
		session.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", cfg.Hosts, "keyspace", cfg.Keyspace)
	}
	return session, nil
}

func newCluster(cfg SessionConfig, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Consistency = gocql.Quorum
	cluster.Keyspace = keyspace
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{Username: cfg.Username, Password: cfg.Password}
	}
	return cluster
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, cfg SessionConfig) error {
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		cfg.Keyspace, cfg.ReplicationFactor,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}
	return nil
}

var schema = []struct{ name, cql string }{
	{"conversations", `
CREATE TABLE IF NOT EXISTS conversations (
	id text PRIMARY KEY,
	listing_id text,
	listing_title text,
	host_id text,
	host_name text,
	guest_id text,
	guest_name text,
	participants set<text>,
	booking_id text,
	booking_status text,
	last_message text,
	last_message_at timestamp,
	unread map<text, int>,
	created_at timestamp
)`},
	{"messages", `
CREATE TABLE IF NOT EXISTS messages (
	conversation_id text,
	created_at timestamp,
	message_id text,
	sender_id text,
	sender_name text,
	text text,
	PRIMARY KEY (conversation_id, created_at, message_id)
) WITH CLUSTERING ORDER BY (created_at DESC, message_id DESC)`},
}

func ensureTables(ctx context.Context, session *gocql.Session) error {
	for _, table := range schema {
		if err := session.Query(table.cql).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("create %s table: %w", table.name, err)
		}
	}
	return nil
}
