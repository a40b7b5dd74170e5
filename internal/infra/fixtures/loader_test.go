package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/user"
	"addisstay/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func TestLoadSeedsOnce(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewFactory(memory.NewOutbox(nil, nil))
	loader := Loader{
		Factory: factory,
		Hasher:  plainHasher{},
		Now:     func() time.Time { return time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC) },
	}

	path := filepath.Join("..", "..", "..", "data", "listings.json")
	s, err := loader.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Hosts)
	assert.Equal(t, 8, s.Listings)

	l, err := factory.Listings.ByID(ctx, "addis-sheraton")
	require.NoError(t, err)
	assert.True(t, l.IsActive())
	assert.Equal(t, listings.HostID("host-meron"), l.Host)
	assert.Empty(t, l.PullEvents())

	host, err := factory.Users.ByID(ctx, "host-meron")
	require.NoError(t, err)
	assert.True(t, host.HasRole(user.RoleHost))
	assert.True(t, host.Verified)

	again, err := loader.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, again)
}

func TestLoadSkipsInvalidListing(t *testing.T) {
	factory := memory.NewFactory(memory.NewOutbox(nil, nil))
	loader := Loader{Factory: factory, Hasher: plainHasher{}}
	s, err := loader.Load(context.Background(), File{Listings: []Listing{{ID: "broken", Host: "h", Title: "No location"}}})
	require.NoError(t, err)
	assert.Zero(t, s.Listings)
}

func TestMissingFileIsIgnored(t *testing.T) {
	loader := Loader{Factory: memory.NewFactory(nil), Hasher: plainHasher{}}
	s, err := loader.LoadFile(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = loader.LoadFile(context.Background(), bad)
	assert.Error(t, err)
}
