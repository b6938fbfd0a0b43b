package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/internradar/internal/model"
)

// These tests need a live server and are skipped unless the matching
// INTERNRADAR_TEST_* variable points at one.

func backendFromEnv(t *testing.T, env string, open func(ctx context.Context, url string) (model.SeenBackend, error)) model.SeenBackend {
	t.Helper()
	url := os.Getenv(env)
	if url == "" {
		t.Skipf("%s not set", env)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func assertRoundTrip(t *testing.T, b model.SeenBackend) {
	t.Helper()
	ctx := context.Background()

	want := []string{"n1", "n2", "n3"}
	require.NoError(t, b.Save(ctx, want))
	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, b.Save(ctx, nil))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisBackend_RoundTrip(t *testing.T) {
	b := backendFromEnv(t, "INTERNRADAR_TEST_REDIS_URL", func(ctx context.Context, url string) (model.SeenBackend, error) {
		return NewRedisBackend(ctx, url, "internradar:test:seen")
	})
	assertRoundTrip(t, b)
}

func TestPostgresBackend_RoundTrip(t *testing.T) {
	b := backendFromEnv(t, "INTERNRADAR_TEST_POSTGRES_URL", func(ctx context.Context, url string) (model.SeenBackend, error) {
		return NewPostgresBackend(ctx, url)
	})
	assertRoundTrip(t, b)
}

func TestMongoBackend_RoundTrip(t *testing.T) {
	b := backendFromEnv(t, "INTERNRADAR_TEST_MONGO_URL", func(ctx context.Context, url string) (model.SeenBackend, error) {
		return NewMongoBackend(ctx, url, "internradar_test")
	})
	assertRoundTrip(t, b)
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := Open(context.Background(), Options{Type: "etcd"})
	assert.ErrorContains(t, err, "unknown store type")
}

func TestOpen_DefaultsToFile(t *testing.T) {
	b, err := Open(context.Background(), Options{Path: t.TempDir() + "/seen.json"})
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())
}
