package authcache_test

import (
	"context"
	"testing"

	"agentstack/pipeline/internal/modules/gateway/authcache"
	"agentstack/pipeline/internal/modules/gateway/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeLister struct {
	projects []entity.Project
	calls    int
}

func (f *fakeLister) ListAll(ctx context.Context) ([]entity.Project, error) {
	f.calls++
	return f.projects, nil
}

func hashKey(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerify_UnknownKeyReturnsEmptyProjectID(t *testing.T) {
	// Arrange
	lister := &fakeLister{projects: []entity.Project{
		{ID: "proj-1", APIKeyHash: hashKey(t, "real-key")},
	}}
	cache := authcache.New(lister, 10)

	// Act
	id, err := cache.Verify(context.Background(), "wrong-key")

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestVerify_KnownKeyResolvesProjectAndCachesFastPath(t *testing.T) {
	// Arrange
	lister := &fakeLister{projects: []entity.Project{
		{ID: "proj-1", APIKeyHash: hashKey(t, "real-key")},
	}}
	cache := authcache.New(lister, 10)
	ctx := context.Background()

	// Act: first call pays the slow bcrypt scan
	id1, err1 := cache.Verify(ctx, "real-key")
	// second call should hit the fast path and skip ListAll entirely
	id2, err2 := cache.Verify(ctx, "real-key")

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, "proj-1", id1)
	assert.Equal(t, "proj-1", id2)
	assert.Equal(t, 1, lister.calls, "second verify must not re-scan the project list")
}

func TestVerify_InvalidateDropsFastPathEntry(t *testing.T) {
	// Arrange
	lister := &fakeLister{projects: []entity.Project{
		{ID: "proj-1", APIKeyHash: hashKey(t, "real-key")},
	}}
	cache := authcache.New(lister, 10)
	ctx := context.Background()
	_, _ = cache.Verify(ctx, "real-key")

	// Act
	cache.Invalidate("real-key")
	_, _ = cache.Verify(ctx, "real-key")

	// Assert
	assert.Equal(t, 2, lister.calls, "invalidated key must re-scan on next verify")
}

func TestVerify_ClearDropsAllFastPathEntries(t *testing.T) {
	// Arrange
	lister := &fakeLister{projects: []entity.Project{
		{ID: "proj-1", APIKeyHash: hashKey(t, "key-one")},
		{ID: "proj-2", APIKeyHash: hashKey(t, "key-two")},
	}}
	cache := authcache.New(lister, 10)
	ctx := context.Background()
	_, _ = cache.Verify(ctx, "key-one")
	_, _ = cache.Verify(ctx, "key-two")
	require.Equal(t, 2, lister.calls)

	// Act
	cache.Clear()
	_, _ = cache.Verify(ctx, "key-one")

	// Assert
	assert.Equal(t, 3, lister.calls)
}

func TestNew_NonPositiveMaxSizeDefaultsTo1000(t *testing.T) {
	// Arrange & Act
	lister := &fakeLister{}
	cache := authcache.New(lister, 0)

	// Assert: exercised indirectly — Verify on an empty project list must
	// not panic and must return no match.
	id, err := cache.Verify(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Empty(t, id)
}
