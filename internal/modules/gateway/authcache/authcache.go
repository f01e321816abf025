// Package authcache implements the gateway's two-tier API key verification
// (spec §4.7), grounded on _examples/original_source's auth.py: a fast
// SHA-256 cache guards a slow per-row hash verify so a recognized key never
// pays bcrypt's cost twice.
package authcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"agentstack/pipeline/internal/modules/gateway/entity"
)

// ProjectLister is the slow-path source of truth: every known project's
// API key hash. Satisfied by repository.ProjectRepository.
type ProjectLister interface {
	ListAll(ctx context.Context) ([]entity.Project, error)
}

// Cache verifies API keys and resolves them to a project ID. Safe for
// concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string // fastHash(apiKey) -> projectID
	maxSize int

	projects ProjectLister
}

// New builds a Cache bounded to maxSize entries (spec §4.7's
// _CACHE_MAX_SIZE = 1000 default).
func New(projects ProjectLister, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries:  make(map[string]string),
		maxSize:  maxSize,
		projects: projects,
	}
}

func fastHash(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// Verify resolves apiKey to a project ID, or an empty string if it matches
// no known project. The fast path is a plain map lookup; the slow path
// scans every project's hash with bcrypt and populates the fast path on a
// match, same as the original's first-use-only pbkdf2 scan.
func (c *Cache) Verify(ctx context.Context, apiKey string) (string, error) {
	key := fastHash(apiKey)

	c.mu.RLock()
	projectID, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return projectID, nil
	}

	projects, err := c.projects.ListAll(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range projects {
		if bcrypt.CompareHashAndPassword([]byte(p.APIKeyHash), []byte(apiKey)) == nil {
			c.store(key, p.ID)
			return p.ID, nil
		}
	}
	return "", nil
}

func (c *Cache) store(fastKey, projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		return
	}
	c.entries[fastKey] = projectID
}

// Invalidate drops a single key's cached fast-path entry, e.g. on project
// key rotation or deletion.
func (c *Cache) Invalidate(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fastHash(apiKey))
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}
