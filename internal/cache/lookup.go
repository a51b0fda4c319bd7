package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"mywallet/internal/core"
	"mywallet/internal/ports"
)

// Defaults for the lookup caches.
const (
	DefaultLookupSize = 1024
	DefaultLookupTTL  = 5 * time.Minute
)

// UserLookup caches found identities by lowercased email. Misses are not
// cached so users registered later become visible immediately.
type UserLookup struct {
	next  ports.UserLookup
	cache *LRUCache[core.Identity]
}

func NewUserLookup(next ports.UserLookup, size int, ttl time.Duration) *UserLookup {
	return &UserLookup{next: next, cache: NewLRUCache[core.Identity](size, ttl)}
}

func (u *UserLookup) FindByEmail(ctx context.Context, email string) (core.Identity, bool, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if id, ok := u.cache.Get(key); ok {
		return id, true, nil
	}
	id, found, err := u.next.FindByEmail(ctx, email)
	if err != nil || !found {
		return id, found, err
	}
	u.cache.Set(key, id)
	return id, true, nil
}

func (u *UserLookup) CleanExpired() int { return u.cache.CleanExpired() }

// CategoryLookup caches found categories by id.
type CategoryLookup struct {
	next  ports.CategoryLookup
	cache *LRUCache[core.CategoryRef]
}

func NewCategoryLookup(next ports.CategoryLookup, size int, ttl time.Duration) *CategoryLookup {
	return &CategoryLookup{next: next, cache: NewLRUCache[core.CategoryRef](size, ttl)}
}

func (c *CategoryLookup) FindByID(ctx context.Context, id int64) (core.CategoryRef, bool, error) {
	key := strconv.FormatInt(id, 10)
	if ref, ok := c.cache.Get(key); ok {
		return ref, true, nil
	}
	ref, found, err := c.next.FindByID(ctx, id)
	if err != nil || !found {
		return ref, found, err
	}
	c.cache.Set(key, ref)
	return ref, true, nil
}

func (c *CategoryLookup) CleanExpired() int { return c.cache.CleanExpired() }
