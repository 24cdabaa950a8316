// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/cache"
)

// decisionCacheSize bounds cached decisions. The policy only has a handful
// of (role, object, action) triples.
const decisionCacheSize = 256

var (
	decisionAllowed = []byte{1}
	decisionDenied  = []byte{0}
)

// decisionCache keeps enforcer results in a cache.MemoryStore so repeated
// checks on hot routes skip casbin.
type decisionCache struct {
	store *cache.MemoryStore
	ttl   time.Duration
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &decisionCache{store: cache.NewMemoryStore(decisionCacheSize, ttl), ttl: ttl}
}

func decisionKey(role, object, action string) string {
	return "authz:" + role + ":" + object + ":" + action
}

// get returns (allowed, found).
func (c *decisionCache) get(role, object, action string) (bool, bool) {
	v, ok, _ := c.store.Get(context.Background(), decisionKey(role, object, action))
	if !ok || len(v) != 1 {
		return false, false
	}
	return v[0] == 1, true
}

func (c *decisionCache) set(role, object, action string, allowed bool) {
	v := decisionDenied
	if allowed {
		v = decisionAllowed
	}
	_ = c.store.Set(context.Background(), decisionKey(role, object, action), v, c.ttl)
}

func (c *decisionCache) size() int {
	return c.store.Len()
}

func (c *decisionCache) stop() {
	_ = c.store.Close()
}
