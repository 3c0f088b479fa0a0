package actionsapi

import (
	"net/http"
	"sync"

	"github.com/gregjones/httpcache"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheEntries bounds the number of responses kept per credential.
const DefaultCacheEntries = 256

// responseCache is an httpcache.Cache that evicts the least recently used
// response once it holds maxEntries.
type responseCache struct {
	entries *lru.Cache[string, []byte]
}

var _ httpcache.Cache = (*responseCache)(nil)

func newResponseCache(maxEntries int) *responseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, []byte](maxEntries)
	return &responseCache{entries: entries}
}

func (c *responseCache) Get(key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *responseCache) Set(key string, resp []byte) {
	c.entries.Add(key, resp)
}

func (c *responseCache) Delete(key string) {
	c.entries.Remove(key)
}

// CredentialCache is an http.RoundTripper that caches responses per
// credential. Responses are only ever served to requests carrying the same
// Authorization header that fetched them. A request with a different
// credential replaces the cache; a request with none bypasses and drops it.
type CredentialCache struct {
	next       http.RoundTripper
	maxEntries int

	mu     sync.Mutex
	owner  string
	store  *responseCache
	cached *httpcache.Transport
}

var _ http.RoundTripper = (*CredentialCache)(nil)

// NewCredentialCache wraps next. A nil next uses http.DefaultTransport and a
// non-positive maxEntries uses DefaultCacheEntries.
func NewCredentialCache(next http.RoundTripper, maxEntries int) *CredentialCache {
	if next == nil {
		next = http.DefaultTransport
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &CredentialCache{next: next, maxEntries: maxEntries}
}

// RoundTrip implements http.RoundTripper.
func (c *CredentialCache) RoundTrip(req *http.Request) (*http.Response, error) {
	auth := req.Header.Get("Authorization")
	if auth == "" {
		c.Reset()
		return c.next.RoundTrip(req)
	}
	return c.transportFor(auth).RoundTrip(req)
}

// Reset drops every cached response.
func (c *CredentialCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = ""
	c.store = nil
	c.cached = nil
}

// Len returns the number of responses cached for the current credential.
func (c *CredentialCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return 0
	}
	return c.store.entries.Len()
}

func (c *CredentialCache) transportFor(auth string) *httpcache.Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil || c.owner != auth {
		c.owner = auth
		c.store = newResponseCache(c.maxEntries)
		c.cached = &httpcache.Transport{
			Transport:           c.next,
			Cache:               c.store,
			MarkCachedResponses: true,
		}
	}
	return c.cached
}
