package lsp

import (
	"context"
	"sync"
)

// CacheSelector picks which kinds of cached namespace data to invalidate.
type CacheSelector struct {
	Databases        bool
	Collections      bool
	Fields           bool
	StreamProcessors bool
}

// ClearAll selects every kind.
func ClearAll() CacheSelector {
	return CacheSelector{Databases: true, Collections: true, Fields: true, StreamProcessors: true}
}

// SchemaCache holds namespace data looked up from the deployment. Entries
// populate lazily on first read and live until explicitly invalidated; there
// is no time-based expiry. Reads and writes may interleave freely across
// request handlers: each entry is replaced wholesale under the lock, so a
// concurrent populate is last-writer-wins, never a partial merge.
type SchemaCache struct {
	provider NamespaceProvider

	mu               sync.RWMutex
	databases        []string
	databasesKnown   bool
	collections      map[string][]string
	fields           map[string][]string
	processors       []string
	processorsKnown  bool
}

// NewSchemaCache creates an empty cache over a provider. A nil provider is
// allowed; every lookup then reports unknown.
func NewSchemaCache(provider NamespaceProvider) *SchemaCache {
	return &SchemaCache{
		provider:    provider,
		collections: make(map[string][]string),
		fields:      make(map[string][]string),
	}
}

// Databases returns the cached database names, populating on first use.
// The second return is false when the data is unknown (no provider, or the
// lookup failed); callers must not treat unknown as empty.
func (c *SchemaCache) Databases(ctx context.Context) ([]string, bool) {
	c.mu.RLock()

	if c.databasesKnown {
		names := c.databases
		c.mu.RUnlock()

		return names, true
	}

	c.mu.RUnlock()

	if c.provider == nil {
		return nil, false
	}

	names, err := c.provider.ListDatabases(ctx)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.databases = names
	c.databasesKnown = true
	c.mu.Unlock()

	return names, true
}

// Collections returns the cached collection names for a database.
func (c *SchemaCache) Collections(ctx context.Context, database string) ([]string, bool) {
	if database == "" {
		return nil, false
	}

	c.mu.RLock()

	if names, ok := c.collections[database]; ok {
		c.mu.RUnlock()

		return names, true
	}

	c.mu.RUnlock()

	if c.provider == nil {
		return nil, false
	}

	names, err := c.provider.ListCollections(ctx, database)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.collections[database] = names
	c.mu.Unlock()

	return names, true
}

// Fields returns the cached sampled field names for a namespace.
func (c *SchemaCache) Fields(ctx context.Context, database, collection string) ([]string, bool) {
	if database == "" || collection == "" {
		return nil, false
	}

	key := database + "." + collection

	c.mu.RLock()

	if names, ok := c.fields[key]; ok {
		c.mu.RUnlock()

		return names, true
	}

	c.mu.RUnlock()

	if c.provider == nil {
		return nil, false
	}

	names, err := c.provider.SampleFields(ctx, database, collection)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.fields[key] = names
	c.mu.Unlock()

	return names, true
}

// StreamProcessors returns the cached stream processor names.
func (c *SchemaCache) StreamProcessors(ctx context.Context) ([]string, bool) {
	c.mu.RLock()

	if c.processorsKnown {
		names := c.processors
		c.mu.RUnlock()

		return names, true
	}

	c.mu.RUnlock()

	if c.provider == nil {
		return nil, false
	}

	names, err := c.provider.ListStreamProcessors(ctx)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.processors = names
	c.processorsKnown = true
	c.mu.Unlock()

	return names, true
}

// Invalidate drops the selected kinds of cached data. The next read for a
// dropped kind goes back to the provider. This is the only way entries
// leave the cache; connection changes and explicit clear requests both come
// through here.
func (c *SchemaCache) Invalidate(sel CacheSelector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sel.Databases {
		c.databases = nil
		c.databasesKnown = false
	}

	if sel.Collections {
		c.collections = make(map[string][]string)
	}

	if sel.Fields {
		c.fields = make(map[string][]string)
	}

	if sel.StreamProcessors {
		c.processors = nil
		c.processorsKnown = false
	}
}
