package mongolsp

import (
	"context"
	"fmt"
	"sort"
)

// StaticProvider serves namespace data from a declared schema. It backs the
// server when no live deployment is reachable.
type StaticProvider struct {
	schema SchemaConfig
}

// NewStaticProvider creates a provider over a declared schema.
func NewStaticProvider(schema SchemaConfig) *StaticProvider {
	return &StaticProvider{schema: schema}
}

// ListDatabases returns the declared database names, sorted.
func (p *StaticProvider) ListDatabases(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(p.schema.Databases))
	for name := range p.schema.Databases {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// ListCollections returns the declared collection names of a database,
// sorted. An undeclared database is an error so callers do not cache an
// empty answer for it.
func (p *StaticProvider) ListCollections(_ context.Context, database string) ([]string, error) {
	collections, ok := p.schema.Databases[database]
	if !ok {
		return nil, fmt.Errorf("database %q not declared in schema", database)
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// SampleFields returns the declared field names of a collection.
func (p *StaticProvider) SampleFields(_ context.Context, database, collection string) ([]string, error) {
	collections, ok := p.schema.Databases[database]
	if !ok {
		return nil, fmt.Errorf("database %q not declared in schema", database)
	}

	fields, ok := collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q not declared in schema", collection)
	}

	return append([]string(nil), fields...), nil
}

// ListStreamProcessors returns the declared stream processor names.
func (p *StaticProvider) ListStreamProcessors(_ context.Context) ([]string, error) {
	return append([]string(nil), p.schema.StreamProcessors...), nil
}
