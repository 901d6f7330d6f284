package lsp

import "context"

// NamespaceProvider supplies live catalog data from the connected
// deployment. Implementations own the connection, timeouts, and any
// sampling strategy; the server never blocks on I/O itself and treats every
// error as "unknown", degrading to fewer completions and diagnostics rather
// than failing a request.
type NamespaceProvider interface {
	// ListDatabases returns the database names visible to the connection.
	ListDatabases(ctx context.Context) ([]string, error)

	// ListCollections returns the collection names in a database.
	ListCollections(ctx context.Context, database string) ([]string, error)

	// SampleFields returns field names sampled from documents of a
	// namespace.
	SampleFields(ctx context.Context, database, collection string) ([]string, error)

	// ListStreamProcessors returns the stream processor names on the
	// active connection.
	ListStreamProcessors(ctx context.Context) ([]string, error)
}
