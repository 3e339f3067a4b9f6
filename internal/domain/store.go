package domain

import "context"

// DatasetStore persists a dataset so it can be served by a database-backed
// DataSource. Replace swaps the stored dataset atomically.
type DatasetStore interface {
	DataSource
	Replace(ctx context.Context, ds Dataset) error
}
