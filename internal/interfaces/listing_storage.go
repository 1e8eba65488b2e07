package interfaces

import (
	"context"

	"github.com/ternarybob/ilansync/internal/models"
)

// ListingStorage is the persistence boundary the pipeline depends on. The
// sync driver only needs partition-scoped reads plus the three decision-group
// writes; everything else about the storage engine is an implementation
// detail behind this contract.
type ListingStorage interface {
	// FindByPartition returns every persisted record for one source partition
	FindByPartition(ctx context.Context, source, partition string) ([]*models.Listing, error)

	// BulkInsert persists new records in one pass
	BulkInsert(ctx context.Context, listings []*models.Listing) error

	// UpdateListing overwrites an existing record by internal id
	UpdateListing(ctx context.Context, listing *models.Listing) error

	// BulkDelete removes records by internal id
	BulkDelete(ctx context.Context, ids []string) error

	// CountBySource returns the number of persisted records for a source
	CountBySource(ctx context.Context, source string) (int, error)
}
