package interfaces

import (
	"context"

	"github.com/ternarybob/ilansync/internal/models"
)

// ListingSource is the capability a scrape target exposes to the sync driver.
// Each source site has its own selector logic and catalog shape but returns
// the same normalized records, so the driver stays source-agnostic.
type ListingSource interface {
	// Name identifies the source ("emlakjet", "arabam")
	Name() string

	// Partitions enumerates the full category space: a closed district list
	// for the property source, a discovered brand×model tree for the vehicle
	// source. One category's failure must not abort enumeration of the rest.
	Partitions(ctx context.Context) ([]models.Partition, error)

	// FetchListings scrapes the partition's listing pages into normalized
	// records. Rows missing identity fields are dropped, not returned.
	FetchListings(ctx context.Context, partition models.Partition) ([]*models.Listing, error)

	// EnrichListing fetches the listing's detail page and merges long-form
	// fields in place. A failed sub-extraction leaves the affected fields
	// empty rather than returning an error; a thin listing is still valid.
	EnrichListing(ctx context.Context, listing *models.Listing) error
}
