package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/models"
)

// ListingStorage implements the ListingStorage interface for Badger
type ListingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewListingStorage creates a new ListingStorage instance
func NewListingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ListingStorage {
	return &ListingStorage{
		db:     db,
		logger: logger,
	}
}

// FindByPartition returns every persisted listing for one source partition.
// Source and Partition are indexed, so this is the cheap read the reconciler
// runs once per partition per sync pass.
func (s *ListingStorage) FindByPartition(ctx context.Context, source, partition string) ([]*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var listings []models.Listing
	err := s.db.Store().Find(&listings, badgerhold.Where("Source").Eq(source).Index("Source").And("Partition").Eq(partition))
	if err != nil {
		return nil, fmt.Errorf("failed to find listings for %s/%s: %w", source, partition, err)
	}

	result := make([]*models.Listing, len(listings))
	for i := range listings {
		result[i] = &listings[i]
	}
	return result, nil
}

// BulkInsert persists new listings. Each record must already carry its
// internal id; timestamps are stamped here if the caller left them zero.
func (s *ListingStorage) BulkInsert(ctx context.Context, listings []*models.Listing) error {
	now := time.Now().UTC()
	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if listing.ID == "" {
			return fmt.Errorf("listing ID is required")
		}
		if listing.CreatedAt.IsZero() {
			listing.CreatedAt = now
		}
		if listing.UpdatedAt.IsZero() {
			listing.UpdatedAt = now
		}
		if err := s.db.Store().Upsert(listing.ID, listing); err != nil {
			return fmt.Errorf("failed to insert listing %s: %w", listing.ID, err)
		}
	}

	s.logger.Debug().Int("count", len(listings)).Msg("Inserted listings")
	return nil
}

// UpdateListing overwrites an existing record by internal id
func (s *ListingStorage) UpdateListing(ctx context.Context, listing *models.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if listing.ID == "" {
		return fmt.Errorf("listing ID is required")
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := s.db.Store().Upsert(listing.ID, listing); err != nil {
		return fmt.Errorf("failed to update listing %s: %w", listing.ID, err)
	}
	return nil
}

// BulkDelete removes listings by internal id. Already-deleted ids are not an
// error; the next sync pass may retry a partially applied decision set.
func (s *ListingStorage) BulkDelete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.db.Store().Delete(id, &models.Listing{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return fmt.Errorf("failed to delete listing %s: %w", id, err)
		}
	}

	s.logger.Debug().Int("count", len(ids)).Msg("Deleted listings")
	return nil
}

// CountBySource returns the number of persisted listings for a source
func (s *ListingStorage) CountBySource(ctx context.Context, source string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := s.db.Store().Count(&models.Listing{}, badgerhold.Where("Source").Eq(source).Index("Source"))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings for %s: %w", source, err)
	}
	return int(count), nil
}
