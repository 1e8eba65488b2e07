package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/batch"
	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/models"
	"github.com/ternarybob/ilansync/internal/reconcile"
	"github.com/ternarybob/ilansync/internal/services/embeddings"
)

// Driver runs the full sync pipeline for one source: enumerate partitions,
// scrape and enrich each one, reconcile against the persisted set and apply
// the resulting decisions. Partitions are independent units of work; a
// failure in one is logged and the rest still run.
type Driver struct {
	source   interfaces.ListingSource
	store    interfaces.ListingStorage
	embedder *embeddings.Service // nil when embeddings are disabled
	syncCfg  common.SyncConfig
	logger   arbor.ILogger
}

// NewDriver creates a sync driver for one source. Pass a nil embedder to
// skip the embedding stage.
func NewDriver(source interfaces.ListingSource, store interfaces.ListingStorage, embedder *embeddings.Service, syncCfg common.SyncConfig, logger arbor.ILogger) *Driver {
	return &Driver{
		source:   source,
		store:    store,
		embedder: embedder,
		syncCfg:  syncCfg,
		logger:   logger,
	}
}

// Run executes one complete sync pass over every partition of the source
func (d *Driver) Run(ctx context.Context) (models.SyncCounts, error) {
	start := time.Now()
	var totals models.SyncCounts

	partitions, err := d.source.Partitions(ctx)
	if err != nil {
		return totals, fmt.Errorf("failed to enumerate %s partitions: %w", d.source.Name(), err)
	}
	if len(partitions) == 0 {
		d.logger.Warn().Str("source", d.source.Name()).Msg("Source returned no partitions, nothing to sync")
		return totals, nil
	}

	d.logger.Info().
		Str("source", d.source.Name()).
		Int("partitions", len(partitions)).
		Msg("Starting sync run")

	failed := 0
	for _, partition := range partitions {
		if ctx.Err() != nil {
			return totals, fmt.Errorf("sync run cancelled: %w", ctx.Err())
		}

		counts, err := d.syncPartition(ctx, partition)
		if err != nil {
			failed++
			d.logger.Error().
				Str("source", d.source.Name()).
				Str("partition", partition.Key).
				Err(err).
				Msg("Partition sync failed, continuing with remaining partitions")
			continue
		}
		totals.Add(counts)
	}

	stored, err := d.store.CountBySource(ctx, d.source.Name())
	if err != nil {
		d.logger.Warn().Err(err).Msg("Failed to count stored listings after sync")
		stored = -1
	}

	d.logger.Info().
		Str("source", d.source.Name()).
		Int("partitions", len(partitions)).
		Int("failed_partitions", failed).
		Int("inserted", totals.Inserted).
		Int("updated", totals.Updated).
		Int("deleted", totals.Deleted).
		Int("unchanged", totals.Unchanged).
		Int("stored_total", stored).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Sync run complete")

	return totals, nil
}

// syncPartition runs the fetch → enrich → reconcile → apply pipeline for one
// partition
func (d *Driver) syncPartition(ctx context.Context, partition models.Partition) (models.SyncCounts, error) {
	var counts models.SyncCounts

	fresh, err := d.source.FetchListings(ctx, partition)
	if err != nil {
		return counts, fmt.Errorf("fetch failed: %w", err)
	}

	d.logger.Info().
		Str("source", d.source.Name()).
		Str("partition", partition.Key).
		Int("fetched", len(fresh)).
		Msg("Fetched partition listings")

	// Detail-page enrichment happens before reconciliation so inserts and
	// updates both carry full records. EnrichListing degrades internally, so
	// the executor's failure exclusion only fires on panicking sources.
	fresh = batch.Run(ctx, fresh, func(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
		if err := d.source.EnrichListing(ctx, listing); err != nil {
			return nil, err
		}
		return listing, nil
	}, d.syncCfg.EnrichConcurrency, d.syncCfg.EnrichBatchDelay, d.logger)

	existing, err := d.store.FindByPartition(ctx, d.source.Name(), partition.Key)
	if err != nil {
		return counts, fmt.Errorf("failed to load persisted listings: %w", err)
	}

	decisions := reconcile.Reconcile(existing, fresh)

	var inserts []*models.Listing
	for _, decision := range decisions {
		if decision.Action == models.ActionInsert {
			inserts = append(inserts, decision.Fresh)
		}
	}

	// Embeddings are computed for inserts only; updates keep their stored
	// vector through MergeUpdate. A provider failure leaves the records
	// un-embedded but still persisted.
	if d.embedder != nil && len(inserts) > 0 {
		if err := d.embedder.EmbedListings(ctx, inserts); err != nil {
			d.logger.Warn().
				Str("partition", partition.Key).
				Int("count", len(inserts)).
				Err(err).
				Msg("Embedding generation failed, storing listings without vectors")
		}
	}

	counts = d.apply(ctx, partition, decisions)

	d.logger.Info().
		Str("source", d.source.Name()).
		Str("partition", partition.Key).
		Int("inserted", counts.Inserted).
		Int("updated", counts.Updated).
		Int("deleted", counts.Deleted).
		Int("unchanged", counts.Unchanged).
		Msg("Partition reconciled")

	return counts, nil
}

// apply executes the decision set against storage. Deletes run first so a
// changed reconcile key never collides with its own stale record, then
// updates, then inserts. Phase failures are logged and the remaining phases
// still run; the next sync pass converges whatever was missed.
func (d *Driver) apply(ctx context.Context, partition models.Partition, decisions []models.SyncDecision) models.SyncCounts {
	var counts models.SyncCounts

	var deleteIDs []string
	for _, decision := range decisions {
		if decision.Action == models.ActionDelete {
			deleteIDs = append(deleteIDs, decision.Existing.ID)
		}
	}
	if len(deleteIDs) > 0 {
		if err := d.store.BulkDelete(ctx, deleteIDs); err != nil {
			d.logger.Error().
				Str("partition", partition.Key).
				Int("count", len(deleteIDs)).
				Err(err).
				Msg("Failed to delete vanished listings")
		} else {
			counts.Deleted = len(deleteIDs)
		}
	}

	for _, decision := range decisions {
		switch decision.Action {
		case models.ActionUpdate:
			merged := reconcile.MergeUpdate(decision.Existing, decision.Fresh)
			if err := d.store.UpdateListing(ctx, merged); err != nil {
				d.logger.Error().
					Str("partition", partition.Key).
					Str("key", decision.Key).
					Err(err).
					Msg("Failed to update changed listing")
				continue
			}
			counts.Updated++
		case models.ActionUnchanged:
			counts.Unchanged++
		}
	}

	var inserts []*models.Listing
	now := time.Now().UTC()
	for _, decision := range decisions {
		if decision.Action != models.ActionInsert {
			continue
		}
		listing := decision.Fresh
		listing.ID = common.NewListingID()
		listing.CreatedAt = now
		listing.UpdatedAt = now
		inserts = append(inserts, listing)
	}
	if len(inserts) > 0 {
		if err := d.store.BulkInsert(ctx, inserts); err != nil {
			d.logger.Error().
				Str("partition", partition.Key).
				Int("count", len(inserts)).
				Err(err).
				Msg("Failed to insert new listings")
		} else {
			counts.Inserted = len(inserts)
		}
	}

	return counts
}
