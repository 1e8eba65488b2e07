package arabam

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/fetcher"
	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/models"
)

// SourceName identifies this source in partitions and persisted records
const SourceName = "arabam"

// Source scrapes the vehicle classifieds site. The brand→model taxonomy is
// not hard-coded: partitions are discovered by a two-level walk over the
// category pages, one partition per brand×model pair.
type Source struct {
	client  *fetcher.Client
	config  common.ArabamConfig
	syncCfg common.SyncConfig
	logger  arbor.ILogger
}

// New creates the vehicle listing source
func New(client *fetcher.Client, config common.ArabamConfig, syncCfg common.SyncConfig, logger arbor.ILogger) interfaces.ListingSource {
	return &Source{
		client:  client,
		config:  config,
		syncCfg: syncCfg,
		logger:  logger,
	}
}

// Name implements ListingSource
func (s *Source) Name() string {
	return SourceName
}

// Partitions walks the category tree: the top-level page yields brand links,
// each brand page yields model links. A brand whose page fails or yields no
// models is skipped with a log line; it never aborts the walk.
func (s *Source) Partitions(ctx context.Context) ([]models.Partition, error) {
	categoryURL := s.config.BaseURL + "/ikinci-el/otomobil" + s.config.CitySuffix

	doc, err := s.client.GetDocument(ctx, categoryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category page: %w", err)
	}

	brands := parseCategoryLinks(doc, s.config.BaseURL)
	if s.config.MaxBrands > 0 && len(brands) > s.config.MaxBrands {
		brands = brands[:s.config.MaxBrands]
	}

	s.logger.Info().Int("brands", len(brands)).Msg("Collected vehicle brands")

	var partitions []models.Partition
	for _, brand := range brands {
		if ctx.Err() != nil {
			return partitions, ctx.Err()
		}

		brandModels, err := s.collectModels(ctx, brand)
		if err != nil {
			s.logger.Warn().
				Str("brand", brand.Name).
				Err(err).
				Msg("Failed to collect models for brand, skipping")
			continue
		}
		if len(brandModels) == 0 {
			s.logger.Debug().Str("brand", brand.Name).Msg("Brand has no models, skipping")
			continue
		}

		for _, model := range brandModels {
			partitions = append(partitions, models.Partition{
				Source: SourceName,
				Key:    slugFromURL(brand.URL) + "/" + slugFromURL(model.URL),
				Brand:  brand.Name,
				Model:  model.Name,
				URL:    model.URL + s.config.CitySuffix,
			})
		}
	}

	s.logger.Info().Int("partitions", len(partitions)).Msg("Vehicle catalog walk complete")
	return partitions, nil
}

// collectModels fetches one brand's page and extracts its model links
func (s *Source) collectModels(ctx context.Context, brand categoryLink) ([]categoryLink, error) {
	doc, err := s.client.GetDocument(ctx, brand.URL+s.config.CitySuffix)
	if err != nil {
		return nil, err
	}
	return parseCategoryLinks(doc, s.config.BaseURL), nil
}

// FetchListings scrapes the partition's model listing page
func (s *Source) FetchListings(ctx context.Context, partition models.Partition) ([]*models.Listing, error) {
	doc, err := s.client.GetDocument(ctx, partition.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for %s: %w", partition.Key, err)
	}

	listings := parseListingRows(doc, s.config.BaseURL)
	for _, listing := range listings {
		listing.Partition = partition.Key
		listing.Brand = partition.Brand
		listing.Model = partition.Model
	}

	s.logger.Info().
		Str("partition", partition.Key).
		Int("count", len(listings)).
		Msg("Fetched vehicle listings")

	return listings, nil
}

// EnrichListing fetches the detail page once and extracts the description,
// damage records, tramer amount, spec table, equipment list and the image
// gallery. Each sub-extraction degrades gracefully.
func (s *Source) EnrichListing(ctx context.Context, listing *models.Listing) error {
	doc, err := s.client.GetDocument(ctx, listing.URL)
	if err != nil {
		s.logger.Warn().
			Str("source_id", listing.SourceID).
			Err(err).
			Msg("Failed to fetch detail page, keeping thin listing")
		return nil
	}

	detail := parseDetailPage(doc, s.logger)

	if detail.Description != "" {
		listing.Description = detail.Description
	}
	listing.ConditionRecords = detail.DamageRecords
	listing.TramerAmount = detail.TramerAmount
	listing.Specs = detail.Specs
	listing.Equipment = detail.Equipment

	if images := parseGalleryImages(doc, s.syncCfg.MaxImages); len(images) > 0 {
		listing.Images = images
	}

	return nil
}
