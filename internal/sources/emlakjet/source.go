package emlakjet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/fetcher"
	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/models"
)

// SourceName identifies this source in partitions and persisted records
const SourceName = "emlakjet"

// Source scrapes the property classifieds site. Partitions are the closed
// district list; each partition covers both trade types (rent and sale).
type Source struct {
	client  *fetcher.Client
	config  common.EmlakjetConfig
	syncCfg common.SyncConfig
	logger  arbor.ILogger
}

// New creates the property listing source
func New(client *fetcher.Client, config common.EmlakjetConfig, syncCfg common.SyncConfig, logger arbor.ILogger) interfaces.ListingSource {
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

// Partitions returns one partition per configured district. The district list
// is a fixed enumerable set, so no discovery step is needed.
func (s *Source) Partitions(ctx context.Context) ([]models.Partition, error) {
	partitions := make([]models.Partition, 0, len(s.config.Districts))
	for _, district := range s.config.Districts {
		partitions = append(partitions, models.Partition{
			Source:   SourceName,
			Key:      district,
			District: district,
		})
	}
	return partitions, nil
}

// FetchListings pulls both trade types for the partition's district from the
// selection search backend and normalizes the rows. Rows without identity
// fields are dropped.
func (s *Source) FetchListings(ctx context.Context, partition models.Partition) ([]*models.Listing, error) {
	var listings []*models.Listing

	for _, tradeType := range []string{TradeRent, TradeSale} {
		resp, err := s.search(ctx, tradeType, partition.District)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s listings for district %s: %w", tradeType, partition.District, err)
		}

		dropped := 0
		for _, row := range resp.SelectionResponse.AllListings {
			listing := s.toListing(row, partition.District)
			if !listing.HasIdentity() {
				dropped++
				continue
			}
			listings = append(listings, listing)
		}
		if dropped > 0 {
			s.logger.Debug().
				Str("district", partition.District).
				Str("trade_type", tradeType).
				Int("dropped", dropped).
				Msg("Dropped listings without identity fields")
		}
	}

	s.logger.Info().
		Str("district", partition.District).
		Int("count", len(listings)).
		Msg("Fetched property listings")

	return listings, nil
}

// toListing maps one search row to the normalized record
func (s *Source) toListing(row apiListing, district string) *models.Listing {
	listing := &models.Listing{
		Source:       SourceName,
		Partition:    district,
		Kind:         models.KindProperty,
		SourceID:     strconv.Itoa(row.ID),
		Title:        strings.TrimSpace(row.Title),
		URL:          absoluteURL(s.config.BaseURL, row.URL),
		Images:       capImages(row.ImagesFullPath, s.syncCfg.MaxImages),
		Badges:       row.Badges,
		Phone:        row.PhoneNumber,
		City:         s.config.City,
		District:     district,
		TradeType:    row.TradeTypeName,
		EstateType:   row.EstateTypeName,
		CategoryType: row.CategoryTypeName,
		ListingType:  row.Type,
		RoomCount:    row.RoomCountName,
		Floor:        row.FloorName,
		SquareMeter:  row.SquareMeter,
	}

	for _, qi := range row.QuickInfos {
		listing.QuickInfos = append(listing.QuickInfos, models.QuickInfo{
			Key:   qi.Key,
			Name:  qi.Name,
			Value: qi.Value,
		})
	}
	if row.Location != nil {
		listing.Location = &models.Location{
			Lat: row.Location.Coordinate.Lat,
			Lon: row.Location.Coordinate.Lon,
		}
	}
	if row.PriceDetail != nil {
		listing.Price = models.PriceDetail{
			Amount:      row.PriceDetail.Price,
			Currency:    row.PriceDetail.Currency,
			Opportunity: row.PriceDetail.Opportunity,
		}
	}

	return listing
}

// EnrichListing fills the description and nearby places from the listing's
// detail page. Every sub-extraction degrades gracefully: a broken detail page
// leaves the listing with its title as description rather than failing.
func (s *Source) EnrichListing(ctx context.Context, listing *models.Listing) error {
	listing.Description = listing.Title

	slug := slugFromURL(listing.URL)
	if slug == "" {
		s.logger.Debug().Str("url", listing.URL).Msg("No slug in listing URL, skipping detail fetch")
		return nil
	}

	detail, err := s.fetchPropertyDetails(ctx, slug)
	if err != nil {
		s.logger.Warn().
			Str("slug", slug).
			Err(err).
			Msg("Failed to fetch property details, keeping thin listing")
	} else {
		listing.Description = buildDescription(listing.Title, detail)
	}

	if id, err := strconv.Atoi(listing.SourceID); err == nil {
		nearby, err := s.fetchNearbyPlaces(ctx, id)
		if err != nil {
			s.logger.Debug().
				Str("source_id", listing.SourceID).
				Err(err).
				Msg("Failed to fetch nearby places")
		} else {
			listing.NearbyPlaces = toNearbyCategories(nearby)
		}
	}

	return nil
}

// slugFromURL extracts the detail-page slug, the last URL path segment
func slugFromURL(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	return trimmed[idx+1:]
}

func absoluteURL(baseURL, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func capImages(images []string, max int) []string {
	if max <= 0 || len(images) <= max {
		return images
	}
	return images[:max]
}

func toNearbyCategories(resp *nearbyResponse) []models.NearbyCategory {
	categories := make([]models.NearbyCategory, 0, len(resp.Result))
	for _, cat := range resp.Result {
		category := models.NearbyCategory{
			CategoryID:   cat.CategoryID,
			CategoryKey:  cat.CategoryKey,
			CategoryName: cat.CategoryName,
		}
		for _, poi := range cat.Poies {
			category.Places = append(category.Places, models.NearbyPlace{
				ID:       poi.ID,
				Name:     poi.Name,
				Distance: poi.Distance,
				Coordinates: &models.Location{
					Lat: poi.Coordinates.Lat,
					Lon: poi.Coordinates.Lon,
				},
			})
		}
		categories = append(categories, category)
	}
	return categories
}
