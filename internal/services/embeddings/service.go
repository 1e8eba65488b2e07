package embeddings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/models"
)

// Service runs the embedding stage over freshly inserted listings. Texts are
// chunked to the provider's batch limit; each chunk's vectors come back in
// input order and are zipped onto the listings by index.
type Service struct {
	provider  interfaces.EmbeddingProvider
	batchSize int
	logger    arbor.ILogger
}

// NewService creates a new embedding service
func NewService(provider interfaces.EmbeddingProvider, batchSize int, logger arbor.ILogger) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{
		provider:  provider,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EmbedListings generates and sets embeddings for the given listings. Called
// for Insert-classified records only; updates preserve their stored vectors.
func (s *Service) EmbedListings(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	for start := 0; start < len(listings); start += s.batchSize {
		end := start + s.batchSize
		if end > len(listings) {
			end = len(listings)
		}
		chunk := listings[start:end]

		texts := make([]string, len(chunk))
		for i, listing := range chunk {
			texts[i] = BuildEmbeddingText(listing)
		}

		vectors, err := s.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(chunk) {
			return fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(chunk))
		}

		for i, vector := range vectors {
			chunk[i].Embedding = vector
		}

		s.logger.Debug().
			Int("count", len(chunk)).
			Int("dimension", s.provider.Dimension()).
			Msg("Embedded listing batch")
	}

	s.logger.Info().Int("count", len(listings)).Msg("Generated embeddings for inserted listings")
	return nil
}

// BuildEmbeddingText serializes a listing's salient fields into the text the
// embedding is computed from. The field order is fixed and map-valued fields
// serialize with sorted keys, so the same listing always produces the same
// text.
func BuildEmbeddingText(listing *models.Listing) string {
	segments := []string{
		listing.Title,
		listing.ListingType,
		listing.Brand,
		listing.Model,
		listing.Year,
		listing.District,
		listing.TradeType,
		listing.EstateType,
		listing.CategoryType,
		priceText(listing.Price),
		listing.Description,
		specsText(listing.Specs),
		conditionText(listing.ConditionRecords),
		listing.TramerAmount,
	}

	var filled []string
	for _, segment := range segments {
		if segment != "" {
			filled = append(filled, segment)
		}
	}
	return strings.Join(filled, " - ")
}

func priceText(price models.PriceDetail) string {
	if price.Raw != "" {
		return price.Raw
	}
	if price.Amount == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f %s", price.Amount, price.Currency)
}

func specsText(specs map[string]string) string {
	if len(specs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(specs))
	for key := range specs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+specs[key])
	}
	return strings.Join(parts, ", ")
}

func conditionText(records []models.ConditionRecord) string {
	if len(records) == 0 {
		return ""
	}
	parts := make([]string, 0, len(records))
	for _, record := range records {
		parts = append(parts, strings.TrimSpace(record.Name+" "+record.ValueText))
	}
	return strings.Join(parts, ", ")
}
