package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/interfaces"
)

// GeminiProvider implements EmbeddingProvider against the Gemini embedding
// API with a configured output dimensionality
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
	logger    arbor.ILogger
}

// NewGeminiProvider initializes the genai client from configuration
func NewGeminiProvider(ctx context.Context, config common.EmbeddingsConfig, logger arbor.ILogger) (interfaces.EmbeddingProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     config.Model,
		dimension: config.Dimension,
		logger:    logger,
	}, nil
}

// EmbedBatch generates one vector per input text, in input order
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(p.dimension)
	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if len(embedding.Values) != p.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", p.dimension, len(embedding.Values))
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

// Dimension returns the configured output dimensionality
func (p *GeminiProvider) Dimension() int {
	return p.dimension
}
