package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dusthunter/internal/domain/entity"

	"github.com/json-iterator/go/extra"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func init() {
	// Model output is loosely typed: scores arrive as 72.0 or "72".
	extra.RegisterFuzzyDecoders()
}

// ErrEmptyAnalysis is returned when the model answered without any text.
var ErrEmptyAnalysis = errors.New("analysis model returned no content")

// WalletAnalyzer runs the external analysis uplink for one address.
type WalletAnalyzer interface {
	AnalyzeWallet(ctx context.Context, address string, chain entity.Chain) (*entity.WalletAnalysis, error)
}

// ContentGenerator is the subset of *genai.Models the analyzer needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiClientImpl struct {
	models            ContentGenerator
	model             string
	useResponseSchema bool
	logger            *zap.Logger
}

// NewGeminiClient builds the analyzer on top of a genai client.
func NewGeminiClient(ctx context.Context, apiKey, model string, useResponseSchema bool, logger *zap.Logger) (WalletAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing Gemini client: %w", err)
	}
	return NewGeminiAnalyzer(client.Models, model, useResponseSchema, logger), nil
}

// NewGeminiAnalyzer wraps any ContentGenerator; tests pass a fake.
func NewGeminiAnalyzer(models ContentGenerator, model string, useResponseSchema bool, logger *zap.Logger) WalletAnalyzer {
	return &geminiClientImpl{
		models:            models,
		model:             model,
		useResponseSchema: useResponseSchema,
		logger:            logger.Named("GeminiClient"),
	}
}

// AnalyzeWallet implements WalletAnalyzer.
func (c *geminiClientImpl) AnalyzeWallet(ctx context.Context, address string, chain entity.Chain) (*entity.WalletAnalysis, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	if c.useResponseSchema {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = analysisSchema
	}

	c.logger.Info("Starting analysis uplink", zap.String("address", address), zap.String("chain", string(chain)))
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(analysisPrompt(address, chain)), config)
	if err != nil {
		c.logger.Error("Analysis uplink failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("generate content for %s: %w", address, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyAnalysis
	}

	var analysis entity.WalletAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		c.logger.Error("Failed to decode analysis JSON", zap.String("address", address), zap.String("text", text), zap.Error(err))
		return nil, fmt.Errorf("decoding analysis for %s: %w", address, err)
	}
	if analysis.Address == "" {
		analysis.Address = address
	}
	analysis.Sources = groundingSources(resp)
	analysis.Normalize()

	c.logger.Info("Analysis uplink completed",
		zap.String("address", analysis.Address),
		zap.Int("safetyScore", analysis.SafetyScore),
		zap.Int("holdings", len(analysis.Holdings)),
		zap.Int("sources", len(analysis.Sources)))
	return &analysis, nil
}

// extractJSON trims a ```json fenced block, or any prose around the outermost object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func groundingSources(resp *genai.GenerateContentResponse) []entity.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []entity.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, entity.GroundingSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}
