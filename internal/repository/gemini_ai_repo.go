package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AIRepository produces price predictions via the Gemini API and persists
// each one as a price_predictions row.
type AIRepository interface {
	PredictPrice(ctx context.Context, snapshot model.FuturesData, horizonHours int) (*model.PricePrediction, error)
}

type geminiAIRepository struct {
	db             *gorm.DB
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

func NewGeminiAIRepository(db *gorm.DB, cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		db:             db,
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) PredictPrice(ctx context.Context, snapshot model.FuturesData, horizonHours int) (*model.PricePrediction, error) {
	prompt := r.promptPredictPrice(snapshot, horizonHours)

	responseText, err := r.sendRequest(ctx, prompt)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send request to gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}

	var result dto.AIPredictionResponse
	if err := parseFencedJSON(responseText, &result); err != nil {
		r.logger.ErrorContext(ctx, "failed to parse response from gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to parse response from gemini: %w", err)
	}

	jsonResult, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	prediction := &model.PricePrediction{
		Symbol:         snapshot.Symbol,
		CurrentPrice:   snapshot.Price,
		PredictedPrice: result.PredictedPrice,
		Direction:      result.Direction,
		Confidence:     result.Confidence,
		HorizonHours:   horizonHours,
		Rationale:      result.Rationale,
		Prompt:         prompt,
		Response:       datatypes.JSON(jsonResult),
	}

	if err := r.db.WithContext(ctx).Create(prediction).Error; err != nil {
		r.logger.ErrorContext(ctx, "failed to persist price prediction", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to persist price prediction: %w", err)
	}

	return prediction, nil
}

func (r *geminiAIRepository) promptPredictPrice(snapshot model.FuturesData, horizonHours int) string {
	var sb strings.Builder
	sb.WriteString("You are a quantitative analyst for crypto perpetual futures.\n")
	sb.WriteString(fmt.Sprintf("Given the current 24h snapshot for %s:\n", snapshot.Symbol))
	sb.WriteString(fmt.Sprintf("- last price: %.8f\n", snapshot.Price))
	sb.WriteString(fmt.Sprintf("- 24h change: %.2f%%\n", snapshot.Change24h*100))
	sb.WriteString(fmt.Sprintf("- 24h high/low: %.8f / %.8f\n", snapshot.High24h, snapshot.Low24h))
	sb.WriteString(fmt.Sprintf("- 24h quote volume: %.0f USD\n", snapshot.QuoteVolume24h))
	sb.WriteString(fmt.Sprintf("- funding rate: %.6f\n", snapshot.FundingRate))
	sb.WriteString(fmt.Sprintf("- open interest: %.2f\n", snapshot.OpenInterest))
	sb.WriteString(fmt.Sprintf("Estimate the price in %d hours.\n", horizonHours))
	sb.WriteString("Respond with JSON only, no prose, using this schema:\n")
	sb.WriteString(`{"symbol":"","current_price":0,"predicted_price":0,"direction":"up|down|sideways","confidence":0.0,"horizon_hours":0,"rationale":""}`)
	return sb.String()
}

func (r *geminiAIRepository) sendRequest(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.BaseModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}
	return text, nil
}

func parseFencedJSON(text string, dest interface{}) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return json.Unmarshal([]byte(strings.TrimSpace(text)), dest)
}
