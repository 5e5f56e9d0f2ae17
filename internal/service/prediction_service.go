package service

import (
	"context"
	"fmt"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/common"
	"futures-dashboard/pkg/logger"
)

const defaultHorizonHours = 24

type PredictionService interface {
	GetLatest(ctx context.Context, symbol string) (*model.PricePrediction, error)
	Predict(ctx context.Context, symbol string, horizonHours int) (*model.PricePrediction, error)
}

type predictionService struct {
	cfg            *config.Config
	predictionRepo repository.PricePredictionRepository
	futuresRepo    repository.FuturesDataRepository
	aiRepo         repository.AIRepository
	cache          cache.Cache
	logger         *logger.Logger
}

func NewPredictionService(
	cfg *config.Config,
	predictionRepo repository.PricePredictionRepository,
	futuresRepo repository.FuturesDataRepository,
	aiRepo repository.AIRepository,
	c cache.Cache,
	log *logger.Logger,
) PredictionService {
	return &predictionService{
		cfg:            cfg,
		predictionRepo: predictionRepo,
		futuresRepo:    futuresRepo,
		aiRepo:         aiRepo,
		cache:          c,
		logger:         log,
	}
}

func (s *predictionService) GetLatest(ctx context.Context, symbol string) (*model.PricePrediction, error) {
	key := fmt.Sprintf(common.KeyPrediction, symbol)
	if cached, ok := cache.GetTyped[*model.PricePrediction](s.cache, key); ok {
		return cached, nil
	}

	prediction, err := s.predictionRepo.GetLatestBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if prediction == nil {
		return nil, ErrNotFound
	}

	s.cache.Set(key, prediction, s.cfg.Gemini.PredictionTTL)
	return prediction, nil
}

// Predict returns a fresh prediction, reusing the latest stored one while it
// is younger than the configured TTL. Gemini calls are expensive and rate
// limited, so the TTL is the dedup window.
func (s *predictionService) Predict(ctx context.Context, symbol string, horizonHours int) (*model.PricePrediction, error) {
	if horizonHours <= 0 {
		horizonHours = defaultHorizonHours
	}

	latest, err := s.predictionRepo.GetLatestBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.HorizonHours == horizonHours &&
		time.Since(latest.CreatedAt) < s.cfg.Gemini.PredictionTTL {
		return latest, nil
	}

	snapshot, err := s.futuresRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrNoMarketData
	}

	prediction, err := s.aiRepo.PredictPrice(ctx, *snapshot, horizonHours)
	if err != nil {
		return nil, err
	}

	s.cache.Set(fmt.Sprintf(common.KeyPrediction, symbol), prediction, s.cfg.Gemini.PredictionTTL)
	return prediction, nil
}
