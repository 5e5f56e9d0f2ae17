package service

import (
	"context"
	"fmt"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/common"
	"futures-dashboard/pkg/logger"
)

// defaults for the symbol history endpoint.
const (
	defaultHistoryInterval = "1h"
	defaultHistoryLimit    = 168
	maxHistoryLimit        = 1000
)

type FuturesService interface {
	GetAll(ctx context.Context) ([]model.FuturesData, error)
	GetBySymbol(ctx context.Context, symbol string) (*model.FuturesData, error)
	GetHistory(ctx context.Context, param dto.GetHistoryParam) ([]dto.Candle, error)
}

type futuresService struct {
	cfg          *config.Config
	futuresRepo  repository.FuturesDataRepository
	exchangeRepo repository.ExchangeRepository
	cache        cache.Cache
	logger       *logger.Logger
}

func NewFuturesService(cfg *config.Config, futuresRepo repository.FuturesDataRepository, exchangeRepo repository.ExchangeRepository, c cache.Cache, log *logger.Logger) FuturesService {
	return &futuresService{
		cfg:          cfg,
		futuresRepo:  futuresRepo,
		exchangeRepo: exchangeRepo,
		cache:        c,
		logger:       log,
	}
}

func (s *futuresService) GetAll(ctx context.Context) ([]model.FuturesData, error) {
	return s.futuresRepo.GetAll(ctx)
}

// GetBySymbol serves the per-symbol snapshot, with a short cache in front of
// the store since the dashboard polls this endpoint aggressively.
func (s *futuresService) GetBySymbol(ctx context.Context, symbol string) (*model.FuturesData, error) {
	key := fmt.Sprintf(common.KeyFuturesSnapshot, symbol)
	if cached, ok := cache.GetTyped[*model.FuturesData](s.cache, key); ok {
		return cached, nil
	}

	row, err := s.futuresRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}

	s.cache.Set(key, row, s.cfg.Cache.DefaultExpiration)
	return row, nil
}

// GetHistory proxies klines from the exchange. History is not stored locally;
// the snapshot table only keeps the latest tick per symbol.
func (s *futuresService) GetHistory(ctx context.Context, param dto.GetHistoryParam) ([]dto.Candle, error) {
	if param.Interval == "" {
		param.Interval = defaultHistoryInterval
	}
	if param.Limit <= 0 {
		param.Limit = defaultHistoryLimit
	}
	if param.Limit > maxHistoryLimit {
		param.Limit = maxHistoryLimit
	}
	return s.exchangeRepo.GetKlines(ctx, param)
}
