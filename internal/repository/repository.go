package repository

import (
	"futures-dashboard/config"
	"futures-dashboard/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo           UserRepository
	UserPreferenceRepo UserPreferenceRepository
	ScreenerRepo       ScreenerRepository
	AlertRepo          AlertRepository
	AlertSettingRepo   AlertSettingRepository
	BotStrategyRepo    BotStrategyRepository
	BotExecutionRepo   BotExecutionRepository
	FuturesDataRepo    FuturesDataRepository
	PredictionRepo     PricePredictionRepository
	JobRepo            JobRepository
	ExchangeRepo       ExchangeRepository
	GeminiAIRepo       AIRepository
	UnitOfWork         UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	geminiAIRepo, err := NewGeminiAIRepository(db, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		UserRepo:           NewUserRepository(db),
		UserPreferenceRepo: NewUserPreferenceRepository(db),
		ScreenerRepo:       NewScreenerRepository(db),
		AlertRepo:          NewAlertRepository(db),
		AlertSettingRepo:   NewAlertSettingRepository(db),
		BotStrategyRepo:    NewBotStrategyRepository(db),
		BotExecutionRepo:   NewBotExecutionRepository(db),
		FuturesDataRepo:    NewFuturesDataRepository(db),
		PredictionRepo:     NewPricePredictionRepository(db),
		JobRepo:            NewJobRepository(db),
		ExchangeRepo:       NewExchangeRepository(cfg, log),
		GeminiAIRepo:       geminiAIRepo,
		UnitOfWork:         NewUnitOfWork(db),
	}, nil
}
