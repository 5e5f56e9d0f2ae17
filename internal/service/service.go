package service

import (
	"futures-dashboard/config"
	"futures-dashboard/internal/jobs"
	"futures-dashboard/internal/repository"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/logger"

	"gopkg.in/telebot.v3"
)

type Service struct {
	AuthService       AuthService
	ScreenerService   ScreenerService
	AlertService      AlertService
	BotService        BotService
	FuturesService    FuturesService
	PredictionService PredictionService
	SchedulerService  SchedulerService
	TaskExecutor      TaskExecutor
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	telegramBot *telebot.Bot,
) *Service {
	dispatcher := NewAlertDispatcher(cfg, log, telegramBot)
	alertService := NewAlertService(repo.AlertRepo, repo.AlertSettingRepo, dispatcher, log)
	authService := NewAuthService(cfg, repo.UserRepo, repo.UserPreferenceRepo, repo.UnitOfWork, log)
	screenerService := NewScreenerService(repo.ScreenerRepo, repo.FuturesDataRepo, log)
	botService := NewBotService(repo.BotStrategyRepo, repo.BotExecutionRepo, repo.ScreenerRepo, alertService, log)
	futuresService := NewFuturesService(cfg, repo.FuturesDataRepo, repo.ExchangeRepo, inmemoryCache, log)
	predictionService := NewPredictionService(cfg, repo.PredictionRepo, repo.FuturesDataRepo, repo.GeminiAIRepo, inmemoryCache, log)

	executorStrategies := make(map[jobs.JobType]jobs.JobExecutionStrategy)
	executorStrategies[jobs.JobTypeFuturesDataSync] = jobs.NewFuturesDataSyncStrategy(cfg, log, repo.ExchangeRepo, repo.FuturesDataRepo)
	executorStrategies[jobs.JobTypeAlertScan] = jobs.NewAlertScanStrategy(cfg, log, repo.AlertSettingRepo, repo.ScreenerRepo, repo.FuturesDataRepo, inmemoryCache, alertService)
	executorStrategies[jobs.JobTypeBotPerformanceSync] = jobs.NewBotPerformanceSyncStrategy(cfg, log, repo.BotExecutionRepo, repo.BotStrategyRepo, repo.FuturesDataRepo, inmemoryCache, alertService)
	executorStrategies[jobs.JobTypeDataCleanUp] = jobs.NewDataCleanUpStrategy(cfg, log, repo.AlertRepo, repo.PredictionRepo, repo.JobRepo)

	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, executorStrategies)
	schedulerService := NewSchedulerService(cfg, log, repo.JobRepo, taskExecutor)

	return &Service{
		AuthService:       authService,
		ScreenerService:   screenerService,
		AlertService:      alertService,
		BotService:        botService,
		FuturesService:    futuresService,
		PredictionService: predictionService,
		SchedulerService:  schedulerService,
		TaskExecutor:      taskExecutor,
	}
}
