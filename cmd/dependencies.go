package cmd

import (
	"context"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/middleware"
	"futures-dashboard/pkg/postgres"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db          *postgres.DB
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	telegramBot *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}
	if cfg.OpsAlert.WebhookURL != "" {
		log = log.WithOpsWebhook(cfg.OpsAlert.WebhookURL, cfg.OpsAlert.MinLevel)
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Telegram delivery is optional; without a token the bot stays nil and
	// telegram alert settings fail at dispatch with a clear error.
	var telegramBot *telebot.Bot
	if cfg.Telegram.BotToken != "" {
		telegramBot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.Telegram.BotToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.Error("Telegram bot error", zap.Error(err))
			},
		})
		if err != nil {
			log.Error("Failed to create telegram bot", zap.Error(err))
			return nil, err
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewRateLimiterMiddleware())

	return &AppDependency{
		cfg:         cfg,
		log:         log,
		validator:   goValidator.New(),
		db:          db,
		echo:        e,
		cache:       cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		telegramBot: telegramBot,
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
