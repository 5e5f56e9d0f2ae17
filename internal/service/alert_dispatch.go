package service

import (
	"context"
	"fmt"
	"net/http"

	"futures-dashboard/config"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/httpclient"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/mailer"
	"futures-dashboard/pkg/ratelimit"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// AlertDispatcher fans a persisted alert out to the delivery channel its
// setting asks for. The in_app and browser methods need no outbound call: the
// row itself is the in-app notification, and the browser Notification API has
// no server-side equivalent.
type AlertDispatcher struct {
	cfg            *config.Config
	log            *logger.Logger
	webhookClient  httpclient.HTTPClient
	webhookLimiter *ratelimit.LimiterStore
	smtp           *mailer.SMTPClient
	telegramBot    *telebot.Bot
}

func NewAlertDispatcher(cfg *config.Config, log *logger.Logger, telegramBot *telebot.Bot) *AlertDispatcher {
	return &AlertDispatcher{
		cfg:            cfg,
		log:            log,
		webhookClient:  httpclient.New("", cfg.Alerting.WebhookTimeout, ""),
		webhookLimiter: ratelimit.NewLimiterStore(rate.Limit(cfg.Alerting.MaxWebhookPerSecond), cfg.Alerting.MaxWebhookPerSecond),
		smtp:           mailer.NewSMTPClient(cfg.SMTP),
		telegramBot:    telegramBot,
	}
}

func (d *AlertDispatcher) Dispatch(ctx context.Context, alert model.Alert, setting model.AlertSetting) error {
	cfg := setting.Config.Data()

	switch setting.DeliveryMethod {
	case model.DeliveryWebhook:
		return d.sendWebhook(ctx, alert, cfg.WebhookURL)
	case model.DeliveryEmail:
		return d.sendEmail(alert, cfg.Email)
	case model.DeliveryTelegram:
		return d.sendTelegram(alert, cfg.TelegramChatID)
	case model.DeliveryInApp, model.DeliveryBrowser, "":
		return nil
	default:
		return fmt.Errorf("unknown delivery method: %s", setting.DeliveryMethod)
	}
}

func (d *AlertDispatcher) sendWebhook(ctx context.Context, alert model.Alert, url string) error {
	if url == "" {
		return fmt.Errorf("webhook delivery configured without webhook_url")
	}

	if err := d.webhookLimiter.GetLimiter(url).Wait(ctx); err != nil {
		return err
	}

	resp, err := d.webhookClient.Post(ctx, url, alert, nil, nil)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (d *AlertDispatcher) sendEmail(alert model.Alert, to string) error {
	if to == "" {
		return fmt.Errorf("email delivery configured without address")
	}
	subject := fmt.Sprintf("[%s] %s", alert.Severity, alert.Title)
	return d.smtp.Send(to, subject, alert.Message)
}

func (d *AlertDispatcher) sendTelegram(alert model.Alert, chatID int64) error {
	if d.telegramBot == nil {
		return fmt.Errorf("telegram bot is not configured")
	}
	if chatID == 0 {
		return fmt.Errorf("telegram delivery configured without chat id")
	}
	text := fmt.Sprintf("%s\n\n%s", alert.Title, alert.Message)
	_, err := d.telegramBot.Send(telebot.ChatID(chatID), text)
	return err
}
