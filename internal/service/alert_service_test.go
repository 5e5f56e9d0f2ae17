package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertRepo struct {
	alerts  []model.Alert
	nextID  uint
	failing bool
}

func (r *fakeAlertRepo) Create(ctx context.Context, alert *model.Alert, opts ...utils.DBOption) error {
	if r.failing {
		return errors.New("insert failed")
	}
	r.nextID++
	alert.ID = r.nextID
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *fakeAlertRepo) Get(ctx context.Context, param dto.GetAlertsParam) ([]model.Alert, error) {
	out := []model.Alert{}
	for _, a := range r.alerts {
		if a.UserID != param.UserID {
			continue
		}
		if param.UnreadOnly && a.Read {
			continue
		}
		if param.PinnedOnly && !a.Pinned {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAlertRepo) GetByID(ctx context.Context, id uint) (*model.Alert, error) {
	for i := range r.alerts {
		if r.alerts[i].ID == id {
			return &r.alerts[i], nil
		}
	}
	return nil, nil
}

func (r *fakeAlertRepo) MarkRead(ctx context.Context, id uint, opts ...utils.DBOption) error {
	for i := range r.alerts {
		if r.alerts[i].ID == id {
			r.alerts[i].Read = true
		}
	}
	return nil
}

func (r *fakeAlertRepo) MarkAllRead(ctx context.Context, userID uint, opts ...utils.DBOption) error {
	for i := range r.alerts {
		if r.alerts[i].UserID == userID {
			r.alerts[i].Read = true
		}
	}
	return nil
}

func (r *fakeAlertRepo) SetPinned(ctx context.Context, id uint, pinned bool, opts ...utils.DBOption) error {
	for i := range r.alerts {
		if r.alerts[i].ID == id {
			r.alerts[i].Pinned = pinned
		}
	}
	return nil
}

func (r *fakeAlertRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	for i := range r.alerts {
		if r.alerts[i].ID == id {
			r.alerts = append(r.alerts[:i], r.alerts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeAlertRepo) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeAlertSettingRepo struct {
	settings []model.AlertSetting
	nextID   uint
}

func (r *fakeAlertSettingRepo) Create(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	r.nextID++
	setting.ID = r.nextID
	r.settings = append(r.settings, *setting)
	return nil
}

func (r *fakeAlertSettingRepo) GetByUser(ctx context.Context, userID uint) ([]model.AlertSetting, error) {
	out := []model.AlertSetting{}
	for _, s := range r.settings {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeAlertSettingRepo) GetByID(ctx context.Context, id uint) (*model.AlertSetting, error) {
	for i := range r.settings {
		if r.settings[i].ID == id {
			return &r.settings[i], nil
		}
	}
	return nil, nil
}

func (r *fakeAlertSettingRepo) GetEnabled(ctx context.Context) ([]model.AlertSetting, error) {
	out := []model.AlertSetting{}
	for _, s := range r.settings {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeAlertSettingRepo) Update(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	for i := range r.settings {
		if r.settings[i].ID == setting.ID {
			r.settings[i] = *setting
		}
	}
	return nil
}

func (r *fakeAlertSettingRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	for i := range r.settings {
		if r.settings[i].ID == id {
			r.settings = append(r.settings[:i], r.settings[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestAlertService(t *testing.T, repo *fakeAlertRepo) AlertService {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Alerting.WebhookTimeout = time.Second
	cfg.Alerting.MaxWebhookPerSecond = 1

	dispatcher := NewAlertDispatcher(cfg, log, nil)
	return NewAlertService(repo, &fakeAlertSettingRepo{}, dispatcher, log)
}

func TestAlertService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success prepends to session list and notifies listeners", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := newTestAlertService(t, repo)

		var notified [][]model.Alert
		svc.AddListener(func(alerts []model.Alert) {
			notified = append(notified, alerts)
		})

		first, err := svc.Create(ctx, dto.CreateAlertRequest{
			UserID:  1,
			Type:    model.AlertTypePriceAbove,
			Title:   "BTC above 100k",
			Message: "BTCUSDT crossed 100000",
		})
		require.NoError(t, err)
		assert.Equal(t, model.SeverityInfo, first.Severity)

		second, err := svc.Create(ctx, dto.CreateAlertRequest{
			UserID:   1,
			Type:     model.AlertTypeVolumeSpike,
			Title:    "Volume spike",
			Message:  "ETHUSDT volume doubled",
			Severity: model.SeverityWarning,
		})
		require.NoError(t, err)

		recent := svc.Recent()
		require.Len(t, recent, 2)
		assert.Equal(t, second.ID, recent[0].ID, "newest alert comes first")
		assert.Equal(t, first.ID, recent[1].ID)

		require.Len(t, notified, 2)
		assert.Equal(t, second.ID, notified[1][0].ID)
	})

	t.Run("persistence failure leaves session list untouched", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := newTestAlertService(t, repo)

		_, err := svc.Create(ctx, dto.CreateAlertRequest{
			UserID: 1, Type: model.AlertTypePriceAbove, Title: "a", Message: "b",
		})
		require.NoError(t, err)

		listenerCalls := 0
		svc.AddListener(func([]model.Alert) { listenerCalls++ })

		repo.failing = true
		_, err = svc.Create(ctx, dto.CreateAlertRequest{
			UserID: 1, Type: model.AlertTypePriceBelow, Title: "c", Message: "d",
		})
		assert.Error(t, err)
		assert.Len(t, svc.Recent(), 1)
		assert.Zero(t, listenerCalls, "failed create must not notify listeners")
	})
}

func TestAlertService_MarkAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the alert read in store and session list", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := newTestAlertService(t, repo)

		alert, err := svc.Create(ctx, dto.CreateAlertRequest{
			UserID: 1, Type: model.AlertTypePriceAbove, Title: "a", Message: "b",
		})
		require.NoError(t, err)

		require.NoError(t, svc.MarkAsRead(ctx, alert.ID))
		assert.True(t, repo.alerts[0].Read)
		assert.True(t, svc.Recent()[0].Read)
	})

	t.Run("unknown id is a no-op but still notifies listeners", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := newTestAlertService(t, repo)

		_, err := svc.Create(ctx, dto.CreateAlertRequest{
			UserID: 1, Type: model.AlertTypePriceAbove, Title: "a", Message: "b",
		})
		require.NoError(t, err)

		listenerCalls := 0
		svc.AddListener(func([]model.Alert) { listenerCalls++ })

		require.NoError(t, svc.MarkAsRead(ctx, 999))
		assert.False(t, svc.Recent()[0].Read)
		assert.Equal(t, 1, listenerCalls)
	})
}

func TestAlertService_RemoveListener(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAlertRepo{}
	svc := newTestAlertService(t, repo)

	calls := 0
	id := svc.AddListener(func([]model.Alert) { calls++ })

	_, err := svc.Create(ctx, dto.CreateAlertRequest{
		UserID: 1, Type: model.AlertTypePriceAbove, Title: "a", Message: "b",
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	svc.RemoveListener(id)
	_, err = svc.Create(ctx, dto.CreateAlertRequest{
		UserID: 1, Type: model.AlertTypePriceAbove, Title: "c", Message: "d",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "removed listener must not fire")
}

func TestAlertService_NotifyHelpers(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAlertRepo{}
	svc := newTestAlertService(t, repo)

	svc.NotifyProfitThreshold(ctx, 1, 7, "BTCUSDT", 125.5)
	svc.NotifyBotError(ctx, 1, 7, "ETHUSDT", errors.New("stream disconnected"))

	require.Len(t, repo.alerts, 2)
	assert.Equal(t, model.AlertTypeProfitThreshold, repo.alerts[0].Type)
	assert.Equal(t, model.SeveritySuccess, repo.alerts[0].Severity)
	require.NotNil(t, repo.alerts[0].ExecutionID)
	assert.Equal(t, uint(7), *repo.alerts[0].ExecutionID)

	assert.Equal(t, model.AlertTypeBotError, repo.alerts[1].Type)
	assert.Equal(t, model.SeverityError, repo.alerts[1].Severity)
	assert.Contains(t, repo.alerts[1].Message, "stream disconnected")

	// Notify helpers swallow persistence failures.
	repo.failing = true
	svc.NotifyLossThreshold(ctx, 1, 7, "BTCUSDT", 50)
	assert.Len(t, repo.alerts, 2)
}

func TestAlertService_Settings(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAlertRepo{}
	svc := newTestAlertService(t, repo)

	setting, err := svc.CreateSetting(ctx, dto.CreateAlertSettingRequest{
		UserID:    1,
		AlertType: model.AlertTypePriceAbove,
		Threshold: utils.ToPointer("50000"),
	})
	require.NoError(t, err)
	assert.True(t, setting.Enabled, "settings default to enabled")
	assert.Equal(t, model.DeliveryInApp, setting.DeliveryMethod)

	updated, err := svc.UpdateSetting(ctx, setting.ID, dto.UpdateAlertSettingRequest{
		Enabled:        utils.ToPointer(false),
		DeliveryMethod: model.DeliveryWebhook,
		Config:         model.AlertSettingConfig{WebhookURL: "https://example.com/hook"},
	})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, model.DeliveryWebhook, updated.DeliveryMethod)
	assert.Equal(t, "https://example.com/hook", updated.Config.Data().WebhookURL)

	_, err = svc.UpdateSetting(ctx, 999, dto.UpdateAlertSettingRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
