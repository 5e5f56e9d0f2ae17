package jobs

import (
	"context"
	"testing"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/cache"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeSettingRepo struct {
	settings []model.AlertSetting
}

func (r *fakeSettingRepo) Create(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	r.settings = append(r.settings, *setting)
	return nil
}

func (r *fakeSettingRepo) GetByUser(ctx context.Context, userID uint) ([]model.AlertSetting, error) {
	return r.settings, nil
}

func (r *fakeSettingRepo) GetByID(ctx context.Context, id uint) (*model.AlertSetting, error) {
	for i := range r.settings {
		if r.settings[i].ID == id {
			return &r.settings[i], nil
		}
	}
	return nil, nil
}

func (r *fakeSettingRepo) GetEnabled(ctx context.Context) ([]model.AlertSetting, error) {
	out := []model.AlertSetting{}
	for _, s := range r.settings {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSettingRepo) Update(ctx context.Context, setting *model.AlertSetting, opts ...utils.DBOption) error {
	return nil
}

func (r *fakeSettingRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return nil
}

type fakeScreenerRepo struct {
	screeners []model.Screener
}

func (r *fakeScreenerRepo) Create(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error {
	r.screeners = append(r.screeners, *screener)
	return nil
}

func (r *fakeScreenerRepo) GetByID(ctx context.Context, id uint) (*model.Screener, error) {
	for i := range r.screeners {
		if r.screeners[i].ID == id {
			s := r.screeners[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (r *fakeScreenerRepo) GetByUser(ctx context.Context, userID uint) ([]model.Screener, error) {
	return r.screeners, nil
}

func (r *fakeScreenerRepo) Update(ctx context.Context, screener *model.Screener, opts ...utils.DBOption) error {
	return nil
}

func (r *fakeScreenerRepo) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return nil
}

type fakeFuturesRepo struct {
	rows []model.FuturesData
}

func (r *fakeFuturesRepo) Upsert(ctx context.Context, rows []model.FuturesData, opts ...utils.DBOption) error {
	r.rows = rows
	return nil
}

func (r *fakeFuturesRepo) GetAll(ctx context.Context) ([]model.FuturesData, error) {
	return r.rows, nil
}

func (r *fakeFuturesRepo) GetBySymbol(ctx context.Context, symbol string) (*model.FuturesData, error) {
	for i := range r.rows {
		if r.rows[i].Symbol == symbol {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (r *fakeFuturesRepo) GetBySymbols(ctx context.Context, symbols []string) ([]model.FuturesData, error) {
	out := []model.FuturesData{}
	for _, row := range r.rows {
		if utils.ContainsString(symbols, row.Symbol) {
			out = append(out, row)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	created []dto.CreateAlertRequest
}

func (n *recordingNotifier) CreateAndDispatch(ctx context.Context, req dto.CreateAlertRequest, setting model.AlertSetting) (*model.Alert, error) {
	n.created = append(n.created, req)
	return &model.Alert{ID: uint(len(n.created)), UserID: req.UserID, Type: req.Type}, nil
}

func (n *recordingNotifier) NotifyProfitThreshold(ctx context.Context, userID, executionID uint, pair string, profit float64) {
}

func (n *recordingNotifier) NotifyLossThreshold(ctx context.Context, userID, executionID uint, pair string, loss float64) {
}

func (n *recordingNotifier) NotifyPerformanceMilestone(ctx context.Context, userID, executionID uint, pair string, roi float64) {
}

type alertScanFixture struct {
	strategy    AlertScanner
	settingRepo *fakeSettingRepo
	futuresRepo *fakeFuturesRepo
	notifier    *recordingNotifier
}

func newAlertScanFixture(t *testing.T) *alertScanFixture {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Alerting.DefaultCooldownDuration = 30 * time.Minute

	settingRepo := &fakeSettingRepo{}
	futuresRepo := &fakeFuturesRepo{}
	notifier := &recordingNotifier{}
	inmemoryCache := cache.NewCache(time.Minute, time.Minute)

	return &alertScanFixture{
		strategy:    NewAlertScanStrategy(cfg, log, settingRepo, &fakeScreenerRepo{}, futuresRepo, inmemoryCache, notifier),
		settingRepo: settingRepo,
		futuresRepo: futuresRepo,
		notifier:    notifier,
	}
}

func scanJob() *model.Job {
	return &model.Job{
		ID:      1,
		Name:    "Alert Scan",
		Type:    string(JobTypeAlertScan),
		Payload: datatypes.JSON([]byte(`{}`)),
	}
}

func TestAlertScanStrategy_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when nothing is enabled", func(t *testing.T) {
		f := newAlertScanFixture(t)

		result, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SKIPPED), result.ExitCode)
		assert.Empty(t, f.notifier.created)
	})

	t.Run("fires a price_above setting once its threshold is crossed", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 101_000, Change24h: 0.03},
		}
		f.settingRepo.settings = []model.AlertSetting{{
			ID:        1,
			UserID:    1,
			AlertType: model.AlertTypePriceAbove,
			Enabled:   true,
			Threshold: utils.ToPointer("100000"),
			Config:    datatypes.NewJSONType(model.AlertSettingConfig{TradingPair: "BTCUSDT"}),
		}}

		result, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, model.AlertTypePriceAbove, f.notifier.created[0].Type)
		assert.Contains(t, f.notifier.created[0].Message, "BTCUSDT")
	})

	t.Run("below-threshold settings stay quiet", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 95_000},
		}
		f.settingRepo.settings = []model.AlertSetting{{
			ID:        1,
			UserID:    1,
			AlertType: model.AlertTypePriceAbove,
			Enabled:   true,
			Threshold: utils.ToPointer("100000"),
			Config:    datatypes.NewJSONType(model.AlertSettingConfig{TradingPair: "BTCUSDT"}),
		}}

		result, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)
		assert.Empty(t, f.notifier.created)
	})

	t.Run("cooldown suppresses the second scan", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 101_000},
		}
		f.settingRepo.settings = []model.AlertSetting{{
			ID:        1,
			UserID:    1,
			AlertType: model.AlertTypePriceAbove,
			Enabled:   true,
			Threshold: utils.ToPointer("100000"),
			Config:    datatypes.NewJSONType(model.AlertSettingConfig{TradingPair: "BTCUSDT"}),
		}}

		_, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		require.Len(t, f.notifier.created, 1)

		_, err = f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Len(t, f.notifier.created, 1, "still cooling down, no second alert")
	})

	t.Run("bot lifecycle settings are skipped without errors", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 101_000},
		}
		f.settingRepo.settings = []model.AlertSetting{
			{
				ID:        1,
				UserID:    1,
				AlertType: model.AlertTypeProfitThreshold,
				Enabled:   true,
				// Lifecycle settings carry no trading pair; the scanner must
				// leave them to the bot flow rather than flag them broken.
				Config: datatypes.NewJSONType(model.AlertSettingConfig{}),
			},
			{
				ID:        2,
				UserID:    1,
				AlertType: model.AlertTypePriceAbove,
				Enabled:   true,
				Threshold: utils.ToPointer("100000"),
				Config:    datatypes.NewJSONType(model.AlertSettingConfig{TradingPair: "BTCUSDT"}),
			},
		}

		result, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)
		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, model.AlertTypePriceAbove, f.notifier.created[0].Type)
	})

	t.Run("a broken setting does not abort the scan", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 101_000},
		}
		f.settingRepo.settings = []model.AlertSetting{
			{
				ID:        1,
				UserID:    1,
				AlertType: model.AlertTypePriceAbove,
				Enabled:   true,
				// No trading pair configured.
				Config: datatypes.NewJSONType(model.AlertSettingConfig{}),
			},
			{
				ID:        2,
				UserID:    1,
				AlertType: model.AlertTypePriceAbove,
				Enabled:   true,
				Threshold: utils.ToPointer("100000"),
				Config:    datatypes.NewJSONType(model.AlertSettingConfig{TradingPair: "BTCUSDT"}),
			},
		}

		result, err := f.strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_PARTIAL_SUCCESS), result.ExitCode)
		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, uint(1), f.notifier.created[0].UserID)
	})

	t.Run("screener match fires per matching symbol", func(t *testing.T) {
		f := newAlertScanFixture(t)
		f.futuresRepo.rows = []model.FuturesData{
			{Symbol: "BTCUSDT", Price: 100_000, Change24h: 0.06, QuoteVolume24h: 5_000_000},
			{Symbol: "ETHUSDT", Price: 4_000, Change24h: 0.08, QuoteVolume24h: 2_000_000},
			{Symbol: "DOGEUSDT", Price: 0.2, Change24h: 0.01, QuoteVolume24h: 400_000},
		}

		screenerRepo := &fakeScreenerRepo{screeners: []model.Screener{{
			ID:     7,
			UserID: 1,
			Name:   "big movers",
			Criteria: datatypes.NewJSONType(model.ScreenerCriteria{
				MinChange: utils.ToPointer(5.0),
			}),
		}}}

		log, err := logger.New("error", "console")
		require.NoError(t, err)
		cfg := &config.Config{}
		cfg.Alerting.DefaultCooldownDuration = 30 * time.Minute
		strategy := NewAlertScanStrategy(cfg, log, f.settingRepo, screenerRepo, f.futuresRepo, cache.NewCache(time.Minute, time.Minute), f.notifier)

		f.settingRepo.settings = []model.AlertSetting{{
			ID:        3,
			UserID:    1,
			AlertType: model.AlertTypeScreenerMatch,
			Enabled:   true,
			Config:    datatypes.NewJSONType(model.AlertSettingConfig{ScreenerID: utils.ToPointer(uint(7))}),
		}}

		result, err := strategy.Execute(ctx, scanJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

		require.Len(t, f.notifier.created, 2)
		symbols := []string{}
		for _, req := range f.notifier.created {
			symbols = append(symbols, req.Title)
		}
		assert.Contains(t, symbols, "Screener match: BTCUSDT")
		assert.Contains(t, symbols, "Screener match: ETHUSDT")
	})
}
