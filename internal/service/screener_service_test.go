package service

import (
	"context"
	"testing"

	"futures-dashboard/internal/dto"
	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/logger"
	"futures-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func newScreenerServiceFixture(t *testing.T) (ScreenerService, *fakeScreenerRepo, *fakeFuturesRepo) {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	screenerRepo := &fakeScreenerRepo{}
	futuresRepo := &fakeFuturesRepo{}
	return NewScreenerService(screenerRepo, futuresRepo, log), screenerRepo, futuresRepo
}

func TestScreenerService_AddSymbol(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newScreenerServiceFixture(t)

	created, err := svc.Create(ctx, dto.CreateScreenerRequest{
		UserID:  1,
		Name:    "majors",
		Symbols: []string{"BTCUSDT"},
	})
	require.NoError(t, err)

	updated, err := svc.AddSymbol(ctx, created.ID, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, []string(updated.Symbols))

	_, err = svc.AddSymbol(ctx, created.ID, "ETHUSDT")
	assert.ErrorIs(t, err, ErrPairAlreadyExists)

	_, err = svc.AddSymbol(ctx, 404, "SOLUSDT")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScreenerService_RemoveSymbol(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newScreenerServiceFixture(t)

	created, err := svc.Create(ctx, dto.CreateScreenerRequest{
		UserID:  1,
		Name:    "majors",
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
	})
	require.NoError(t, err)

	updated, err := svc.RemoveSymbol(ctx, created.ID, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"ETHUSDT"}, []string(updated.Symbols))

	// Removing a symbol that is not present is a no-op.
	updated, err = svc.RemoveSymbol(ctx, created.ID, "XRPUSDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"ETHUSDT"}, []string(updated.Symbols))
}

func TestScreenerService_Matches(t *testing.T) {
	ctx := context.Background()
	svc, _, futuresRepo := newScreenerServiceFixture(t)

	futuresRepo.rows = []model.FuturesData{
		{Symbol: "BTCUSDT", Price: 100000, Change24h: 0.02, QuoteVolume24h: 5_000_000},
		{Symbol: "ETHUSDT", Price: 4000, Change24h: 0.08, QuoteVolume24h: 2_000_000},
		{Symbol: "DOGEUSDT", Price: 0.2, Change24h: -0.01, QuoteVolume24h: 400_000},
	}

	t.Run("criteria filter the whole market", func(t *testing.T) {
		created, err := svc.Create(ctx, dto.CreateScreenerRequest{
			UserID: 1,
			Name:   "liquid movers",
			Criteria: model.ScreenerCriteria{
				MinVolumeUSD: utils.ToPointer(1_000_000.0),
				MaxChange:    utils.ToPointer(5.0),
			},
		})
		require.NoError(t, err)

		result, err := svc.Matches(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		assert.Equal(t, "BTCUSDT", result.Matches[0].Symbol)
	})

	t.Run("symbol list narrows the scan", func(t *testing.T) {
		created, err := svc.Create(ctx, dto.CreateScreenerRequest{
			UserID:  1,
			Name:    "watchlist",
			Symbols: []string{"ETHUSDT", "DOGEUSDT"},
		})
		require.NoError(t, err)

		result, err := svc.Matches(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, result.Matches, 2, "empty criteria matches every listed symbol")
	})

	t.Run("unknown screener", func(t *testing.T) {
		_, err := svc.Matches(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
