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

type fakeExecutionRepo struct {
	executions []model.BotExecution
}

func (r *fakeExecutionRepo) Create(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error {
	execution.ID = uint(len(r.executions) + 1)
	r.executions = append(r.executions, *execution)
	return nil
}

func (r *fakeExecutionRepo) Get(ctx context.Context, param dto.GetBotExecutionsParam) ([]model.BotExecution, error) {
	return r.executions, nil
}

func (r *fakeExecutionRepo) GetByID(ctx context.Context, id uint) (*model.BotExecution, error) {
	for i := range r.executions {
		if r.executions[i].ID == id {
			e := r.executions[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeExecutionRepo) GetActive(ctx context.Context) ([]model.BotExecution, error) {
	out := []model.BotExecution{}
	for _, e := range r.executions {
		if e.Status == model.ExecutionActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExecutionRepo) Update(ctx context.Context, execution *model.BotExecution, opts ...utils.DBOption) error {
	for i := range r.executions {
		if r.executions[i].ID == execution.ID {
			r.executions[i] = *execution
		}
	}
	return nil
}

func (r *fakeExecutionRepo) UpdateStatus(ctx context.Context, id uint, status model.ExecutionStatus, opts ...utils.DBOption) error {
	for i := range r.executions {
		if r.executions[i].ID == id {
			r.executions[i].Status = status
		}
	}
	return nil
}

func (r *fakeExecutionRepo) CountActiveByPairs(ctx context.Context, userID uint, pairs []string) (int64, error) {
	return 0, nil
}

type fakeStrategyRepo struct {
	strategies []model.BotStrategy
}

func (r *fakeStrategyRepo) Create(ctx context.Context, strategy *model.BotStrategy, opts ...utils.DBOption) error {
	r.strategies = append(r.strategies, *strategy)
	return nil
}

func (r *fakeStrategyRepo) GetByID(ctx context.Context, id uint) (*model.BotStrategy, error) {
	for i := range r.strategies {
		if r.strategies[i].ID == id {
			s := r.strategies[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (r *fakeStrategyRepo) GetByUser(ctx context.Context, userID uint) ([]model.BotStrategy, error) {
	return r.strategies, nil
}

type botPerfFixture struct {
	strategy      BotPerformanceSyncer
	executionRepo *fakeExecutionRepo
	futuresRepo   *fakeFuturesRepo
	notifier      *recordingNotifier
}

func newBotPerfFixture(t *testing.T) *botPerfFixture {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	executionRepo := &fakeExecutionRepo{}
	strategyRepo := &fakeStrategyRepo{strategies: []model.BotStrategy{
		{ID: 1, UserID: 1, Name: "momentum breakout", StopLossPct: 2, TakeProfitPct: 4},
	}}
	futuresRepo := &fakeFuturesRepo{}
	notifier := &recordingNotifier{}

	return &botPerfFixture{
		strategy:      NewBotPerformanceSyncStrategy(cfg, log, executionRepo, strategyRepo, futuresRepo, cache.NewCache(time.Minute, time.Minute), notifier),
		executionRepo: executionRepo,
		futuresRepo:   futuresRepo,
		notifier:      notifier,
	}
}

func perfJob() *model.Job {
	return &model.Job{
		ID:      3,
		Name:    "Bot Performance Sync",
		Type:    string(JobTypeBotPerformanceSync),
		Payload: datatypes.JSON([]byte(`{"milestone_roi_step": 10}`)),
	}
}

func TestBotPerformanceSyncStrategy_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the current session onto the banked runtime", func(t *testing.T) {
		f := newBotPerfFixture(t)
		startedAt := time.Now().Add(-10 * time.Second)
		f.executionRepo.executions = []model.BotExecution{{
			ID: 1, UserID: 1, StrategyID: 1, TradingPair: "BTCUSDT",
			Status: model.ExecutionActive, Capital: 1000, EntryPrice: 100,
			RuntimeSeconds: 3600, StartedAt: &startedAt,
		}}
		f.futuresRepo.rows = []model.FuturesData{{Symbol: "BTCUSDT", Price: 100}}

		result, err := f.strategy.Execute(ctx, perfJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)

		stored := f.executionRepo.executions[0]
		assert.GreaterOrEqual(t, stored.RuntimeSeconds, int64(3610), "an hour banked across earlier sessions plus this one")
		assert.Less(t, stored.RuntimeSeconds, int64(3620))
		require.NotNil(t, stored.RuntimeSyncedAt)

		// A second pass right away only adds the time since its checkpoint.
		_, err = f.strategy.Execute(ctx, perfJob())
		require.NoError(t, err)
		assert.Less(t, f.executionRepo.executions[0].RuntimeSeconds, int64(3620))
	})

	t.Run("locks the entry price on the first sync", func(t *testing.T) {
		f := newBotPerfFixture(t)
		startedAt := time.Now()
		f.executionRepo.executions = []model.BotExecution{{
			ID: 1, UserID: 1, StrategyID: 1, TradingPair: "ETHUSDT",
			Status: model.ExecutionActive, Capital: 500, StartedAt: &startedAt,
		}}
		f.futuresRepo.rows = []model.FuturesData{{Symbol: "ETHUSDT", Price: 4000}}

		_, err := f.strategy.Execute(ctx, perfJob())
		require.NoError(t, err)

		stored := f.executionRepo.executions[0]
		assert.Equal(t, float64(4000), stored.EntryPrice)
		assert.Zero(t, stored.Profit)
		assert.Zero(t, stored.ROI)
	})

	t.Run("missing snapshot leaves the execution untouched", func(t *testing.T) {
		f := newBotPerfFixture(t)
		startedAt := time.Now()
		f.executionRepo.executions = []model.BotExecution{{
			ID: 1, UserID: 1, StrategyID: 1, TradingPair: "XRPUSDT",
			Status: model.ExecutionActive, Capital: 500, RuntimeSeconds: 120, StartedAt: &startedAt,
		}}

		result, err := f.strategy.Execute(ctx, perfJob())
		require.NoError(t, err)
		assert.Equal(t, int32(JOB_EXIT_CODE_SUCCESS), result.ExitCode)
		assert.Equal(t, int64(120), f.executionRepo.executions[0].RuntimeSeconds)
	})
}
