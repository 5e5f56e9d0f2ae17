package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/model"
	"futures-dashboard/internal/repository"
	"futures-dashboard/internal/screener"
	"futures-dashboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type FuturesDataSyncer interface {
	JobExecutionStrategy
}

type FuturesDataSyncPayload struct {
	SymbolLimit    int    `json:"symbol_limit"`
	MaxConcurrency int    `json:"max_concurrency"`
	QuoteAsset     string `json:"quote_asset"`
}

type FuturesDataSyncStrategy struct {
	cfg          *config.Config
	log          *logger.Logger
	exchangeRepo repository.ExchangeRepository
	futuresRepo  repository.FuturesDataRepository
}

func NewFuturesDataSyncStrategy(
	cfg *config.Config,
	log *logger.Logger,
	exchangeRepo repository.ExchangeRepository,
	futuresRepo repository.FuturesDataRepository,
) FuturesDataSyncer {
	return &FuturesDataSyncStrategy{
		cfg:          cfg,
		log:          log,
		exchangeRepo: exchangeRepo,
		futuresRepo:  futuresRepo,
	}
}

func (s *FuturesDataSyncStrategy) GetType() JobType {
	return JobTypeFuturesDataSync
}

// Execute pulls 24h tickers and funding rates in bulk, then open interest per
// symbol, and upserts one snapshot row per symbol. Open interest failures
// degrade the row to zero instead of failing the sync.
func (s *FuturesDataSyncStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	var payload FuturesDataSyncPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.SymbolLimit <= 0 {
		payload.SymbolLimit = s.cfg.Exchange.SyncSymbolLimit
	}
	if payload.MaxConcurrency <= 0 {
		payload.MaxConcurrency = s.cfg.Exchange.SyncConcurrency
	}
	if payload.QuoteAsset == "" {
		payload.QuoteAsset = "USDT"
	}

	tickers, err := s.exchangeRepo.GetTickers24h(ctx)
	if err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to fetch tickers: %v", err)}, err
	}

	rows := make([]model.FuturesData, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, payload.QuoteAsset) {
			continue
		}
		rows = append(rows, model.FuturesData{
			Symbol: t.Symbol,
			Price:  screener.ParseOrZero(t.LastPrice),
			// The exchange reports the change as a percentage, stored as a fraction.
			Change24h:      screener.ParseOrZero(t.PriceChangePercent) / 100,
			High24h:        screener.ParseOrZero(t.HighPrice),
			Low24h:         screener.ParseOrZero(t.LowPrice),
			Volume24h:      screener.ParseOrZero(t.Volume),
			QuoteVolume24h: screener.ParseOrZero(t.QuoteVolume),
		})
	}

	if len(rows) == 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "no tickers returned by the exchange"}, nil
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].QuoteVolume24h > rows[j].QuoteVolume24h
	})
	if len(rows) > payload.SymbolLimit {
		rows = rows[:payload.SymbolLimit]
	}

	premiums, err := s.exchangeRepo.GetPremiumIndex(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch premium index, funding rates stay zero", logger.ErrorField(err))
	}
	fundingBySymbol := make(map[string]float64, len(premiums))
	for _, p := range premiums {
		fundingBySymbol[p.Symbol] = screener.ParseOrZero(p.LastFundingRate)
	}

	var (
		mu         sync.Mutex
		oiFailures int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(payload.MaxConcurrency)
	for i := range rows {
		g.Go(func() error {
			oi, err := s.exchangeRepo.GetOpenInterest(gCtx, rows[i].Symbol)
			if err != nil {
				s.log.WarnContext(gCtx, "Failed to fetch open interest",
					logger.StringField("symbol", rows[i].Symbol),
					logger.ErrorField(err))
				mu.Lock()
				oiFailures++
				mu.Unlock()
				return nil
			}
			rows[i].OpenInterest = screener.ParseOrZero(oi.OpenInterest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("open interest fetch aborted: %v", err)}, err
	}

	for i := range rows {
		rows[i].FundingRate = fundingBySymbol[rows[i].Symbol]
		rows[i].UpdatedAt = time.Now()
	}

	if err := s.futuresRepo.Upsert(ctx, rows); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to upsert snapshots: %v", err)}, err
	}

	output := fmt.Sprintf("synced %d symbols", len(rows))
	if oiFailures > 0 {
		output += fmt.Sprintf(", %d open interest fetches failed", oiFailures)
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: output}, nil
	}
	return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: output}, nil
}
