package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"futures-dashboard/config"
	"futures-dashboard/internal/dto"
	"futures-dashboard/pkg/httpclient"
	"futures-dashboard/pkg/logger"

	"golang.org/x/time/rate"
)

// ExchangeRepository reads futures market data from the exchange REST API.
type ExchangeRepository interface {
	GetTickers24h(ctx context.Context) ([]dto.Ticker24h, error)
	GetPremiumIndex(ctx context.Context) ([]dto.PremiumIndex, error)
	GetOpenInterest(ctx context.Context, symbol string) (*dto.OpenInterest, error)
	GetKlines(ctx context.Context, param dto.GetHistoryParam) ([]dto.Candle, error)
}

type exchangeRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewExchangeRepository(cfg *config.Config, log *logger.Logger) ExchangeRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Exchange.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &exchangeRepository{
		httpClient:     httpclient.New(cfg.Exchange.BaseURL, cfg.Exchange.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *exchangeRepository) GetTickers24h(ctx context.Context) ([]dto.Ticker24h, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var tickers []dto.Ticker24h
	resp, err := r.httpClient.Get(ctx, "/fapi/v1/ticker/24hr", nil, nil, &tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch 24h tickers: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Exchange API returned Non-OK status for tickers",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("exchange api returned status: %d", resp.StatusCode)
	}
	return tickers, nil
}

func (r *exchangeRepository) GetPremiumIndex(ctx context.Context) ([]dto.PremiumIndex, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rows []dto.PremiumIndex
	resp, err := r.httpClient.Get(ctx, "/fapi/v1/premiumIndex", nil, nil, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch premium index: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange api returned status: %d", resp.StatusCode)
	}
	return rows, nil
}

func (r *exchangeRepository) GetOpenInterest(ctx context.Context, symbol string) (*dto.OpenInterest, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var row dto.OpenInterest
	resp, err := r.httpClient.Get(ctx, "/fapi/v1/openInterest", map[string]string{"symbol": symbol}, nil, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open interest for %s: %w", symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange api returned status: %d", resp.StatusCode)
	}
	return &row, nil
}

func (r *exchangeRepository) GetKlines(ctx context.Context, param dto.GetHistoryParam) ([]dto.Candle, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"symbol":   param.Symbol,
		"interval": param.Interval,
		"limit":    strconv.Itoa(param.Limit),
	}

	var klines [][]interface{}
	resp, err := r.httpClient.Get(ctx, "/fapi/v1/klines", queryParams, nil, &klines)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Exchange API returned Non-OK status for klines",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("exchange api returned status: %d", resp.StatusCode)
	}

	candles := make([]dto.Candle, 0, len(klines))
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}
		openTime, _ := k[0].(float64)
		candles = append(candles, dto.Candle{
			OpenTime: int64(openTime),
			Open:     parseKlineField(k[1]),
			High:     parseKlineField(k[2]),
			Low:      parseKlineField(k[3]),
			Close:    parseKlineField(k[4]),
			Volume:   parseKlineField(k[5]),
		})
	}
	return candles, nil
}

func parseKlineField(field interface{}) float64 {
	s, ok := field.(string)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
