package screener

import (
	"testing"

	"futures-dashboard/internal/model"
	"futures-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestMatches_EmptyCriteriaPassesEverything(t *testing.T) {
	ticks := []Tick{
		{Symbol: "BTCUSDT", Price: 64000, Change24h: 0.031, VolumeUSD: 1.2e9},
		{Symbol: "DOGEUSDT", Price: 0.12, Change24h: -0.18, VolumeUSD: 900},
		{},
	}
	for _, tick := range ticks {
		assert.True(t, Matches(tick, model.ScreenerCriteria{}))
	}
}

func TestMatches_MinPriceRejectsRegardlessOfOtherCriteria(t *testing.T) {
	tick := Tick{Symbol: "ETHUSDT", Price: 2500, Change24h: 0.02, VolumeUSD: 5e8}
	criteria := model.ScreenerCriteria{
		MinPrice:     utils.ToPointer(3000.0),
		MinVolumeUSD: utils.ToPointer(1.0), // satisfied, must not rescue the tick
	}
	assert.False(t, Matches(tick, criteria))
}

func TestMatches_VolumeAndChangeBounds(t *testing.T) {
	criteria := model.ScreenerCriteria{
		MinVolumeUSD: utils.ToPointer(1000000.0),
		MaxChange:    utils.ToPointer(5.0),
	}
	ticks := []Tick{
		{Symbol: "AUSDT", Price: 1, Change24h: 0.02, VolumeUSD: 2000000},
		{Symbol: "BUSDT", Price: 1, Change24h: 0.10, VolumeUSD: 2000000},
	}

	var passing []string
	for _, tick := range ticks {
		if Matches(tick, criteria) {
			passing = append(passing, tick.Symbol)
		}
	}
	// B moves +10% and breaks the 5% max-change bound.
	assert.Equal(t, []string{"AUSDT"}, passing)
}

func TestMatches_Operators(t *testing.T) {
	tick := Tick{Symbol: "SOLUSDT", Price: 150, Change24h: 0.04, High24h: 155, Low24h: 140, VolumeUSD: 3e8}

	tests := []struct {
		name     string
		criteria model.ScreenerCriteria
		want     bool
	}{
		{
			name: "rsi above passes on a +4% day",
			criteria: model.ScreenerCriteria{
				RSI: &model.IndicatorCriterion{Operator: model.OperatorAbove, Value: 55},
			},
			want: true,
		},
		{
			name: "rsi below fails on a +4% day",
			criteria: model.ScreenerCriteria{
				RSI: &model.IndicatorCriterion{Operator: model.OperatorBelow, Value: 55},
			},
			want: false,
		},
		{
			name: "stochastic between",
			criteria: model.ScreenerCriteria{
				Stochastic: &model.IndicatorCriterion{Operator: model.OperatorBetween, Value: 50, Value2: utils.ToPointer(80.0)},
			},
			want: true, // (150-140)/(155-140) = 66.7
		},
		{
			name: "between without upper bound fails closed",
			criteria: model.ScreenerCriteria{
				Stochastic: &model.IndicatorCriterion{Operator: model.OperatorBetween, Value: 50},
			},
			want: false,
		},
		{
			name: "unknown operator rejects the tick",
			criteria: model.ScreenerCriteria{
				RSI: &model.IndicatorCriterion{Operator: "crosses_over", Value: 50},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tick, tt.criteria))
		})
	}
}

func TestMatches_SymbolFilters(t *testing.T) {
	tick := Tick{Symbol: "BTCUSDT", Price: 64000}

	assert.True(t, Matches(tick, model.ScreenerCriteria{SymbolPrefix: utils.ToPointer("btc")}))
	assert.False(t, Matches(tick, model.ScreenerCriteria{SymbolPrefix: utils.ToPointer("ETH")}))
	assert.True(t, Matches(tick, model.ScreenerCriteria{SymbolContains: utils.ToPointer("USDT")}))
	assert.True(t, Matches(tick, model.ScreenerCriteria{SymbolList: []string{"ethusdt", "btcusdt"}}))
	assert.False(t, Matches(tick, model.ScreenerCriteria{SymbolList: []string{"ETHUSDT"}}))
}

func TestMatches_MarketCapProxy(t *testing.T) {
	tick := Tick{Symbol: "BTCUSDT", Price: 100, OpenInterest: 1000}
	assert.True(t, Matches(tick, model.ScreenerCriteria{MinMarketCap: utils.ToPointer(100000.0)}))
	assert.False(t, Matches(tick, model.ScreenerCriteria{MinMarketCap: utils.ToPointer(100001.0)}))
}

func TestIndicatorValue(t *testing.T) {
	tick := Tick{Symbol: "ETHUSDT", Price: 2500, Change24h: 0.05, High24h: 2600, Low24h: 2400}

	rsi, ok := IndicatorValue(tick, "RSI")
	assert.True(t, ok)
	assert.InDelta(t, 60, rsi, 0.001)

	stoch, ok := IndicatorValue(tick, "stochastic")
	assert.True(t, ok)
	assert.InDelta(t, 50, stoch, 0.001)

	_, ok = IndicatorValue(tick, "ichimoku")
	assert.False(t, ok)
}

func TestParseOrZero(t *testing.T) {
	assert.Equal(t, 0.0, ParseOrZero(""))
	assert.Equal(t, 0.0, ParseOrZero("not-a-number"))
	assert.Equal(t, 42.5, ParseOrZero("42.5"))
	assert.Equal(t, -0.0123, ParseOrZero(" -0.0123 "))
}

func TestTickFromFuturesData_PrefersQuoteVolume(t *testing.T) {
	fd := model.FuturesData{Symbol: "BTCUSDT", Price: 64000, Volume24h: 20000, QuoteVolume24h: 1.28e9}
	assert.Equal(t, 1.28e9, TickFromFuturesData(fd).VolumeUSD)

	fd.QuoteVolume24h = 0
	assert.Equal(t, 20000.0, TickFromFuturesData(fd).VolumeUSD)
}
