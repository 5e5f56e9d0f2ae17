package screener

import (
	"strconv"
	"strings"

	"futures-dashboard/internal/model"
)

// Tick is the per-symbol market view the evaluator judges. Change24h is a
// fraction (0.05 = +5%).
type Tick struct {
	Symbol       string
	Price        float64
	Change24h    float64
	High24h      float64
	Low24h       float64
	VolumeUSD    float64
	OpenInterest float64
}

func TickFromFuturesData(fd model.FuturesData) Tick {
	volumeUSD := fd.QuoteVolume24h
	if volumeUSD == 0 {
		volumeUSD = fd.Volume24h
	}
	return Tick{
		Symbol:       fd.Symbol,
		Price:        fd.Price,
		Change24h:    fd.Change24h,
		High24h:      fd.High24h,
		Low24h:       fd.Low24h,
		VolumeUSD:    volumeUSD,
		OpenInterest: fd.OpenInterest,
	}
}

// Matches reports whether the tick passes every populated criterion. Criteria
// combine with logical AND and evaluation stops at the first failure. An
// empty criteria object matches every tick. An unrecognized indicator
// operator rejects the tick: a filter that cannot judge a condition must not
// let the tick through.
func Matches(tick Tick, c model.ScreenerCriteria) bool {
	changePct := tick.Change24h * 100

	if c.MinPrice != nil && tick.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && tick.Price > *c.MaxPrice {
		return false
	}
	if c.MinVolumeUSD != nil && tick.VolumeUSD < *c.MinVolumeUSD {
		return false
	}
	if c.MaxVolumeUSD != nil && tick.VolumeUSD > *c.MaxVolumeUSD {
		return false
	}
	if c.MinChange != nil && changePct < *c.MinChange {
		return false
	}
	if c.MaxChange != nil && changePct > *c.MaxChange {
		return false
	}

	// Market cap stand-in: the schema has no supply column, so price times
	// open interest is used as the size proxy.
	marketCap := tick.Price * tick.OpenInterest
	if c.MinMarketCap != nil && marketCap < *c.MinMarketCap {
		return false
	}
	if c.MaxMarketCap != nil && marketCap > *c.MaxMarketCap {
		return false
	}

	if c.SymbolPrefix != nil && !strings.HasPrefix(tick.Symbol, strings.ToUpper(*c.SymbolPrefix)) {
		return false
	}
	if c.SymbolContains != nil && !strings.Contains(tick.Symbol, strings.ToUpper(*c.SymbolContains)) {
		return false
	}
	if len(c.SymbolList) > 0 && !containsSymbol(c.SymbolList, tick.Symbol) {
		return false
	}

	indicators := []struct {
		criterion *model.IndicatorCriterion
		value     float64
	}{
		{c.RSI, proxyRSI(tick)},
		{c.MACD, changePct},
		{c.MovingAverages, proxyMADeviation(tick)},
		{c.Bollinger, proxyPercentB(tick)},
		{c.Stochastic, proxyStochastic(tick)},
		{c.WilliamsR, proxyStochastic(tick) - 100},
		{c.ATR, proxyATR(tick)},
		{c.CCI, changePct * 20},
		{c.Momentum, tick.Price * tick.Change24h},
	}
	for _, ind := range indicators {
		if ind.criterion == nil {
			continue
		}
		if !applyOperator(ind.value, *ind.criterion) {
			return false
		}
	}

	return true
}

func applyOperator(value float64, c model.IndicatorCriterion) bool {
	switch c.Operator {
	case model.OperatorAbove:
		return value > c.Value
	case model.OperatorBelow:
		return value < c.Value
	case model.OperatorBetween:
		if c.Value2 == nil {
			return false
		}
		return value >= c.Value && value <= *c.Value2
	default:
		// Fail closed on operators this version does not know.
		return false
	}
}

func containsSymbol(list []string, symbol string) bool {
	for _, s := range list {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// The indicator values below are single-snapshot stand-ins derived from the
// 24h tick, not true historical indicators.

// proxyRSI maps the 24h change onto the 0..100 RSI scale, saturating at a
// +-25% day.
func proxyRSI(t Tick) float64 {
	changePct := t.Change24h * 100
	v := 50 + changePct*2
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// proxyStochastic is the price position inside the 24h range, 0..100.
func proxyStochastic(t Tick) float64 {
	if t.High24h <= t.Low24h {
		return 50
	}
	return (t.Price - t.Low24h) / (t.High24h - t.Low24h) * 100
}

// proxyATR is the 24h range as a percentage of price.
func proxyATR(t Tick) float64 {
	if t.Price <= 0 {
		return 0
	}
	return (t.High24h - t.Low24h) / t.Price * 100
}

// proxyPercentB is the Bollinger %B stand-in over the 24h range, 0..1.
func proxyPercentB(t Tick) float64 {
	if t.High24h <= t.Low24h {
		return 0.5
	}
	return (t.Price - t.Low24h) / (t.High24h - t.Low24h)
}

// proxyMADeviation is the deviation of price from the 24h midpoint in percent.
func proxyMADeviation(t Tick) float64 {
	mid := (t.High24h + t.Low24h) / 2
	if mid <= 0 {
		return 0
	}
	return (t.Price - mid) / mid * 100
}

// IndicatorValue exposes the proxy value for one named indicator so the alert
// scanner can evaluate technical-indicator settings with the same arithmetic
// the screener uses.
func IndicatorValue(t Tick, indicator string) (float64, bool) {
	switch strings.ToLower(indicator) {
	case "rsi":
		return proxyRSI(t), true
	case "macd":
		return t.Change24h * 100, true
	case "moving_averages", "ma":
		return proxyMADeviation(t), true
	case "bollinger":
		return proxyPercentB(t), true
	case "stochastic":
		return proxyStochastic(t), true
	case "williams_r":
		return proxyStochastic(t) - 100, true
	case "atr":
		return proxyATR(t), true
	case "cci":
		return t.Change24h * 100 * 20, true
	case "momentum":
		return t.Price * t.Change24h, true
	default:
		return 0, false
	}
}

// ParseOrZero parses a decimal string the way the dashboard treats missing
// numeric fields: anything unparseable, including the empty string, is zero.
func ParseOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
