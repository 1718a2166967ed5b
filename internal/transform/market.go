package transform

import (
	"fmt"
	"math"

	"github.com/quantica-labs/pulse/internal/core/domain"
)

// Market sources get the standard technical indicator set over fixed
// lookback windows: simple and exponential moving averages, MACD, RSI,
// Bollinger bands, momentum and volume ratios.

const (
	smaShort      = 5
	smaLong       = 20
	emaFast       = 12
	emaSlow       = 26
	macdSpan      = 9
	rsiPeriod     = 14
	bollWindow    = 20
	bollWidth     = 2
	volumeMA      = 20
	momentumShort = 5
	momentumLong  = 10
)

func marketBase(records []domain.RawRecord) *domain.Frame {
	f := domain.NewFrame([]string{"open", "high", "low", "close", "volume"})
	for _, r := range records {
		m := r.Market
		_ = f.AppendRow(r.Timestamp, []float64{m.Open, m.High, m.Low, m.Close, m.Volume})
	}
	return f
}

//nolint:gocyclo // Flat list of indicator derivations.
func marketFeatures(f *domain.Frame, cfg Config) error {
	open, err := f.Column("open")
	if err != nil {
		return err
	}
	high, err := f.Column("high")
	if err != nil {
		return err
	}
	low, err := f.Column("low")
	if err != nil {
		return err
	}
	closes, err := f.Column("close")
	if err != nil {
		return err
	}
	volume, err := f.Column("volume")
	if err != nil {
		return err
	}

	dailyReturn := growthRate(closes)
	emaF := ema(closes, emaFast)
	emaS := ema(closes, emaSlow)
	macd := sub(emaF, emaS)
	bollMid := movingAverage(closes, bollWindow)
	bollStd := movingStd(closes, bollWindow)
	volMA := movingAverage(volume, volumeMA)
	priceChange := sub(closes, open)

	w := cfg.MovingAverageWindow
	cols := []struct {
		name   string
		values []float64
	}{
		{"daily_return", dailyReturn},
		{"volatility_5", movingStd(dailyReturn, smaShort)},
		{fmt.Sprintf("close_ma%d", w), movingAverage(closes, w)},
		{fmt.Sprintf("sma_%d", smaShort), movingAverage(closes, smaShort)},
		{fmt.Sprintf("sma_%d", smaLong), movingAverage(closes, smaLong)},
		{fmt.Sprintf("ema_%d", emaFast), emaF},
		{fmt.Sprintf("ema_%d", emaSlow), emaS},
		{"macd", macd},
		{"macd_signal", ema(macd, macdSpan)},
		{"rsi", rsi(closes, rsiPeriod)},
		{"bb_middle", bollMid},
		{"bb_upper", addScaled(bollMid, bollStd, bollWidth)},
		{"bb_lower", addScaled(bollMid, bollStd, -bollWidth)},
		{fmt.Sprintf("momentum_%d", momentumShort), momentum(closes, momentumShort)},
		{fmt.Sprintf("momentum_%d", momentumLong), momentum(closes, momentumLong)},
		{fmt.Sprintf("volume_ma%d", volumeMA), volMA},
		{"volume_ratio", ratioOrOne(volume, volMA)},
		{"price_change", priceChange},
		{"price_change_pct", ratio(priceChange, open)},
		{"high_low_ratio", ratioOrOne(high, low)},
		{"close_open_ratio", ratioOrOne(closes, open)},
		{"day_of_week", daysOfWeek(f.Timestamps)},
		{"month", months(f.Timestamps)},
		{"quarter", quarters(f.Timestamps)},
	}
	for _, c := range cols {
		if err := f.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

// rsi computes the relative strength index with Wilder smoothing seeded from
// the first period's simple averages. Warm-up rows get the neutral 50.
func rsi(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = 50
	}
	if len(closes) <= period {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	// Backfill warm-up rows with the first computed value.
	for i := 0; i < period; i++ {
		out[i] = out[period]
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// momentum computes close[i]/close[i-k] − 1, 0 during warm-up.
func momentum(closes []float64, k int) []float64 {
	out := make([]float64, len(closes))
	for i := k; i < len(closes); i++ {
		if closes[i-k] == 0 {
			continue
		}
		out[i] = closes[i]/closes[i-k] - 1
	}
	return out
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func addScaled(a, b []float64, k float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + k*b[i]
	}
	return out
}

// ratioOrOne divides a by b element-wise, yielding the neutral 1 where b is
// 0 or the result would not be finite.
func ratioOrOne(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if b[i] == 0 {
			out[i] = 1
			continue
		}
		v := a[i] / b[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 1
		}
		out[i] = v
	}
	return out
}
