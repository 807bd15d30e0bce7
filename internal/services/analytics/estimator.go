package analytics

import (
	"fmt"
	"iter"
	"math"
	"time"

	"GasCurve/internal/domain/models"
	"GasCurve/pkg/util"
)

// Model is an immutable fitted price curve: the polynomial trend plus the
// monthly adjustment table, bundled as an explicit value so queries can never
// run against a half-built model. Safe for concurrent readers once built;
// callers that rebuild must publish the replacement with a pointer swap.
type Model struct {
	trend    TrendModel
	seasonal AdjustmentTable
	base     time.Time
	last     time.Time
	obs      []models.Observation
}

// BuildModel fits the trend and the seasonal table over the observation
// sequence. Observations must carry distinct, strictly increasing dates.
// Building is idempotent: the same input produces the same model.
func BuildModel(obs []models.Observation) (*Model, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: empty observation sequence", ErrInvalidArgument)
	}

	own := make([]models.Observation, len(obs))
	for i, o := range obs {
		own[i] = models.Observation{Date: util.DayStart(o.Date), Price: o.Price}
		if i > 0 && !own[i-1].Date.Before(own[i].Date) {
			return nil, fmt.Errorf("%w: observation dates must be strictly increasing (%s >= %s)",
				ErrInvalidArgument, own[i-1].Date.Format("2006-01-02"), own[i].Date.Format("2006-01-02"))
		}
	}

	trend, err := FitTrend(own)
	if err != nil {
		return nil, err
	}

	return &Model{
		trend:    trend,
		seasonal: SeasonalAdjustments(own, trend),
		base:     own[0].Date,
		last:     own[len(own)-1].Date,
		obs:      own,
	}, nil
}

// EstimatePrice returns trend(elapsed days) + adjustment(month). The same
// formula serves historical interpolation, near-term forecasts and long-range
// extrapolation; accuracy degrades unbounded outside the trained range.
// Pure: the same date against the same model always yields the same value.
func (m *Model) EstimatePrice(date time.Time) (float64, error) {
	if m == nil {
		return 0, ErrModelNotBuilt
	}
	if date.IsZero() {
		return 0, fmt.Errorf("%w: zero query date", ErrInvalidArgument)
	}
	elapsed := util.DaysBetween(m.base, util.DayStart(date))
	return m.trend.At(elapsed) + m.seasonal.For(date.Month()), nil
}

// Extrapolate returns a finite, restartable sequence of exactly monthsAhead
// month-start estimates, beginning one month after the last observation.
// Each range over the sequence recomputes lazily from the model.
func (m *Model) Extrapolate(monthsAhead int) (iter.Seq2[time.Time, float64], error) {
	if m == nil {
		return nil, ErrModelNotBuilt
	}
	if monthsAhead <= 0 {
		return nil, fmt.Errorf("%w: monthsAhead must be positive, got %d", ErrInvalidArgument, monthsAhead)
	}
	return func(yield func(time.Time, float64) bool) {
		for i := 1; i <= monthsAhead; i++ {
			d := util.AddMonths(m.last, i)
			p, _ := m.EstimatePrice(d)
			if !yield(d, p) {
				return
			}
		}
	}, nil
}

// SummaryStatistics is a read-only snapshot over the raw observations and the
// adjustment table. Recomputed on demand, never cached.
type SummaryStatistics struct {
	Mean                 float64    `json:"mean"`
	StdDev               float64    `json:"std_dev"`
	AnnualizedVolatility float64    `json:"annualized_volatility"`
	HighMonth            time.Month `json:"high_month"`
	HighAdjustment       float64    `json:"high_adjustment"`
	LowMonth             time.Month `json:"low_month"`
	LowAdjustment        float64    `json:"low_adjustment"`
	Observations         int        `json:"observations"`
	FirstDate            time.Time  `json:"first_date"`
	LastDate             time.Time  `json:"last_date"`
}

// Summary reports mean and sample standard deviation of observed prices,
// annualized volatility from month-over-month percentage changes, and the
// seasonal high/low months from the adjustment table.
func (m *Model) Summary() (SummaryStatistics, error) {
	if m == nil {
		return SummaryStatistics{}, ErrModelNotBuilt
	}

	prices := make([]float64, len(m.obs))
	for i, o := range m.obs {
		prices[i] = o.Price
	}

	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
		}
	}

	high, highVal := m.seasonal.HighSeason()
	low, lowVal := m.seasonal.LowSeason()

	return SummaryStatistics{
		Mean:                 mean(prices),
		StdDev:               sampleStdDev(prices),
		AnnualizedVolatility: sampleStdDev(changes) * math.Sqrt(12),
		HighMonth:            high,
		HighAdjustment:       highVal,
		LowMonth:             low,
		LowAdjustment:        lowVal,
		Observations:         len(m.obs),
		FirstDate:            m.base,
		LastDate:             m.last,
	}, nil
}

// Trend returns a copy of the fitted trend model.
func (m *Model) Trend() TrendModel {
	coeffs := make([]float64, len(m.trend.Coefficients))
	copy(coeffs, m.trend.Coefficients)
	return TrendModel{Coefficients: coeffs}
}

// Seasonal returns a copy of the monthly adjustment table.
func (m *Model) Seasonal() AdjustmentTable {
	table := make(AdjustmentTable, len(m.seasonal))
	for k, v := range m.seasonal {
		table[k] = v
	}
	return table
}

// Base returns the earliest observation date, the origin of the elapsed-days axis.
func (m *Model) Base() time.Time { return m.base }

// LastObserved returns the latest observation date.
func (m *Model) LastObserved() time.Time { return m.last }

// Observations returns a copy of the fitted observation sequence.
func (m *Model) Observations() []models.Observation {
	out := make([]models.Observation, len(m.obs))
	copy(out, m.obs)
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
