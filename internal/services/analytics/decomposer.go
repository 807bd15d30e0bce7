// Package analytics implements the hybrid trend+seasonal price model:
// a degree-3 polynomial regression over elapsed days captures the long-term
// trend, and mean monthly residuals capture the repeating seasonal pattern.
// All operations are pure computations over in-memory observations.
package analytics

import (
	"fmt"
	"math"
	"time"

	"GasCurve/internal/domain/models"
	"GasCurve/pkg/util"
)

// TrendDegree balances curve flexibility against overfitting on roughly four
// years of monthly points. A design constant, not a tuned hyperparameter.
const TrendDegree = 3

// TrendModel holds polynomial coefficients in ascending powers of elapsed
// days since the base date. Immutable once fit.
type TrendModel struct {
	Coefficients []float64 `json:"coefficients"`
}

// At evaluates the polynomial at an elapsed-day offset using Horner's rule.
// Valid for any real offset, including values outside the fitted range;
// callers own the extrapolation risk.
func (m TrendModel) At(elapsedDays float64) float64 {
	v := 0.0
	for i := len(m.Coefficients) - 1; i >= 0; i-- {
		v = v*elapsedDays + m.Coefficients[i]
	}
	return v
}

// FitTrend fits a degree-3 polynomial of price against elapsed days since the
// earliest observation, by ordinary least squares. It requires at least
// TrendDegree+1 distinct elapsed-day values and has no side effects.
func FitTrend(obs []models.Observation) (TrendModel, error) {
	base := earliestDate(obs)

	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	distinct := make(map[float64]struct{}, len(obs))
	for i, o := range obs {
		x := util.DaysBetween(base, util.DayStart(o.Date))
		xs[i] = x
		ys[i] = o.Price
		distinct[x] = struct{}{}
	}
	if len(distinct) < TrendDegree+1 {
		return TrendModel{}, fmt.Errorf("%w: need %d distinct dates, have %d",
			ErrInsufficientData, TrendDegree+1, len(distinct))
	}

	// Fit on a [0,1]-scaled abscissa to keep the normal equations well
	// conditioned, then map coefficients back to the elapsed-days domain.
	scale := 1.0
	for _, x := range xs {
		if x > scale {
			scale = x
		}
	}

	k := TrendDegree + 1
	xtx := make([][]float64, k)
	for i := range xtx {
		xtx[i] = make([]float64, k)
	}
	xty := make([]float64, k)

	row := make([]float64, k)
	for i := range xs {
		u := xs[i] / scale
		row[0] = 1
		for j := 1; j < k; j++ {
			row[j] = row[j-1] * u
		}
		for j := 0; j < k; j++ {
			xty[j] += row[j] * ys[i]
			for l := 0; l < k; l++ {
				xtx[j][l] += row[j] * row[l]
			}
		}
	}

	inv := invertMatrix(xtx)
	if inv == nil {
		return TrendModel{}, fmt.Errorf("%w: singular normal equations", ErrInsufficientData)
	}

	coeffs := make([]float64, k)
	unscale := 1.0
	for i := 0; i < k; i++ {
		b := 0.0
		for j := 0; j < k; j++ {
			b += inv[i][j] * xty[j]
		}
		coeffs[i] = b / unscale
		unscale *= scale
	}

	return TrendModel{Coefficients: coeffs}, nil
}

// AdjustmentTable maps a calendar month to its mean residual (observed minus
// trend), pooled across years. Months that never appear in the history have
// no entry.
type AdjustmentTable map[time.Month]float64

// For returns the adjustment for a month. Months absent from history fall
// back to 0.0: with no seasonal evidence the estimate is trend-only.
func (t AdjustmentTable) For(m time.Month) float64 {
	return t[m]
}

// HighSeason returns the month with the largest adjustment. The earliest
// month wins ties so the result is deterministic.
func (t AdjustmentTable) HighSeason() (time.Month, float64) {
	return t.extreme(func(a, b float64) bool { return a > b })
}

// LowSeason returns the month with the smallest adjustment.
func (t AdjustmentTable) LowSeason() (time.Month, float64) {
	return t.extreme(func(a, b float64) bool { return a < b })
}

func (t AdjustmentTable) extreme(better func(a, b float64) bool) (time.Month, float64) {
	var (
		bestMonth time.Month
		bestValue float64
		found     bool
	)
	for m := time.January; m <= time.December; m++ {
		v, ok := t[m]
		if !ok {
			continue
		}
		if !found || better(v, bestValue) {
			bestMonth, bestValue, found = m, v, true
		}
	}
	return bestMonth, bestValue
}

// SeasonalAdjustments groups residuals against the fitted trend by calendar
// month, irrespective of year, and averages them.
func SeasonalAdjustments(obs []models.Observation, trend TrendModel) AdjustmentTable {
	base := earliestDate(obs)

	sums := make(map[time.Month]float64, 12)
	counts := make(map[time.Month]int, 12)
	for _, o := range obs {
		residual := o.Price - trend.At(util.DaysBetween(base, util.DayStart(o.Date)))
		m := o.Date.Month()
		sums[m] += residual
		counts[m]++
	}

	table := make(AdjustmentTable, len(sums))
	for m, sum := range sums {
		table[m] = sum / float64(counts[m])
	}
	return table
}

func earliestDate(obs []models.Observation) time.Time {
	var base time.Time
	for i, o := range obs {
		d := util.DayStart(o.Date)
		if i == 0 || d.Before(base) {
			base = d
		}
	}
	return base
}

// invertMatrix inverts a small square matrix by Gauss-Jordan elimination with
// partial pivoting. Returns nil for a singular matrix.
func invertMatrix(m [][]float64) [][]float64 {
	n := len(m)
	if n == 0 {
		return nil
	}

	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i][:n], m[i])
		aug[i][n+i] = 1
	}

	for i := 0; i < n; i++ {
		maxRow := i
		for r := i + 1; r < n; r++ {
			if math.Abs(aug[r][i]) > math.Abs(aug[maxRow][i]) {
				maxRow = r
			}
		}
		aug[i], aug[maxRow] = aug[maxRow], aug[i]

		if math.Abs(aug[i][i]) < 1e-12 {
			return nil
		}

		pivot := aug[i][i]
		for j := 0; j < 2*n; j++ {
			aug[i][j] /= pivot
		}
		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			factor := aug[r][i]
			for j := 0; j < 2*n; j++ {
				aug[r][j] -= factor * aug[i][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = make([]float64, n)
		copy(inv[i], aug[i][n:])
	}
	return inv
}
