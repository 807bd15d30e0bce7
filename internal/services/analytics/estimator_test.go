package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasCurve/internal/domain/models"
	"GasCurve/pkg/util"
)

// gasFixture is four years of synthetic monthly prices oscillating roughly
// between 9.9 and 12.9 with a slow upward drift, winter-peaking.
func gasFixture() []models.Observation {
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, 48)
	for i := range obs {
		d := util.AddMonths(base, i)
		obs[i] = models.Observation{
			Date:  d,
			Price: 11.2 + 0.018*float64(i) + 1.3*math.Cos(2*math.Pi*float64(d.Month()-1)/12),
		}
	}
	return obs
}

func TestBuildModelIdempotent(t *testing.T) {
	obs := gasFixture()

	m1, err := BuildModel(obs)
	require.NoError(t, err)
	m2, err := BuildModel(obs)
	require.NoError(t, err)

	c1, c2 := m1.Trend().Coefficients, m2.Trend().Coefficients
	require.Equal(t, len(c1), len(c2))
	for i := range c1 {
		assert.InDelta(t, c1[i], c2[i], 1e-12)
	}
	s1, s2 := m1.Seasonal(), m2.Seasonal()
	require.Equal(t, len(s1), len(s2))
	for m, v := range s1 {
		assert.InDelta(t, v, s2[m], 1e-12)
	}
}

func TestBuildModelRejectsBadSequences(t *testing.T) {
	_, err := BuildModel(nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	obs := gasFixture()
	obs[5].Date = obs[4].Date // duplicate
	_, err = BuildModel(obs)
	require.ErrorIs(t, err, ErrInvalidArgument)

	obs = gasFixture()
	obs[3], obs[4] = obs[4], obs[3] // out of order
	_, err = BuildModel(obs)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEstimatePriceIsPure(t *testing.T) {
	m, err := BuildModel(gasFixture())
	require.NoError(t, err)

	date := time.Date(2023, 7, 19, 0, 0, 0, 0, time.UTC)
	p1, err := m.EstimatePrice(date)
	require.NoError(t, err)
	p2, err := m.EstimatePrice(date)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestEstimateBeforeBuildFails(t *testing.T) {
	var m *Model

	_, err := m.EstimatePrice(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrModelNotBuilt)

	_, err = m.Extrapolate(12)
	require.ErrorIs(t, err, ErrModelNotBuilt)

	_, err = m.Summary()
	require.ErrorIs(t, err, ErrModelNotBuilt)
}

func TestEstimateRejectsZeroDate(t *testing.T) {
	m, err := BuildModel(gasFixture())
	require.NoError(t, err)

	_, err = m.EstimatePrice(time.Time{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEstimateMidpointOfLinearSeries(t *testing.T) {
	// Twelve 30-day-spaced observations at 10.0, 10.1, ..., 11.1: the data is
	// exactly linear in elapsed days, so the degree-3 fit collapses to the
	// line and the midpoint estimate equals linear interpolation between the
	// bracketing observations.
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, 12)
	for i := range obs {
		obs[i] = models.Observation{Date: base.AddDate(0, 0, i*30), Price: 10.0 + 0.1*float64(i)}
	}

	m, err := BuildModel(obs)
	require.NoError(t, err)

	midpoint := base.AddDate(0, 0, 165) // halfway between day 150 and day 180
	got, err := m.EstimatePrice(midpoint)
	require.NoError(t, err)
	assert.InDelta(t, 10.55, got, 1e-6)
}

func TestExtrapolateSequence(t *testing.T) {
	m, err := BuildModel(gasFixture())
	require.NoError(t, err)

	const months = 12
	seq, err := m.Extrapolate(months)
	require.NoError(t, err)

	collect := func() []models.PricePoint {
		var out []models.PricePoint
		for d, p := range seq {
			out = append(out, models.PricePoint{Date: d, Price: p})
		}
		return out
	}

	first := collect()
	require.Len(t, first, months)

	wantStart := util.AddMonths(m.LastObserved(), 1)
	assert.True(t, first[0].Date.Equal(wantStart), "first point %s, want %s", first[0].Date, wantStart)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].Date.Equal(util.AddMonths(first[i-1].Date, 1)),
			"dates must step by exactly one month")
	}

	// restartable: a second pass yields the identical sequence
	second := collect()
	assert.Equal(t, first, second)

	// partial consumption stops early without error
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestExtrapolateInvalidHorizon(t *testing.T) {
	m, err := BuildModel(gasFixture())
	require.NoError(t, err)

	_, err = m.Extrapolate(0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = m.Extrapolate(-4)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSummaryStatistics(t *testing.T) {
	obs := gasFixture()
	m, err := BuildModel(obs)
	require.NoError(t, err)

	sum, err := m.Summary()
	require.NoError(t, err)

	lo, hi := obs[0].Price, obs[0].Price
	for _, o := range obs {
		lo = math.Min(lo, o.Price)
		hi = math.Max(hi, o.Price)
	}
	assert.GreaterOrEqual(t, sum.Mean, lo)
	assert.LessOrEqual(t, sum.Mean, hi)
	assert.Greater(t, sum.StdDev, 0.0)
	assert.Greater(t, sum.AnnualizedVolatility, 0.0)
	assert.Equal(t, 48, sum.Observations)
	assert.True(t, sum.FirstDate.Equal(obs[0].Date))
	assert.True(t, sum.LastDate.Equal(obs[47].Date))

	// the reported high season must be the numeric maximum of the table
	table := m.Seasonal()
	var bestMonth time.Month
	best := math.Inf(-1)
	for mo := time.January; mo <= time.December; mo++ {
		if v, ok := table[mo]; ok && v > best {
			bestMonth, best = mo, v
		}
	}
	assert.Equal(t, bestMonth, sum.HighMonth)
	assert.InDelta(t, best, sum.HighAdjustment, 1e-12)
	assert.Equal(t, time.January, sum.HighMonth, "fixture peaks in January")
	assert.Equal(t, time.July, sum.LowMonth, "fixture bottoms in July")
}

func TestMissingMonthFallsBackToTrendOnly(t *testing.T) {
	// Only January through August appear in history; a December query gets a
	// zero adjustment and therefore the bare trend value.
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, 8)
	for i := range obs {
		obs[i] = models.Observation{Date: util.AddMonths(base, i), Price: 10.0 + 0.05*float64(i)}
	}

	m, err := BuildModel(obs)
	require.NoError(t, err)
	assert.Zero(t, m.Seasonal().For(time.December))

	date := time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)
	got, err := m.EstimatePrice(date)
	require.NoError(t, err)
	want := m.Trend().At(util.DaysBetween(m.Base(), date))
	assert.Equal(t, want, got)
}
