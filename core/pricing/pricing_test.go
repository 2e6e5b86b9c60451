package pricing

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartpark/core/model"
)

// mondayProfile is the reference weekday curve, hours 0-23.
var mondayProfile = []float64{30, 20, 15, 10, 15, 25, 45, 70, 95, 90, 85, 75, 80, 95, 85, 80, 85, 80, 70, 60, 50, 45, 40, 35}

// weekStart is a Monday.
var weekStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func weekPoints(start time.Time, hours int, value func(day, hour int) float64) []model.ForecastPoint {
	pts := make([]model.ForecastPoint, hours)
	for i := range pts {
		ts := start.Add(time.Duration(i) * time.Hour)
		pts[i] = model.ForecastPoint{Timestamp: ts, PredictedValue: value(model.DayOfWeek(ts), ts.Hour())}
	}
	return pts
}

func profileValue(day, hour int) float64 {
	return mondayProfile[hour] * (1 + 0.1*float64(day))
}

func mondayBuckets(values []float64) []model.DayHourBucket {
	b := make([]model.DayHourBucket, len(values))
	for h, v := range values {
		b[h] = model.DayHourBucket{DayOfWeek: 0, DayName: "Monday", Hour: h, MeanOccupancy: v}
	}
	return b
}

func TestAggregate_MeansPerSlot(t *testing.T) {
	// Two weeks: the second week is 10 points higher everywhere.
	pts := weekPoints(weekStart, 14*24, func(day, hour int) float64 { return float64(hour) })
	for i := 7 * 24; i < len(pts); i++ {
		pts[i].PredictedValue += 10
	}
	buckets, err := Aggregate(pts)
	require.NoError(t, err)
	require.Len(t, buckets, 168)
	assert.Empty(t, MissingSlots(buckets))

	for i, b := range buckets {
		assert.Equal(t, i/24, b.DayOfWeek)
		assert.Equal(t, i%24, b.Hour)
		assert.Equal(t, model.DayNames[b.DayOfWeek], b.DayName)
		assert.InDelta(t, float64(b.Hour)+5, b.MeanOccupancy, 1e-9)
	}
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	pts := weekPoints(weekStart, 3, func(int, int) float64 { return 1 })
	pts[1].PredictedValue = math.NaN()
	_, err = Aggregate(pts)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestAggregate_UsesTimestampLocation(t *testing.T) {
	// 23:00 UTC on Sunday is Monday 00:00 in Paris during winter.
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	ts := time.Date(2024, time.January, 7, 23, 0, 0, 0, time.UTC).In(paris)
	buckets, err := Aggregate([]model.ForecastPoint{{Timestamp: ts, PredictedValue: 3}})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Monday", buckets[0].DayName)
	assert.Equal(t, 0, buckets[0].Hour)
}

func TestMissingSlots_ShortHorizon(t *testing.T) {
	buckets, err := Aggregate(weekPoints(weekStart, 48, profileValue))
	require.NoError(t, err)
	missing := MissingSlots(buckets)
	assert.Len(t, missing, 168-48)
	assert.Equal(t, Slot{DayName: "Wednesday", Hour: 0}, missing[0])
}

func TestClassify_MondayScenario(t *testing.T) {
	class, err := Classify(mondayBuckets(mondayProfile))
	require.NoError(t, err)
	hours := class["Monday"]
	require.Len(t, hours, 24)

	assert.Equal(t, model.TierPremium, hours[8].Tier)
	assert.Equal(t, model.TierPremium, hours[13].Tier)
	assert.Equal(t, hours[8].Percentile, hours[13].Percentile)
	assert.Equal(t, model.TierLow, hours[3].Tier)

	var got strings.Builder
	for _, h := range hours {
		got.WriteString(h.Tier.String()[:1])
	}
	assert.Equal(t, "LLLLLLMHPPPHHPPHPHHMMMMM", got.String())
}

func TestClassify_TieHandling(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i)
	}
	// Hours 5 and 17 share a value straddling the Low/Medium boundary.
	values[5], values[17] = 5.5, 5.5
	class, err := Classify(mondayBuckets(values))
	require.NoError(t, err)
	assert.Equal(t, class["Monday"][5].Tier, class["Monday"][17].Tier)

	flat := make([]float64, 24)
	class, err = Classify(mondayBuckets(flat))
	require.NoError(t, err)
	for _, h := range class["Monday"] {
		assert.Equal(t, model.TierHigh, h.Tier, "all-equal day uses the middle rank 0.52")
	}
}

func TestClassify_IncompleteDay(t *testing.T) {
	b := mondayBuckets(mondayProfile)[:23]
	_, err := Classify(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteDay)
	var de *DayError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Monday", de.Day)
	assert.Equal(t, 23, de.Hours)

	dup := mondayBuckets(mondayProfile)
	dup[23].Hour = 22
	_, err = Classify(dup)
	assert.ErrorIs(t, err, ErrIncompleteDay)

	// One bad day fails the whole call.
	full, err := Aggregate(weekPoints(weekStart, 168, profileValue))
	require.NoError(t, err)
	_, err = Classify(full[:len(full)-1])
	assert.ErrorIs(t, err, ErrIncompleteDay)

	_, err = Classify(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestClassify_CompletenessAndOrdering(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	pts := weekPoints(weekStart, 21*24, func(int, int) float64 { return math.Round(rng.Float64() * 100) })
	buckets, err := Aggregate(pts)
	require.NoError(t, err)
	class, err := Classify(buckets)
	require.NoError(t, err)

	require.Len(t, class, 7)
	total := 0
	for day, hours := range class {
		total += len(hours)
		maxLow, minPremium := math.Inf(-1), math.Inf(1)
		for i, h := range hours {
			assert.Equal(t, i, h.Hour, day)
			if h.Tier == model.TierLow {
				maxLow = math.Max(maxLow, h.MeanOccupancy)
			}
			if h.Tier == model.TierPremium {
				minPremium = math.Min(minPremium, h.MeanOccupancy)
			}
		}
		assert.GreaterOrEqual(t, minPremium, maxLow, day)
	}
	assert.Equal(t, 168, total)
}

func TestPipeline_Deterministic(t *testing.T) {
	pts := weekPoints(weekStart, 168, profileValue)
	shuffled := make([]model.ForecastPoint, len(pts))
	copy(shuffled, pts)
	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	run := func(p []model.ForecastPoint) model.WeeklySchedule {
		b, err := Aggregate(p)
		require.NoError(t, err)
		c, err := Classify(b)
		require.NoError(t, err)
		s, err := BuildSchedule(c, model.DefaultPricingConfig())
		require.NoError(t, err)
		return s
	}
	first := run(pts)
	assert.Equal(t, first, run(pts))
	assert.Equal(t, first, run(shuffled))
}

func TestBuildSchedule_PremiumPrice(t *testing.T) {
	class, err := Classify(mondayBuckets(mondayProfile))
	require.NoError(t, err)
	schedule, err := BuildSchedule(class, model.DefaultPricingConfig())
	require.NoError(t, err)

	monday := schedule["Monday"]
	require.Len(t, monday, 24)
	assert.Equal(t, 4.00, monday[8].Price)
	assert.Equal(t, model.TierPremium, monday[8].Tier)
	assert.Equal(t, 2.00, monday[3].Price)
	assert.Equal(t, 95.0, monday[8].PredictedOccupancy)
	assert.Equal(t, "8:00", monday[8].HourFormatted())

	prices := map[model.PricingTier]float64{}
	for _, e := range monday {
		prices[e.Tier] = e.Price
	}
	assert.Equal(t, map[model.PricingTier]float64{
		model.TierLow: 2.00, model.TierMedium: 2.50, model.TierHigh: 3.00, model.TierPremium: 4.00,
	}, prices)
}

func TestBuildSchedule_SortsAndRounds(t *testing.T) {
	class := model.Classification{"Tuesday": {
		{Hour: 2, Tier: model.TierHigh, MeanOccupancy: 12.34},
		{Hour: 0, Tier: model.TierLow, MeanOccupancy: 40.06},
	}}
	cfg := model.PricingConfig{
		BasePrice:       1.75,
		TierMultipliers: map[model.PricingTier]float64{model.TierLow: 1, model.TierHigh: 1.5},
	}
	s, err := BuildSchedule(class, cfg)
	require.NoError(t, err)
	require.Len(t, s["Tuesday"], 2)
	assert.Equal(t, 0, s["Tuesday"][0].Hour)
	assert.Equal(t, 40.1, s["Tuesday"][0].PredictedOccupancy)
	assert.Equal(t, 2.63, s["Tuesday"][1].Price)
	assert.Equal(t, 12.3, s["Tuesday"][1].PredictedOccupancy)
}

func TestBuildSchedule_UnknownTier(t *testing.T) {
	class := model.Classification{"Monday": {{Hour: 9, Tier: model.TierPremium}}}
	cfg := model.PricingConfig{BasePrice: 2, TierMultipliers: map[model.PricingTier]float64{model.TierLow: 1}}
	_, err := BuildSchedule(class, cfg)
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = BuildSchedule(model.Classification{"Funday": nil}, model.DefaultPricingConfig())
	assert.Error(t, err)
}

func TestPrice_Monotonic(t *testing.T) {
	cfg := model.DefaultPricingConfig()
	require.NoError(t, cfg.Validate())
	for i := 1; i < len(model.Tiers); i++ {
		lo, err := Price(model.Tiers[i-1], cfg.BasePrice, cfg.TierMultipliers, cfg.Rounding)
		require.NoError(t, err)
		hi, err := Price(model.Tiers[i], cfg.BasePrice, cfg.TierMultipliers, cfg.Rounding)
		require.NoError(t, err)
		assert.LessOrEqual(t, lo, hi)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2, model.RoundHalfUp))
	assert.Equal(t, 2.13, Round(2.125, 2, model.RoundHalfUp))
	assert.Equal(t, 2.12, Round(2.125, 2, model.RoundHalfEven))
	assert.Equal(t, 40.1, Round(40.05, 1, model.RoundHalfUp))
	assert.Equal(t, 4.0, Round(4, 2, model.RoundHalfEven))
}

func TestResolveCurrent_RoundTrip(t *testing.T) {
	pts := weekPoints(weekStart, 168, profileValue)
	b, err := Aggregate(pts)
	require.NoError(t, err)
	c, err := Classify(b)
	require.NoError(t, err)
	s, err := BuildSchedule(c, model.DefaultPricingConfig())
	require.NoError(t, err)

	for _, p := range pts {
		at := p.Timestamp.Add(17 * time.Minute)
		cur, err := ResolveCurrent(s, at)
		require.NoError(t, err)
		assert.Equal(t, model.DayName(at), cur.Day)
		assert.Equal(t, at.Hour(), cur.Hour)
	}
}

func TestResolveCurrent_NoMatch(t *testing.T) {
	s := model.WeeklySchedule{"Monday": {{Hour: 1}}}
	_, err := ResolveCurrent(s, weekStart.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNoMatchingEntry)
	_, err = ResolveCurrent(s, weekStart.Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrNoMatchingEntry)
}

func TestTopPeaks(t *testing.T) {
	report, err := TopPeaks(mondayBuckets(mondayProfile), DefaultPeakCount)
	require.NoError(t, err)
	assert.Equal(t, []model.Peak{
		{Hour: 8, MeanOccupancy: 95},
		{Hour: 13, MeanOccupancy: 95},
		{Hour: 9, MeanOccupancy: 90},
		{Hour: 10, MeanOccupancy: 85},
		{Hour: 14, MeanOccupancy: 85},
	}, report["Monday"])
}

func TestTopPeaks_Week(t *testing.T) {
	b, err := Aggregate(weekPoints(weekStart, 168, profileValue))
	require.NoError(t, err)
	report, err := TopPeaks(b, 5)
	require.NoError(t, err)
	require.Len(t, report, 7)
	for day, peaks := range report {
		require.Len(t, peaks, 5, day)
		for i := 1; i < len(peaks); i++ {
			prev, cur := peaks[i-1], peaks[i]
			assert.True(t, prev.MeanOccupancy > cur.MeanOccupancy ||
				(prev.MeanOccupancy == cur.MeanOccupancy && prev.Hour < cur.Hour), day)
		}
	}
}

func TestTopPeaks_Errors(t *testing.T) {
	b := mondayBuckets(mondayProfile)
	for _, k := range []int{0, -1, 25} {
		_, err := TopPeaks(b, k)
		assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
	}
	_, err := TopPeaks(nil, 5)
	assert.ErrorIs(t, err, ErrInsufficientData)

	partial, err := TopPeaks(b[:3], 5)
	require.NoError(t, err)
	assert.Len(t, partial["Monday"], 3)
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`base_price: 3
rounding: half_even
tier_multipliers:
  low: 1
  Medium: 1.2
  HIGH: 1.4
  premium: 1.8
`), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.BasePrice)
	assert.Equal(t, model.RoundHalfEven, cfg.Rounding)
	assert.Equal(t, 1.2, cfg.TierMultipliers[model.TierMedium])
	assert.Equal(t, 1.8, cfg.TierMultipliers[model.TierPremium])

	cfg, err = DecodeConfig(strings.NewReader(`{"base_price":2,"tier_multipliers":{"Low":1,"Premium":2}}`), "json")
	require.NoError(t, err)
	assert.Equal(t, model.RoundHalfUp, cfg.Rounding)

	_, err = DecodeConfig(strings.NewReader(`{"base_price":2,"tier_multipliers":{"Low":2,"Premium":1}}`), "json")
	assert.Error(t, err, "decreasing multipliers")

	_, err = DecodeConfig(strings.NewReader(`{"base_price":2,"tier_multipliers":{"Gold":2}}`), "json")
	assert.Error(t, err)

	_, err = DecodeConfig(strings.NewReader(``), "toml")
	assert.Error(t, err)
}
