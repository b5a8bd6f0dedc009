package forecast

import (
	"math"
	"time"

	"revenuecast/pkg/errors"
	"revenuecast/pkg/models"
)

// Smoothing constants for the additive seasonal fit. Beta is kept low and
// the trend is damped so level shifts dominate over trend chasing; the
// model favors stability over fitting every local wiggle.
const (
	defaultAlpha = 0.3  // level smoothing
	defaultBeta  = 0.05 // trend smoothing, deliberately conservative
	defaultGamma = 0.2  // seasonal smoothing
	defaultPhi   = 0.98 // trend damping
)

// Engine fits a seasonal additive model (level + damped trend + yearly
// seasonality) and extends it over a fixed future horizon.
type Engine struct {
	SeasonLength int
	Horizon      int
	Interval     float64

	alpha float64
	beta  float64
	gamma float64
	phi   float64
}

// Result holds point estimates and uncertainty bounds for every timestamp
// in history plus horizon. Slices are all the same length. Historical
// entries carry the in-sample fitted values, not the actuals.
type Result struct {
	T     []time.Time
	Yhat  []float64
	Lower []float64
	Upper []float64
	Sigma float64
}

// NewEngine creates an engine from forecast configuration
func NewEngine(cfg models.Forecast) *Engine {
	return &Engine{
		SeasonLength: cfg.SeasonLength,
		Horizon:      cfg.Horizon,
		Interval:     cfg.Interval,
		alpha:        defaultAlpha,
		beta:         defaultBeta,
		gamma:        defaultGamma,
		phi:          defaultPhi,
	}
}

// MinHistory returns the minimum number of observations required: two full
// seasonal cycles, needed to seed level, trend, and seasonal components.
func (e *Engine) MinHistory() int {
	return 2 * e.SeasonLength
}

// Fit fits the model against the full historical series and produces point
// estimates with uncertainty bounds for history plus Horizon future
// periods at month-start alignment. The fit is a closed-form recursion, so
// repeated fits on identical input produce identical output.
func (e *Engine) Fit(series models.Series) (*Result, error) {
	n := series.Len()
	p := e.SeasonLength

	if n < e.MinHistory() {
		return nil, errors.InsufficientHistoryError(n, e.MinHistory())
	}
	if err := validateMonthly(series.DS); err != nil {
		return nil, err
	}

	// Seed from the first two seasonal cycles
	level := mean(series.Y[:p])
	trend := (mean(series.Y[p:2*p]) - mean(series.Y[:p])) / float64(p)
	season := make([]float64, p)
	for i := 0; i < p; i++ {
		season[i] = series.Y[i] - level
	}

	fitted := make([]float64, n)
	for t := 0; t < n; t++ {
		si := t % p
		fitted[t] = level + e.phi*trend + season[si]

		newLevel := e.alpha*(series.Y[t]-season[si]) + (1-e.alpha)*(level+e.phi*trend)
		trend = e.beta*(newLevel-level) + (1-e.beta)*e.phi*trend
		season[si] = e.gamma*(series.Y[t]-newLevel) + (1-e.gamma)*season[si]
		level = newLevel
	}

	sigma := residualStddev(series.Y, fitted)
	z := zScore(e.Interval)

	total := n + e.Horizon
	result := &Result{
		T:     make([]time.Time, total),
		Yhat:  make([]float64, total),
		Lower: make([]float64, total),
		Upper: make([]float64, total),
		Sigma: sigma,
	}

	for t := 0; t < n; t++ {
		result.T[t] = series.DS[t]
		result.Yhat[t] = fitted[t]
		result.Lower[t] = fitted[t] - z*sigma
		result.Upper[t] = fitted[t] + z*sigma
	}

	// Extend the future index at monthly steps; the uncertainty band
	// widens with the square root of the forecast step.
	last := series.DS[n-1]
	trendSum := 0.0
	for h := 1; h <= e.Horizon; h++ {
		trendSum += math.Pow(e.phi, float64(h))
		idx := n + h - 1

		result.T[idx] = last.AddDate(0, h, 0)
		result.Yhat[idx] = level + trendSum*trend + season[(n+h-1)%p]

		width := z * sigma * math.Sqrt(float64(h))
		result.Lower[idx] = result.Yhat[idx] - width
		result.Upper[idx] = result.Yhat[idx] + width
	}

	return result, nil
}

// Points converts the result into persistence-ready forecast rows
func (r *Result) Points() []models.ForecastPoint {
	points := make([]models.ForecastPoint, len(r.T))
	for i := range r.T {
		points[i] = models.ForecastPoint{
			SubscriptionMonth: r.T[i],
			ForecastedMRR:     r.Yhat[i],
			YhatLower:         r.Lower[i],
			YhatUpper:         r.Upper[i],
		}
	}
	return points
}

// validateMonthly checks the series is strictly increasing at month-start
// monthly granularity.
func validateMonthly(ds []time.Time) error {
	for i, t := range ds {
		if t.Day() != 1 {
			return errors.New(errors.ErrCodeFitFailed, "series timestamps must be month-start aligned").
				WithContext("timestamp", t.Format("2006-01-02"))
		}
		if i > 0 && !t.Equal(ds[i-1].AddDate(0, 1, 0)) {
			return errors.New(errors.ErrCodeFitFailed, "series must be strictly increasing at monthly steps with no gaps").
				WithContext("previous", ds[i-1].Format("2006-01-02")).
				WithContext("current", t.Format("2006-01-02"))
		}
	}
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func residualStddev(actual, fitted []float64) float64 {
	n := len(actual)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for i := range actual {
		r := actual[i] - fitted[i]
		sumSq += r * r
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// zScore maps an interval width to its two-sided normal quantile
func zScore(interval float64) float64 {
	switch {
	case interval >= 0.99:
		return 2.576
	case interval >= 0.95:
		return 1.960
	case interval >= 0.90:
		return 1.645
	case interval >= 0.80:
		return 1.282
	default:
		return 1.960
	}
}
