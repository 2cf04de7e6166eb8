// Package css estimates ARMA recursions on a (differenced) series by
// conditional sum of squares. It backs the arima and sarima models.
package css

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/stats"
)

// Structure lists the lags of the autoregressive and moving-average terms.
// A lag may appear more than once; the terms add up.
type Structure struct {
	ARLags []int
	MALags []int
}

// Orders builds the lag structure of an ARMA(p, q)(P, Q)[m] recursion.
func Orders(p, q, sp, sq, m int) Structure {
	var s Structure
	for i := 1; i <= p; i++ {
		s.ARLags = append(s.ARLags, i)
	}
	for i := 1; i <= sp; i++ {
		s.ARLags = append(s.ARLags, i*m)
	}
	for i := 1; i <= q; i++ {
		s.MALags = append(s.MALags, i)
	}
	for i := 1; i <= sq; i++ {
		s.MALags = append(s.MALags, i*m)
	}
	return s
}

// NumParams counts the coefficients plus the intercept.
func (s Structure) NumParams() int {
	return len(s.ARLags) + len(s.MALags) + 1
}

func (s Structure) maxLag() int {
	out := 0
	for _, l := range s.ARLags {
		out = max(out, l)
	}
	for _, l := range s.MALags {
		out = max(out, l)
	}
	return out
}

// Options tunes the gradient descent.
type Options struct {
	MaxIter      int
	LearningRate float64
	Momentum     float64
	// Decay multiplies the learning rate after every iteration.
	Decay     float64
	Tolerance float64
	// Patience stops the search after this many iterations without a new
	// best SSE; 0 disables it.
	Patience int
	// Bound clamps every coefficient to [-Bound, Bound].
	Bound float64
}

// Plain is plain gradient descent.
func Plain() Options {
	return Options{MaxIter: 100, LearningRate: 0.01, Decay: 1, Tolerance: 1e-6, Bound: 0.99}
}

// WithMomentum is gradient descent with momentum, a decaying step and
// early stopping.
func WithMomentum() Options {
	return Options{
		MaxIter:      200,
		LearningRate: 0.005,
		Momentum:     0.9,
		Decay:        0.99,
		Tolerance:    1e-8,
		Patience:     20,
		Bound:        0.99,
	}
}

// Estimate is a fitted recursion.
type Estimate struct {
	Structure
	AR        []float64
	MA        []float64
	Intercept float64
	Variance  float64
	Residuals []float64
	Fitted    []float64
	// Start is the first index whose residual enters the SSE.
	Start int
}

// Fit estimates the coefficients of s on y starting from ar0 and ma0 (nil
// means zero for AR and 0.1 for MA).
func Fit(y []float64, s Structure, ar0, ma0 []float64, opts Options) *Estimate {
	n := len(y)
	e := &Estimate{
		Structure: s,
		AR:        make([]float64, len(s.ARLags)),
		MA:        make([]float64, len(s.MALags)),
		Intercept: stat.Mean(y, nil),
	}
	copy(e.AR, ar0)
	if ma0 != nil {
		copy(e.MA, ma0)
	} else {
		for i := range e.MA {
			e.MA[i] = 0.1
		}
	}

	e.Start = s.maxLag()
	if e.Start >= n-10 {
		e.Start = 0
	}

	if len(e.AR)+len(e.MA) > 0 {
		e.descend(y, opts)
	}
	e.Residuals, e.Fitted = e.filter(y, 0)

	sse := 0.0
	count := 0
	for t := e.Start; t < n; t++ {
		sse += e.Residuals[t] * e.Residuals[t]
		count++
	}
	k := s.NumParams()
	switch {
	case count > k:
		e.Variance = sse / float64(count-k)
	case count > 0:
		e.Variance = sse / float64(count)
	}
	return e
}

func (e *Estimate) descend(y []float64, opts Options) {
	n := float64(len(y))
	lr := opts.LearningRate
	vAR := make([]float64, len(e.AR))
	vMA := make([]float64, len(e.MA))
	bestAR := append([]float64(nil), e.AR...)
	bestMA := append([]float64(nil), e.MA...)
	best := math.Inf(1)
	stale := 0

	for iter := 0; iter < opts.MaxIter; iter++ {
		resid, _ := e.filter(y, e.Start)
		sse := sumSquares(resid[e.Start:])
		prevBest := best
		if sse < best {
			best = sse
			copy(bestAR, e.AR)
			copy(bestMA, e.MA)
			stale = 0
		} else {
			stale++
		}
		if opts.Patience > 0 && stale > opts.Patience {
			break
		}
		if iter > 0 && math.Abs(prevBest-sse) < opts.Tolerance {
			break
		}

		gAR := make([]float64, len(e.AR))
		gMA := make([]float64, len(e.MA))
		for t := e.Start; t < len(y); t++ {
			for i, l := range e.ARLags {
				if t-l >= 0 {
					gAR[i] -= 2 * resid[t] * (y[t-l] - e.Intercept)
				}
			}
			for i, l := range e.MALags {
				if t-l >= 0 {
					gMA[i] -= 2 * resid[t] * resid[t-l]
				}
			}
		}

		step := func(coef, velocity, grad []float64) {
			for i := range coef {
				velocity[i] = opts.Momentum*velocity[i] + lr*grad[i]/n
				coef[i] = clamp(coef[i]-velocity[i], opts.Bound)
			}
		}
		step(e.AR, vAR, gAR)
		step(e.MA, vMA, gMA)
		lr *= opts.Decay
	}

	if !math.IsInf(best, 1) {
		copy(e.AR, bestAR)
		copy(e.MA, bestMA)
	}
}

// filter runs the recursion over y. Residuals before start are left at
// zero and excluded from the MA terms of later steps.
func (e *Estimate) filter(y []float64, start int) (resid, fitted []float64) {
	resid = make([]float64, len(y))
	fitted = make([]float64, len(y))
	for t := range y {
		if t < start {
			fitted[t] = e.Intercept
			continue
		}
		fitted[t] = e.predictAt(y, resid, t, len(y))
		resid[t] = y[t] - fitted[t]
	}
	return resid, fitted
}

// predictAt forecasts y[t]; MA terms only use residuals before known.
func (e *Estimate) predictAt(y, resid []float64, t, known int) float64 {
	pred := e.Intercept
	for i, l := range e.ARLags {
		if t-l >= 0 {
			pred += e.AR[i] * (y[t-l] - e.Intercept)
		}
	}
	for i, l := range e.MALags {
		if t-l >= 0 && t-l < known {
			pred += e.MA[i] * resid[t-l]
		}
	}
	return pred
}

// Forecast extends y by steps values on the scale the recursion was fitted
// on. Future shocks are zero.
func (e *Estimate) Forecast(y []float64, steps int) []float64 {
	n := len(y)
	ext := make([]float64, n+steps)
	copy(ext, y)
	for t := n; t < n+steps; t++ {
		ext[t] = e.predictAt(ext, e.Residuals, t, n)
	}
	return ext[n:]
}

// Criteria computes the Gaussian log-likelihood and the information
// criteria from the residuals.
func (e *Estimate) Criteria() *stats.InformationCriteria {
	n := len(e.Residuals)
	// An exact fit has unbounded likelihood.
	logLik := math.Inf(1)
	if e.Variance > 0 {
		sse := sumSquares(e.Residuals)
		logLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(e.Variance) - sse/(2*e.Variance)
	}
	return stats.CalculateIC(logLik, n, e.NumParams())
}

// PsiWeights returns the first h coefficients of the MA(infinity)
// representation of the model on the undifferenced scale, where the series
// was differenced d times at lag 1 and sd times at lag m.
func (e *Estimate) PsiWeights(h, d, sd, m int) []float64 {
	// a(B) = (1 - sum AR_i B^l_i) (1-B)^d (1-B^m)^sd
	a := []float64{1}
	for i, l := range e.ARLags {
		a = grow(a, l)
		a[l] -= e.AR[i]
	}
	for range d {
		a = multiply(a, difference(1))
	}
	for range sd {
		a = multiply(a, difference(m))
	}

	c := make([]float64, h)
	if h > 0 {
		c[0] = 1
	}
	for i, l := range e.MALags {
		if l < h {
			c[l] += e.MA[i]
		}
	}

	psi := make([]float64, h)
	for j := range psi {
		psi[j] = c[j]
		for i := 1; i <= j && i < len(a); i++ {
			psi[j] -= a[i] * psi[j-i]
		}
	}
	return psi
}

func difference(lag int) []float64 {
	p := make([]float64, lag+1)
	p[0], p[lag] = 1, -1
	return p
}

func multiply(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func grow(a []float64, degree int) []float64 {
	for len(a) <= degree {
		a = append(a, 0)
	}
	return a
}

func sumSquares(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v * v
	}
	return s
}

func clamp(v, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, v))
}
