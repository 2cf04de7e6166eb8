// Package fft implements a forecasting model based on the discrete Fourier
// transform.
//
// The training series is optionally detrended, transformed with gonum's
// real FFT, reduced to its strongest frequencies and transformed back. The
// filtered signal is periodic in the training length, so it is continued
// past the end of the series and the trend is added back.
//
// The model suits series whose seasonality is long relative to their
// length, or which combine several seasonal periods.
package fft
