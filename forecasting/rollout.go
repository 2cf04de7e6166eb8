package forecasting

import (
	"fmt"

	"github.com/sartorproj/goforecast/timeseries"
)

// Step produces the next native forecast chunk. Each call continues
// where the previous one ended.
type Step func() (*timeseries.Series, error)

// Rollout builds an n-step forecast out of native calls of outputLength
// rows.
//
// With outputLength 0 a single call is expected to return at least n
// rows. Otherwise, when full is set, ceil(n/outputLength) calls are
// concatenated and trimmed to n; when it is not, one call is made and an
// n larger than outputLength fails with ErrHorizonExceeded.
func Rollout(n, outputLength int, full bool, step Step) (*timeseries.Series, error) {
	if n < 1 {
		return nil, fmt.Errorf("forecast horizon %d: %w", n, ErrConfiguration)
	}

	calls := 1
	switch {
	case outputLength <= 0:
	case full:
		calls = (n + outputLength - 1) / outputLength
	case n > outputLength:
		return nil, fmt.Errorf("%d steps with output length %d: %w", n, outputLength, ErrHorizonExceeded)
	}

	var out *timeseries.Series
	for i := 0; i < calls; i++ {
		chunk, err := step()
		if err != nil {
			return nil, err
		}
		if outputLength > 0 && chunk.Len() != outputLength {
			return nil, fmt.Errorf("native call returned %d rows, expected %d: %w",
				chunk.Len(), outputLength, ErrDimensionMismatch)
		}
		if out == nil {
			out = chunk
			continue
		}
		if out, err = out.Append(chunk); err != nil {
			return nil, err
		}
	}

	if out.Len() < n {
		return nil, fmt.Errorf("forecast has %d rows, expected %d: %w", out.Len(), n, ErrDimensionMismatch)
	}
	return out.Slice(0, n)
}
