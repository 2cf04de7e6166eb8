package timeseries

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,101
2020-01-03,102
2020-01-04,103
2020-01-05,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, 5, series.Len())
	assert.Equal(t, []string{"y"}, series.Components())
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, series.Column(0))
	assert.Equal(t, Daily, series.Freq())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), series.StartTime())
}

func TestLoadCSVWithFilter(t *testing.T) {
	csvData := `unique_id,ds,y
A,2020-01-01,100
B,2020-01-01,200
A,2020-01-02,101
B,2020-01-02,201
A,2020-01-03,102`

	opts := DefaultCSVOptions()
	opts.IDColumn = "unique_id"
	opts.IDFilter = "A"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 101, 102}, series.Column(0))
}

func TestLoadCSVWithNAValues(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,NA
2020-01-03,102
2020-01-04,NaN
2020-01-05,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	// NA and NaN rows are skipped
	assert.Equal(t, []float64{100, 102, 104}, series.Column(0))
	assert.Equal(t, Every(48*time.Hour), series.Freq())
}

func TestLoadCSVSelectedColumns(t *testing.T) {
	csvData := `ds,Beer,Cement,Gas
2020-01-01,100,200,50
2020-01-02,110,210,55
2020-01-03,120,220,60`

	opts := DefaultCSVOptions()
	opts.ValueColumns = []string{"Gas", "Cement"}

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"Gas", "Cement"}, series.Components())
	assert.Equal(t, []float64{50, 55, 60}, series.Column(0))
	assert.Equal(t, []float64{200, 210, 220}, series.Column(1))
}

func TestLoadCSVAllColumns(t *testing.T) {
	csvData := `date,Beer,Cement
2020-01-01,100,200
2020-02-01,110,210
2020-03-01,120,220`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Beer", "Cement"}, series.Components())
	assert.Equal(t, Monthly(1), series.Freq())
}

func TestLoadCSVUnknownColumn(t *testing.T) {
	opts := DefaultCSVOptions()
	opts.ValueColumns = []string{"missing"}

	_, err := LoadCSVFromReader(strings.NewReader("ds,y\n2020-01-01,1\n"), opts)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestLoadCSVQuotedFields(t *testing.T) {
	csvData := `"unique_id","ds","y"
"Australia","2020-01-01","1000000"
"Australia","2020-01-02","1000100"
"Australia","2020-01-03","1000200"`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
}

func TestLoadCSVDateFormats(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
	}{
		{
			"ISO format",
			"ds,y\n2020-01-01,100\n2020-01-02,101",
		},
		{
			"Year only",
			"ds,y\n2020,100\n2021,101",
		},
		{
			"RFC3339",
			"ds,y\n2020-01-01T00:00:00Z,100\n2020-01-01T01:00:00Z,101",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := LoadCSVFromReader(strings.NewReader(tc.csvData), DefaultCSVOptions())
			require.NoError(t, err)
			assert.Equal(t, 2, series.Len())
		})
	}
}

func TestLoadCSVBadDate(t *testing.T) {
	_, err := LoadCSVFromReader(strings.NewReader("ds,y\nyesterday,1\n"), DefaultCSVOptions())
	assert.Error(t, err)
}

func TestLoadCSVNoDateColumn(t *testing.T) {
	series, err := LoadCSVFromReader(strings.NewReader("y\n1\n2\n3\n"), DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, series.Column(0))
	assert.Equal(t, Every(time.Hour), series.Freq())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	times := DailyFrom(start, 3).Times()
	original, err := NewMultivariate(times, [][]float64{{1, 2, 3}, {0.5, 0.25, 0.125}}, []string{"a", "b"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, original))

	loaded, err := LoadCSVFromReader(&buf, DefaultCSVOptions())
	require.NoError(t, err)
	assert.True(t, original.Equal(loaded), "got %s", loaded)
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := DefaultCSVOptions()

	assert.Empty(t, opts.ValueColumns)
	assert.Equal(t, "2006-01-02", opts.DateFormat)
	assert.True(t, opts.HasHeader)
	assert.Equal(t, ',', opts.Delimiter)
}
