package presenter

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathercast/internal/models"
)

func syntheticForecast() *models.Forecast {
	day := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)

	return &models.Forecast{
		RepositoryName:       "open-meteo",
		Lat:                  51.5,
		Lon:                  -0.12,
		Elevation:            23,
		Timezone:             "Europe/London",
		TimezoneAbbreviation: "BST",
		UTCOffsetSeconds:     3600,
		ForecastWindow:       1,
		Current: models.CurrentData{
			Time:        time.Unix(1753448400, 0).UTC(),
			Temperature: 21.7,
		},
		Hourly: []models.HourlyData{
			{Time: day, Temperature: 15.2},
			{Time: day.Add(time.Hour), Temperature: 14.6},
			{Time: day.Add(2 * time.Hour), Temperature: 14.1},
		},
		ForecastData: []models.WeatherData{
			{Date: &day, TempMax: 24.3, TempMin: 13.8},
		},
	}
}

// lineWith returns the index and text of the first line containing needle.
func lineWith(t *testing.T, lines []string, needle string) (int, string) {
	t.Helper()

	for i, line := range lines {
		if strings.Contains(line, needle) {
			return i, line
		}
	}
	t.Fatalf("no line contains %q", needle)
	return -1, ""
}

func TestFormatReport_Header(t *testing.T) {
	report := FormatReport(syntheticForecast())

	assert.True(t, strings.HasPrefix(report,
		"Coordinates: 51.5°N -0.12°E\n"+
			"Elevation: 23.0 m asl\n"+
			"Timezone: Europe/London BST\n"+
			"Timezone difference to GMT+0: 3600 s\n\n"+
			"Current time: 1753448400\n"+
			"Current temperature: 21.7 °C\n\n"+
			"\nHourly Temperature Data\n\n"), report)
}

func TestFormatReport_TablesInInputOrder(t *testing.T) {
	report := FormatReport(syntheticForecast())
	lines := strings.Split(report, "\n")

	hourlyTitle, _ := lineWith(t, lines, "Hourly Temperature Data")
	dailyTitle, _ := lineWith(t, lines, "Daily Temperature Data")
	require.Less(t, hourlyTitle, dailyTitle)

	header, headerLine := lineWith(t, lines, "temperature_2m")
	assert.Contains(t, headerLine, "date")
	assert.Greater(t, header, hourlyTitle)

	rows := []struct {
		stamp string
		temp  string
	}{
		{"2025-07-25 00:00:00+00:00", "15.2"},
		{"2025-07-25 01:00:00+00:00", "14.6"},
		{"2025-07-25 02:00:00+00:00", "14.1"},
	}

	prev := header
	for _, row := range rows {
		i, line := lineWith(t, lines, row.stamp)
		assert.Greater(t, i, prev, "row %s out of order", row.stamp)
		assert.Less(t, i, dailyTitle, "row %s outside the hourly table", row.stamp)
		assert.Equal(t, strings.Fields(row.stamp+" "+row.temp), strings.Fields(line))
		prev = i
	}

	dailyHeader, dailyHeaderLine := lineWith(t, lines, "temperature_2m_max")
	assert.Greater(t, dailyHeader, dailyTitle)
	assert.Contains(t, dailyHeaderLine, "temperature_2m_min")

	// the daily row repeats the first hourly timestamp, so search after the header
	var dailyRow string
	for _, line := range lines[dailyHeader+1:] {
		if strings.Contains(line, "2025-07-25 00:00:00+00:00") {
			dailyRow = line
			break
		}
	}
	assert.Equal(t, []string{"2025-07-25", "00:00:00+00:00", "24.3", "13.8"}, strings.Fields(dailyRow))
}

func TestFormatReport_Golden(t *testing.T) {
	want := `Coordinates: 51.5°N -0.12°E
Elevation: 23.0 m asl
Timezone: Europe/London BST
Timezone difference to GMT+0: 3600 s

Current time: 1753448400
Current temperature: 21.7 °C


Hourly Temperature Data

                     date temperature_2m
2025-07-25 00:00:00+00:00           15.2
2025-07-25 01:00:00+00:00           14.6
2025-07-25 02:00:00+00:00           14.1

Daily Temperature Data

                     date temperature_2m_max temperature_2m_min
2025-07-25 00:00:00+00:00               24.3               13.8
`

	assert.Equal(t, want, FormatReport(syntheticForecast()))
}

func TestFormatReport_NoTrailingBlanks(t *testing.T) {
	for _, line := range strings.Split(FormatReport(syntheticForecast()), "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line)
	}
}

func TestFormatReport_NullReading(t *testing.T) {
	f := syntheticForecast()
	f.Hourly[1].Temperature = math.NaN()

	report := FormatReport(f)
	_, line := lineWith(t, strings.Split(report, "\n"), "2025-07-25 01:00:00+00:00")
	assert.Contains(t, line, "NaN")
}

func TestFormatReport_EmptySeries(t *testing.T) {
	f := syntheticForecast()
	f.Hourly = nil
	f.ForecastData = nil

	report := FormatReport(f)
	assert.Contains(t, report, "Hourly Temperature Data")
	assert.Contains(t, report, "Daily Temperature Data")
	assert.NotContains(t, report, "2025-07-25")
}

func TestRenderChart(t *testing.T) {
	svg, err := RenderChart(syntheticForecast(), ChartOptions{Width: 800, Height: 400})
	require.NoError(t, err)

	out := string(svg)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"), "expected an SVG document")
	assert.Contains(t, out, "Hourly Temperature Data")
	assert.Contains(t, out, "Time")
	assert.Contains(t, out, "Temperature")
	assert.Contains(t, out, "</svg>")
}

func TestRenderChart_FlatSeries(t *testing.T) {
	f := syntheticForecast()
	for i := range f.Hourly {
		f.Hourly[i].Temperature = 10
	}

	_, err := RenderChart(f, ChartOptions{Width: 800, Height: 400})
	assert.NoError(t, err)
}

func TestRenderChart_NotEnoughPoints(t *testing.T) {
	f := syntheticForecast()
	f.Hourly[1].Temperature = math.NaN()
	f.Hourly[2].Temperature = math.NaN()

	_, err := RenderChart(f, ChartOptions{Width: 800, Height: 400})
	assert.ErrorIs(t, err, ErrNotEnoughPoints)
}
