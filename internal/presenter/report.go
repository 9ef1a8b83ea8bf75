// Package presenter turns a forecast into the window's report text and chart.
package presenter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"weathercast/internal/models"
)

// TimeLayout renders series timestamps in UTC with an explicit offset.
const TimeLayout = "2006-01-02 15:04:05-07:00"

// FormatReport renders location metadata, the current reading, and the full
// hourly and daily tables in input order.
func FormatReport(f *models.Forecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Coordinates: %s°N %s°E\n", coordinate(f.Lat), coordinate(f.Lon))
	fmt.Fprintf(&b, "Elevation: %.1f m asl\n", f.Elevation)
	fmt.Fprintf(&b, "Timezone: %s %s\n", f.Timezone, f.TimezoneAbbreviation)
	fmt.Fprintf(&b, "Timezone difference to GMT+0: %d s\n\n", f.UTCOffsetSeconds)

	fmt.Fprintf(&b, "Current time: %d\n", f.Current.Time.Unix())
	fmt.Fprintf(&b, "Current temperature: %s °C\n\n", temperature(f.Current.Temperature))

	b.WriteString("\nHourly Temperature Data\n\n")
	hourly := make([][]string, 0, len(f.Hourly))
	for _, h := range f.Hourly {
		hourly = append(hourly, []string{timestamp(h.Time), temperature(h.Temperature)})
	}
	writeTable(&b, []string{"date", "temperature_2m"}, hourly)
	b.WriteString("\n")

	b.WriteString("Daily Temperature Data\n\n")
	daily := make([][]string, 0, len(f.ForecastData))
	for _, d := range f.ForecastData {
		date := ""
		if d.Date != nil {
			date = timestamp(*d.Date)
		}
		daily = append(daily, []string{date, temperature(d.TempMax), temperature(d.TempMin)})
	}
	writeTable(&b, []string{"date", "temperature_2m_max", "temperature_2m_min"}, daily)

	return b.String()
}

// writeTable prints a borderless, right-aligned table without trailing
// blanks.
func writeTable(w io.Writer, header []string, rows [][]string) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding(" ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()

	// tablewriter pads after every cell, the last one included
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func coordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func temperature(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
