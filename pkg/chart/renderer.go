package chart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"riverwatch/pkg/station"
)

// ErrTooFewSamples is returned when the window does not yet hold enough
// water level points to draw a line.
var ErrTooFewSamples = errors.New("chart: need at least two water level samples")

var (
	levelColor    = drawing.ColorFromHex("2E86AB")
	rainColor     = drawing.ColorFromHex("5FA8D3")
	warningColor  = drawing.ColorFromHex("F18F01")
	criticalColor = drawing.ColorFromHex("C73E1D")
)

// Renderer draws a station's window as a PNG time series chart: water level
// on the primary axis, rainfall on the secondary one, warning and critical
// thresholds as dashed horizontal lines when the station defines them.
type Renderer struct {
	dir string
}

// NewRenderer writes charts into dir, creating it on first use.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render draws the chart and returns the path of the written file. The file
// name is stable per station so successive cycles overwrite the previous
// chart rather than accumulating images.
func (r *Renderer) Render(meta station.Meta, records []station.Record) (string, error) {
	times, levels := levelSeries(records)
	if len(levels) < 2 {
		return "", ErrTooFewSamples
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Water level (m)",
			Style: chart.Style{
				StrokeColor: levelColor,
				StrokeWidth: 2,
				FillColor:   levelColor.WithAlpha(60),
			},
			XValues: times,
			YValues: levels,
		},
	}

	if rainTimes, rain := rainSeries(records); len(rain) >= 2 {
		series = append(series, chart.TimeSeries{
			Name:    "Rainfall (mm)",
			YAxis:   chart.YAxisSecondary,
			Style:   chart.Style{StrokeColor: rainColor, StrokeWidth: 1.5},
			XValues: rainTimes,
			YValues: rain,
		})
	}

	series = appendThreshold(series, "Warning", meta.WarningLevel, warningColor, times)
	series = appendThreshold(series, "Critical", meta.CriticalLevel, criticalColor, times)

	graph := chart.Chart{
		Title:  meta.Title(),
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02 Jan 15:04"),
		},
		YAxis: chart.YAxis{
			Name: "Water level (m)",
		},
		YAxisSecondary: chart.YAxis{
			Name: "Rainfall (mm)",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render chart for station %s: %w", meta.Code, err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart directory: %w", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("station_%s.png", meta.Code))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

func levelSeries(records []station.Record) ([]time.Time, []float64) {
	times := make([]time.Time, 0, len(records))
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.WaterLevel == nil {
			continue
		}
		times = append(times, rec.Time)
		values = append(values, *rec.WaterLevel)
	}
	return times, values
}

func rainSeries(records []station.Record) ([]time.Time, []float64) {
	times := make([]time.Time, 0, len(records))
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.Rainfall == nil {
			continue
		}
		times = append(times, rec.Time)
		values = append(values, *rec.Rainfall)
	}
	return times, values
}

// appendThreshold adds a dashed constant line spanning the charted time
// range, when the station defines the level.
func appendThreshold(series []chart.Series, name string, level *float64, color drawing.Color, times []time.Time) []chart.Series {
	if level == nil || len(times) < 2 {
		return series
	}
	return append(series, chart.TimeSeries{
		Name: fmt.Sprintf("%s (%.2f m)", name, *level),
		Style: chart.Style{
			StrokeColor:     color,
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5, 5},
		},
		XValues: []time.Time{times[0], times[len(times)-1]},
		YValues: []float64{*level, *level},
	})
}
