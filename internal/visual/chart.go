// Package visual turns tag frequencies into chart and word cloud models
// that the server templates render as HTML.
package visual

import (
	"math"

	"github.com/TobiSchelling/faktajouren/internal/tags"
)

// DefaultChartLimit is the number of bars shown when no limit is given.
const DefaultChartLimit = 20

// Bar is one horizontal bar. Percent is relative to the longest bar.
type Bar struct {
	Tag     string  `json:"tag"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Chart is a horizontal bar chart, longest bar first.
type Chart struct {
	Title string `json:"title"`
	Bars  []Bar  `json:"bars"`
}

// BarChart builds a chart of the limit most frequent tags.
func BarChart(title string, freq tags.Frequencies, limit int) Chart {
	if limit <= 0 {
		limit = DefaultChartLimit
	}
	entries := freq.Top(limit)
	chart := Chart{Title: title, Bars: make([]Bar, 0, len(entries))}
	if len(entries) == 0 {
		return chart
	}

	longest := float64(entries[0].Count)
	for _, e := range entries {
		chart.Bars = append(chart.Bars, Bar{
			Tag:     e.Tag,
			Count:   e.Count,
			Percent: round1(float64(e.Count) / longest * 100),
		})
	}
	return chart
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
