// Package chart 将公司记录转换为图表描述并负责渲染。
package chart

import (
	"errors"

	"ruleforty/internal/company"
	"ruleforty/internal/frontier"
)

var ErrNoRecords = errors.New("chart: no records")

const (
	colorPlotBackground  = "#333333"
	colorPaperBackground = "#222222"
	colorGrid            = "#444444"
	colorZeroLine        = "#666666"
	colorFont            = "#f0f0f0"
	colorMarker          = "cyan"
	colorFrontier        = "red"

	figureWidthPx  = 1600
	figureHeightPx = 600

	companiesSeries = "Companies"
	frontierSeries  = "Rule of 40 Frontier"
)

// Marker 为散点序列中的一家公司。
type Marker struct {
	Label     string   `json:"label"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	MarketCap *float64 `json:"market_cap"`
	Intercept float64  `json:"intercept"`
	Above     bool     `json:"above"`
	Size      float64  `json:"size"`
	Hover     string   `json:"hover"`
}

type ScatterSeries struct {
	Name         string   `json:"name"`
	Color        string   `json:"color"`
	TextPosition string   `json:"text_position"`
	SizeRef      float64  `json:"size_ref"`
	Markers      []Marker `json:"markers"`
}

type LineSeries struct {
	Name   string           `json:"name"`
	Color  string           `json:"color"`
	Dash   string           `json:"dash"`
	Line   frontier.Line    `json:"line"`
	Points []frontier.Point `json:"points"`
}

type Axis struct {
	Title         string  `json:"title"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Tick          float64 `json:"tick"`
	GridColor     string  `json:"grid_color"`
	ZeroLineColor string  `json:"zero_line_color"`
}

type Layout struct {
	XAxis           Axis   `json:"x_axis"`
	YAxis           Axis   `json:"y_axis"`
	PlotBackground  string `json:"plot_bg"`
	PaperBackground string `json:"paper_bg"`
	FontColor       string `json:"font_color"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	ShowLegend      bool   `json:"show_legend"`
}

// Figure 是与渲染方式无关的图表描述。
type Figure struct {
	Scatter  ScatterSeries `json:"scatter"`
	Frontier LineSeries    `json:"frontier"`
	Layout   Layout        `json:"layout"`
}

// Render 根据记录与参考线采样点构建图表，无副作用。
func Render(records []company.Record, line frontier.Line, samples []frontier.Point) (Figure, error) {
	if len(records) == 0 {
		return Figure{}, ErrNoRecords
	}
	ref := SizeRef(records)
	markers := make([]Marker, 0, len(records))
	for _, r := range records {
		b := frontier.PerPointIntercept(r, line)
		m := Marker{
			Label:     r.Label,
			X:         r.Margin,
			Y:         r.Growth,
			Intercept: b,
			Above:     b >= line.Intercept,
			Size:      MarkerSize(r.MarketCap, ref),
			Hover:     HoverText(r, b),
		}
		if r.MarketCap != nil {
			v := *r.MarketCap
			m.MarketCap = &v
		}
		markers = append(markers, m)
	}
	pts := make([]frontier.Point, len(samples))
	copy(pts, samples)

	return Figure{
		Scatter: ScatterSeries{
			Name:         companiesSeries,
			Color:        colorMarker,
			TextPosition: "top center",
			SizeRef:      ref,
			Markers:      markers,
		},
		Frontier: LineSeries{
			Name:   frontierSeries,
			Color:  colorFrontier,
			Dash:   "dash",
			Line:   line,
			Points: pts,
		},
		Layout: defaultLayout(),
	}, nil
}

func defaultLayout() Layout {
	return Layout{
		XAxis: Axis{
			Title:         "Adjusted Operating Margin (%)",
			Min:           0,
			Max:           75,
			Tick:          10,
			GridColor:     colorGrid,
			ZeroLineColor: colorZeroLine,
		},
		YAxis: Axis{
			Title:         "YoY Revenue Growth (%)",
			Min:           0,
			Max:           145,
			Tick:          10,
			GridColor:     colorGrid,
			ZeroLineColor: colorZeroLine,
		},
		PlotBackground:  colorPlotBackground,
		PaperBackground: colorPaperBackground,
		FontColor:       colorFont,
		Width:           figureWidthPx,
		Height:          figureHeightPx,
		ShowLegend:      true,
	}
}
