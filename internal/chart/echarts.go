package chart

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// 散点的 value 为 [margin, growth, cap|null, intercept, label]，悬浮文本放在 name 中。
// label 以 HTML 转义后的形式写入内联脚本，由 labelFormatter 还原后绘制。
const (
	labelFormatter   = `function (p) { var t = document.createElement('textarea'); t.innerHTML = p.value[4]; return t.value; }`
	tooltipFormatter = `function (p) { return p.seriesType === 'scatter' ? p.name : p.seriesName + ': ' + p.value[1].toFixed(2); }`
)

// PageTitle 为图表页面的 HTML 标题。
const PageTitle = "Rule of 40"

// Page 将 fig 渲染为独立的 ECharts HTML 页面。
func Page(fig Figure) ([]byte, error) {
	if len(fig.Scatter.Markers) == 0 {
		return nil, ErrNoRecords
	}
	scatter := buildScatter(fig)
	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart page: %w", err)
	}
	return buf.Bytes(), nil
}

func buildScatter(fig Figure) *charts.Scatter {
	l := fig.Layout
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       PageTitle,
			Theme:           types.ThemeChalk,
			Width:           fmt.Sprintf("%dpx", l.Width),
			Height:          fmt.Sprintf("%dpx", l.Height),
			BackgroundColor: l.PaperBackground,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(l.ShowLegend),
			TextStyle: &opts.TextStyle{Color: l.FontColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithGridOpts(opts.Grid{ContainLabel: opts.Bool(true), Left: "60", Bottom: "60"}),
		charts.WithXAxisOpts(valueXAxis(l.XAxis, l.FontColor)),
		charts.WithYAxisOpts(valueYAxis(l.YAxis, l.FontColor, l.PlotBackground)),
	)
	scatter.AddSeries(fig.Scatter.Name, scatterData(fig.Scatter.Markers),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: fig.Scatter.Color}),
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  "top",
			Color:     l.FontColor,
			Formatter: opts.FuncOpts(labelFormatter),
		}),
	)
	scatter.Overlap(buildFrontier(fig.Frontier))
	return scatter
}

func buildFrontier(s LineSeries) *charts.Line {
	line := charts.NewLine()
	data := make([]opts.LineData, 0, len(s.Points))
	for _, p := range s.Points {
		data = append(data, opts.LineData{Value: []float64{p.X, round(p.Y, 4)}})
	}
	dash := "solid"
	if s.Dash == "dash" {
		dash = "dashed"
	}
	line.AddSeries(s.Name, data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: 2, Type: dash}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

func scatterData(markers []Marker) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(markers))
	for _, m := range markers {
		var capValue any
		if m.MarketCap != nil {
			capValue = *m.MarketCap
		}
		data = append(data, opts.ScatterData{
			Name:       m.Hover,
			Value:      []any{m.X, m.Y, capValue, round(m.Intercept, 4), html.EscapeString(m.Label)},
			SymbolSize: int(math.Round(m.Size)),
		})
	}
	return data
}

func valueXAxis(a Axis, font string) opts.XAxis {
	return opts.XAxis{
		Type:         "value",
		Name:         a.Title,
		NameLocation: "middle",
		NameGap:      30,
		Min:          a.Min,
		Max:          a.Max,
		MinInterval:  a.Tick,
		MaxInterval:  a.Tick,
		AxisLabel:    &opts.AxisLabel{Color: font},
		AxisLine:     &opts.AxisLine{Show: opts.Bool(true), OnZero: opts.Bool(true), LineStyle: &opts.LineStyle{Color: a.ZeroLineColor}},
		SplitLine:    &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: a.GridColor}},
	}
}

// y 轴 splitArea 用来绘制绘图区背景，go-echarts 的 grid 没有背景色选项。
func valueYAxis(a Axis, font, plotBG string) opts.YAxis {
	return opts.YAxis{
		Type:         "value",
		Name:         a.Title,
		NameLocation: "middle",
		NameGap:      45,
		Min:          a.Min,
		Max:          a.Max,
		MinInterval:  a.Tick,
		MaxInterval:  a.Tick,
		AxisLabel:    &opts.AxisLabel{Color: font},
		AxisLine:     &opts.AxisLine{Show: opts.Bool(true), OnZero: opts.Bool(true), LineStyle: &opts.LineStyle{Color: a.ZeroLineColor}},
		SplitLine:    &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: a.GridColor}},
		SplitArea:    &opts.SplitArea{Show: opts.Bool(true), AreaStyle: &opts.AreaStyle{Color: plotBG}},
	}
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
