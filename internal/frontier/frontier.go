// Package frontier 计算 40 法则参考线。
package frontier

import (
	"errors"
	"math"

	"ruleforty/internal/company"
)

const (
	// Slope 为每个利润率百分点对应的增长率变化。
	Slope = -41.0 / 39.0
	// Intercept 为利润率为 0 时的增长率。
	Intercept = 40.0
	// Padding 为采样范围超出最大利润率的部分。
	Padding = 5
	// MaxUpper 限制采样点数量，与 company.MaxAbsPercent 对应。
	MaxUpper = int(company.MaxAbsPercent) + Padding
)

var ErrNoRecords = errors.New("frontier: no records")

// Line 表示 y = Slope*x + Intercept。
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Point 为参考线上的一个采样点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultLine 返回固定的参考线。
func DefaultLine() Line {
	return Line{Slope: Slope, Intercept: Intercept}
}

// At 计算 x 处的取值。
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// ComputeLine 在 [0, ceil(最大利润率)+Padding] 的每个整数 x 上采样 l。
// 上界为负时只返回 x=0，上界最多为 MaxUpper。
func ComputeLine(records []company.Record, l Line) ([]Point, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	maxMargin := records[0].Margin
	for _, r := range records[1:] {
		if r.Margin > maxMargin {
			maxMargin = r.Margin
		}
	}
	upper := MaxUpper
	if bound := math.Ceil(maxMargin) + Padding; bound < float64(MaxUpper) {
		upper = int(bound)
	}
	if upper < 0 {
		upper = 0
	}
	pts := make([]Point, 0, upper+1)
	for x := 0; x <= upper; x++ {
		fx := float64(x)
		pts = append(pts, Point{X: fx, Y: l.At(fx)})
	}
	return pts, nil
}

// PerPointIntercept 为经过该记录且平行于参考线的直线截距。
func PerPointIntercept(r company.Record, l Line) float64 {
	return r.Growth - l.Slope*r.Margin
}

// Above 判断记录是否位于 l 之上（含线上）。
func Above(r company.Record, l Line) bool {
	return PerPointIntercept(r, l) >= l.Intercept
}

// AverageIntercept 为所有记录截距的平均值。
func AverageIntercept(records []company.Record, l Line) (float64, error) {
	if len(records) == 0 {
		return 0, ErrNoRecords
	}
	var sum float64
	for _, r := range records {
		sum += PerPointIntercept(r, l)
	}
	return sum / float64(len(records)), nil
}
