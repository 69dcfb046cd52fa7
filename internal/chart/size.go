package chart

import (
	"math"

	"ruleforty/internal/company"
)

const (
	// MaxMarkerDiameter 为最大公司的点直径。
	MaxMarkerDiameter = 80.0
	// MinMarkerDiameter 保证小市值或缺失市值的点仍可悬浮查看。
	MinMarkerDiameter = 5.0
)

// SizeRef 为面积比例 2*max(cap)/MaxMarkerDiameter^2，缺失的市值不参与计算。
// 返回 0 表示所有点都按最小尺寸绘制。
func SizeRef(records []company.Record) float64 {
	var maxCap float64
	for _, r := range records {
		if c, ok := r.Cap(); ok && c > maxCap {
			maxCap = c
		}
	}
	if maxCap <= 0 {
		return 0
	}
	return 2 * maxCap / (MaxMarkerDiameter * MaxMarkerDiameter)
}

// MarkerSize 返回点的直径：max(MinMarkerDiameter, sqrt(cap/ref))。
func MarkerSize(marketCap *float64, ref float64) float64 {
	if marketCap == nil || ref <= 0 || *marketCap <= 0 {
		return MinMarkerDiameter
	}
	return math.Max(MinMarkerDiameter, math.Sqrt(*marketCap/ref))
}
