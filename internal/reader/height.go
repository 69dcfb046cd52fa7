package reader

import (
	"fmt"
	"strings"
)

const (
	LocaleZH = "zh"
	LocaleEN = "en"
)

// HeightBounds 为面板高度滑块的范围（像素）。
type HeightBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

func DefaultBounds() HeightBounds {
	return HeightBounds{Min: 300, Max: 1000, Step: 50, Default: 600}
}

func (b HeightBounds) normalized() HeightBounds {
	d := DefaultBounds()
	if b.Step <= 0 {
		b.Step = d.Step
	}
	if b.Min <= 0 {
		b.Min = d.Min
	}
	if b.Max <= 0 {
		b.Max = d.Max
	}
	if b.Max < b.Min {
		b.Max = b.Min
	}
	if b.Default <= 0 {
		b.Default = d.Default
	}
	if b.Default < b.Min {
		b.Default = b.Min
	}
	if b.Default > b.Max {
		b.Default = b.Max
	}
	return b
}

// NormalizeLocale 将语言标签归一为 LocaleZH 或 LocaleEN。
func NormalizeLocale(locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en", "en-us", "en_us":
		return LocaleEN
	default:
		return LocaleZH
	}
}

func (r *Reader) Bounds() HeightBounds { return r.bounds }

// ClampHeight 将 px 限制在范围内并对齐到最近的步长。
func (r *Reader) ClampHeight(px int) int {
	b := r.bounds
	if px <= b.Min {
		return b.Min
	}
	if px >= b.Max {
		return b.Max
	}
	steps := (px - b.Min + b.Step/2) / b.Step
	v := b.Min + steps*b.Step
	if v > b.Max {
		v = b.Max
	}
	return v
}

// HeightLabel 为滑块旁的高度提示。
func (r *Reader) HeightLabel(px int) string {
	if r.locale == LocaleEN {
		return fmt.Sprintf("current height: %dpx", px)
	}
	return fmt.Sprintf("目前高度：%dpx", px)
}

// MaxHeightStyle 为章节面板的 CSS。
func MaxHeightStyle(px int) string {
	return fmt.Sprintf("max-height: %dpx", px)
}
