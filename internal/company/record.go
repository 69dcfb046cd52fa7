// Package company 定义公司记录模型与内置的初始数据。
package company

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrEmptyLabel       = errors.New("company: label is empty")
	ErrMissingMargin    = errors.New("company: margin is missing")
	ErrMissingGrowth    = errors.New("company: growth is missing")
	ErrInvalidMarketCap = errors.New("company: market cap must be a finite number >= 0")
	ErrInvalidMargin    = errors.New("company: margin is out of range")
	ErrInvalidGrowth    = errors.New("company: growth is out of range")
)

// MaxAbsPercent 是利润率与增长率允许的最大绝对值（百分比）。
// 前沿线的采样长度取决于最大利润率，超出该范围的输入按无效输入处理。
const MaxAbsPercent = 1e5

// Record 是散点图上的一个点。MarketCap 单位为十亿，可以为空。
type Record struct {
	Label     string   `json:"label" yaml:"label"`
	Margin    float64  `json:"margin" yaml:"margin"`
	Growth    float64  `json:"growth" yaml:"growth"`
	MarketCap *float64 `json:"market_cap" yaml:"market_cap"`
}

// Cap 返回市值以及是否存在。
func (r Record) Cap() (float64, bool) {
	if r.MarketCap == nil {
		return 0, false
	}
	return *r.MarketCap, true
}

// Validate 校验完整记录。
func (r Record) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if !finite(r.Margin) {
		return ErrMissingMargin
	}
	if math.Abs(r.Margin) > MaxAbsPercent {
		return ErrInvalidMargin
	}
	if !finite(r.Growth) {
		return ErrMissingGrowth
	}
	if math.Abs(r.Growth) > MaxAbsPercent {
		return ErrInvalidGrowth
	}
	if r.MarketCap != nil && (!finite(*r.MarketCap) || *r.MarketCap < 0) {
		return ErrInvalidMarketCap
	}
	return nil
}

// Draft 是校验前的提交内容，nil 指针表示字段缺失。
type Draft struct {
	Label     string
	Margin    *float64
	Growth    *float64
	MarketCap *float64
}

// Build 校验 draft 并返回对应的记录。
func (d Draft) Build() (Record, error) {
	label := strings.TrimSpace(d.Label)
	if label == "" {
		return Record{}, ErrEmptyLabel
	}
	if d.Margin == nil || !finite(*d.Margin) {
		return Record{}, ErrMissingMargin
	}
	if d.Growth == nil || !finite(*d.Growth) {
		return Record{}, ErrMissingGrowth
	}
	rec := Record{Label: label, Margin: *d.Margin, Growth: *d.Growth}
	if d.MarketCap != nil {
		v := *d.MarketCap
		rec.MarketCap = &v
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Clone 深拷贝切片及市值指针，调用方无法修改共享状态。
func Clone(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r
		if r.MarketCap != nil {
			v := *r.MarketCap
			out[i].MarketCap = &v
		}
	}
	return out
}

// Float 返回 v 的指针。
func Float(v float64) *float64 { return &v }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
