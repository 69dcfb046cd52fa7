package chart

import (
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"ruleforty/internal/company"
)

// HoverText 生成悬浮提示。提示按 HTML 展示，label 需要转义，
// 行之间用 "<br>" 分隔。
func HoverText(r company.Record, intercept float64) string {
	capText := "n/a"
	if c, ok := r.Cap(); ok {
		capText = fixed2(c) + "B"
	}
	var b strings.Builder
	b.WriteString(html.EscapeString(r.Label))
	b.WriteString("<br>Margin: ")
	b.WriteString(fixed2(r.Margin))
	b.WriteString("%<br>Growth: ")
	b.WriteString(fixed2(r.Growth))
	b.WriteString("%<br>Market Cap: ")
	b.WriteString(capText)
	b.WriteString("<br>Intercept: ")
	b.WriteString(fixed2(intercept))
	return b.String()
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
