package app

import (
	"fmt"
	"strings"

	"ruleforty/internal/company"
	"ruleforty/internal/config"
	"ruleforty/internal/frontier"
	"ruleforty/internal/reader"
)

type StartupSummary struct {
	HTTP     HTTPSummary
	Data     DataSummary
	Reader   ReaderSummary
	Sessions SessionSummary
}

type HTTPSummary struct {
	Addr        string
	MetricsPath string // 空表示未启用
	ExportPNG   bool
}

type DataSummary struct {
	Companies        int
	Labels           []string
	FrontierMax      float64
	AverageIntercept float64
}

type ReaderSummary struct {
	Locale   string
	Chapters []string
	Bounds   reader.HeightBounds
}

type SessionSummary struct {
	MaxSessions    int
	IdleTTLMinutes int
}

func newStartupSummary(cfg *config.Config, seed []company.Record, rd *reader.Reader) *StartupSummary {
	s := &StartupSummary{
		HTTP: HTTPSummary{
			Addr:      cfg.App.HTTPAddr,
			ExportPNG: cfg.Chart.ExportEnabled,
		},
		Sessions: SessionSummary{
			MaxSessions:    cfg.Session.MaxSessions,
			IdleTTLMinutes: cfg.Session.IdleTTLMinutes,
		},
		Reader: ReaderSummary{
			Locale: rd.Locale(),
			Bounds: rd.Bounds(),
		},
	}
	if cfg.Metrics.Enabled {
		s.HTTP.MetricsPath = cfg.Metrics.Path
	}
	s.Data.Companies = len(seed)
	for _, r := range seed {
		s.Data.Labels = append(s.Data.Labels, r.Label)
	}
	line := frontier.DefaultLine()
	if pts, err := frontier.ComputeLine(seed, line); err == nil && len(pts) > 0 {
		s.Data.FrontierMax = pts[len(pts)-1].X
	}
	if avg, err := frontier.AverageIntercept(seed, line); err == nil {
		s.Data.AverageIntercept = avg
	}
	for i := 0; i < rd.Len(); i++ {
		s.Reader.Chapters = append(s.Reader.Chapters, rd.Content(i).Title)
	}
	return s
}

// String 渲染启动摘要，交给 logger.InfoBlock 逐行输出。
func (s *StartupSummary) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	line := strings.Repeat("=", 80)
	title := "启动配置摘要 (STARTUP SUMMARY)"
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "%*s\n", 40+len(title)/2, title)
	b.WriteString(line + "\n")

	b.WriteString("[HTTP 服务 (HTTP)]\n")
	fmt.Fprintf(&b, "  监听地址: %s\n", s.HTTP.Addr)
	fmt.Fprintf(&b, "  Metrics: %s\n", orDash(s.HTTP.MetricsPath))
	fmt.Fprintf(&b, "  PNG 导出: %t\n", s.HTTP.ExportPNG)
	b.WriteString("\n")

	b.WriteString("[初始数据 (SEED DATA)]\n")
	fmt.Fprintf(&b, "  公司数量: %d\n", s.Data.Companies)
	fmt.Fprintf(&b, "  公司列表: %s\n", formatList(s.Data.Labels))
	fmt.Fprintf(&b, "  前沿线横轴上限: %.0f\n", s.Data.FrontierMax)
	fmt.Fprintf(&b, "  平均截距: %.2f\n", s.Data.AverageIntercept)
	b.WriteString("\n")

	b.WriteString("[阅读面板 (READER)]\n")
	fmt.Fprintf(&b, "  语言: %s\n", s.Reader.Locale)
	fmt.Fprintf(&b, "  高度: 默认 %dpx，范围 [%d,%d]，步长 %d\n",
		s.Reader.Bounds.Default, s.Reader.Bounds.Min, s.Reader.Bounds.Max, s.Reader.Bounds.Step)
	if len(s.Reader.Chapters) == 0 {
		b.WriteString("  (无章节)\n")
	}
	for i, title := range s.Reader.Chapters {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, title)
	}
	b.WriteString("\n")

	b.WriteString("[会话 (SESSIONS)]\n")
	fmt.Fprintf(&b, "  最大会话数: %d\n", s.Sessions.MaxSessions)
	fmt.Fprintf(&b, "  空闲过期: %d 分钟\n", s.Sessions.IdleTTLMinutes)
	b.WriteString(line)
	return b.String()
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
