// Package dashboard 将用户事件作用到会话状态，并重新计算受影响的视图。
package dashboard

import (
	"errors"
	"fmt"
	"strconv"

	"ruleforty/internal/chart"
	"ruleforty/internal/company"
	"ruleforty/internal/frontier"
	"ruleforty/internal/logger"
	"ruleforty/internal/metrics"
	"ruleforty/internal/pkg/text"
	"ruleforty/internal/reader"
	"ruleforty/internal/session"
)

// 提交结果，同时用于 metrics 与 JSON API。
const (
	ReasonAccepted         = "accepted"
	ReasonEmptyLabel       = "empty_label"
	ReasonMissingMargin    = "missing_margin"
	ReasonMissingGrowth    = "missing_growth"
	ReasonInvalidMarketCap = "invalid_market_cap"
	ReasonInvalidMargin    = "invalid_margin"
	ReasonInvalidGrowth    = "invalid_growth"
	ReasonNoClick          = "no_click"
	ReasonMalformed        = "malformed"
)

// ClickEvent 携带按钮的点击计数。
type ClickEvent struct {
	Clicks int
}

type SubmitResult struct {
	Accepted bool             `json:"accepted"`
	Reason   string           `json:"reason,omitempty"`
	Records  []company.Record `json:"records"`
	Figure   chart.Figure     `json:"figure"`
}

type ChapterView struct {
	Moved   bool           `json:"moved"`
	Chapter reader.Chapter `json:"chapter"`
	Total   int            `json:"total"`
}

type PanelView struct {
	Height int    `json:"height"`
	Style  string `json:"style"`
	Label  string `json:"label"`
}

// PageView 包含首屏渲染需要的全部内容。
type PageView struct {
	Locale  string              `json:"locale"`
	Records []company.Record    `json:"records"`
	Figure  chart.Figure        `json:"figure"`
	Chapter ChapterView         `json:"chapter"`
	Panel   PanelView           `json:"panel"`
	Bounds  reader.HeightBounds `json:"bounds"`
}

// Dashboard 持有所有会话共享的只读依赖。
type Dashboard struct {
	reader  *reader.Reader
	line    frontier.Line
	metrics metrics.Recorder
}

func New(r *reader.Reader, rec metrics.Recorder) *Dashboard {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Dashboard{reader: r, line: frontier.DefaultLine(), metrics: rec}
}

func (d *Dashboard) Reader() *reader.Reader { return d.reader }

// Submit 追加记录，并根据新的列表重建图表。
func (d *Dashboard) Submit(st *session.State, ev session.SubmitEvent) (SubmitResult, error) {
	recs, err := st.Submit(ev)
	reason := ReasonFor(err)
	d.metrics.Submission(reason)
	if err != nil {
		logger.Debugf("submission ignored: label=%q reason=%s", ev.Draft.Label, reason)
	} else {
		logger.Debugf("submission accepted: label=%q total=%d", ev.Draft.Label, len(recs))
	}
	fig, ferr := d.render(recs)
	if ferr != nil {
		return SubmitResult{}, ferr
	}
	res := SubmitResult{Accepted: err == nil, Records: recs, Figure: fig}
	if err != nil {
		res.Reason = reason
	}
	return res, nil
}

// Malformed 处理无法解析的提交，不修改状态。
func (d *Dashboard) Malformed(st *session.State) (SubmitResult, error) {
	d.metrics.Submission(ReasonMalformed)
	recs := st.Records()
	fig, err := d.render(recs)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Reason: ReasonMalformed, Records: recs, Figure: fig}, nil
}

// NextChapter 在点击计数为正时翻到下一章。
func (d *Dashboard) NextChapter(st *session.State, ev ClickEvent) ChapterView {
	if ev.Clicks <= 0 {
		return ChapterView{Chapter: d.reader.Content(st.Chapter()), Total: d.reader.Len()}
	}
	idx := st.MoveChapter(d.reader.Advance)
	d.metrics.ChapterAdvance()
	logger.Debugf("chapter advanced to %d", idx)
	return ChapterView{Moved: true, Chapter: d.reader.Content(idx), Total: d.reader.Len()}
}

// Resize 将 px 对齐到滑块步长并保存。
func (d *Dashboard) Resize(st *session.State, px int) PanelView {
	h := d.reader.ClampHeight(px)
	st.SetHeight(h)
	d.metrics.PanelResize()
	logger.Debugf("panel height set to %d (requested %d)", h, px)
	return d.panel(h)
}

// Page 根据当前状态组合三个视图，不修改状态。
func (d *Dashboard) Page(st *session.State) (PageView, error) {
	recs := st.Records()
	fig, err := d.render(recs)
	if err != nil {
		return PageView{}, err
	}
	return PageView{
		Locale:  d.reader.Locale(),
		Records: recs,
		Figure:  fig,
		Chapter: ChapterView{Chapter: d.reader.Content(st.Chapter()), Total: d.reader.Len()},
		Panel:   d.panel(st.Height()),
		Bounds:  d.reader.Bounds(),
	}, nil
}

// Figure 渲染会话当前记录的图表。
func (d *Dashboard) Figure(st *session.State) (chart.Figure, error) {
	return d.render(st.Records())
}

func (d *Dashboard) render(recs []company.Record) (chart.Figure, error) {
	pts, err := frontier.ComputeLine(recs, d.line)
	if err != nil {
		return chart.Figure{}, fmt.Errorf("compute frontier: %w", err)
	}
	fig, err := chart.Render(recs, d.line, pts)
	if err != nil {
		return chart.Figure{}, fmt.Errorf("render chart: %w", err)
	}
	return fig, nil
}

func (d *Dashboard) panel(h int) PanelView {
	return PanelView{Height: h, Style: reader.MaxHeightStyle(h), Label: d.reader.HeightLabel(h)}
}

// ReasonFor 将提交错误映射为 API 原因码。
func ReasonFor(err error) string {
	switch {
	case err == nil:
		return ReasonAccepted
	case errors.Is(err, session.ErrNoClick):
		return ReasonNoClick
	case errors.Is(err, company.ErrEmptyLabel):
		return ReasonEmptyLabel
	case errors.Is(err, company.ErrMissingMargin):
		return ReasonMissingMargin
	case errors.Is(err, company.ErrMissingGrowth):
		return ReasonMissingGrowth
	case errors.Is(err, company.ErrInvalidMarketCap):
		return ReasonInvalidMarketCap
	case errors.Is(err, company.ErrInvalidMargin):
		return ReasonInvalidMargin
	case errors.Is(err, company.ErrInvalidGrowth):
		return ReasonInvalidGrowth
	default:
		return ReasonMalformed
	}
}

const maxAuditLabel = 64

// AuditFields 将一次提交展开为审计日志字段。
func AuditFields(ev session.SubmitEvent, res SubmitResult) map[string]string {
	f := map[string]string{
		"label":    text.Truncate(ev.Draft.Label, maxAuditLabel),
		"accepted": strconv.FormatBool(res.Accepted),
		"records":  strconv.Itoa(len(res.Records)),
	}
	if res.Reason != "" {
		f["reason"] = res.Reason
	}
	return f
}
