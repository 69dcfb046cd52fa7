package dashhttp

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ruleforty/internal/chart"
	"ruleforty/internal/dashboard"
	"ruleforty/internal/logger"
	"ruleforty/internal/reader"
)

const maxBodyBytes = 16 << 10

type handlers struct {
	title    string
	dash     *dashboard.Dashboard
	exporter *chart.Exporter
}

func (h *handlers) register(group *gin.RouterGroup) {
	group.GET("/", h.handleIndex)
	group.GET("/chart", h.handleChartPage)
	group.GET("/chart.png", h.handleChartPNG)
	group.GET("/api/state", h.handleState)
	group.POST("/api/companies", h.handleSubmit)
	group.POST("/api/chapter/next", h.handleNextChapter)
	group.POST("/api/panel/height", h.handleResize)
}

// pageData 是首页模板的数据。
type pageData struct {
	Title        string
	View         dashboard.PageView
	Text         uiText
	ExportPNG    bool
	HeightMin    int
	HeightMax    int
	HeightStep   int
	ChapterTotal int
}

type uiText struct {
	Intro       string
	Label       string
	Margin      string
	Growth      string
	MarketCap   string
	Add         string
	NextChapter string
	Download    string
}

func textFor(locale string) uiText {
	t := uiText{
		Label:     "Company Ticker Label:",
		Margin:    "Adjusted Operating Margin (%):",
		Growth:    "YoY Revenue Growth (%):",
		MarketCap: "Market Cap (Billion):",
		Add:       "Add Company",
		Download:  "Download PNG",
	}
	if locale == reader.LocaleEN {
		t.Intro = "Companies whose intercept is above 40 sit on or above the red dashed line."
		t.NextChapter = "Next chapter"
	} else {
		t.Intro = "任何 y 軸截距高於 40 的公司位於紅色虛線之上。"
		t.NextChapter = "下一章"
	}
	return t
}

func (h *handlers) handleIndex(c *gin.Context) {
	st := stateFrom(c)
	view, err := h.dash.Page(st)
	if err != nil {
		logger.Errorf("render page failed: %v", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	b := h.dash.Reader().Bounds()
	c.HTML(http.StatusOK, "index.html", pageData{
		Title:        h.title,
		View:         view,
		Text:         textFor(view.Locale),
		ExportPNG:    h.exporter.Enabled(),
		HeightMin:    b.Min,
		HeightMax:    b.Max,
		HeightStep:   b.Step,
		ChapterTotal: view.Chapter.Total,
	})
}

func (h *handlers) handleChartPage(c *gin.Context) {
	fig, err := h.dash.Figure(stateFrom(c))
	if err != nil {
		logger.Errorf("render chart failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	page, err := chart.Page(fig)
	if err != nil {
		logger.Errorf("render chart page failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *handlers) handleChartPNG(c *gin.Context) {
	if !h.exporter.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": chart.ErrExportDisabled.Error()})
		return
	}
	fig, err := h.dash.Figure(stateFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	png, err := h.exporter.PNG(c.Request.Context(), fig)
	if err != nil {
		logger.Errorf("png export failed: %v", err)
		status := http.StatusBadGateway
		if errors.Is(err, chart.ErrExportDisabled) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rule-of-40.png"`)
	c.Data(http.StatusOK, "image/png", png)
}

func (h *handlers) handleState(c *gin.Context) {
	view, err := h.dash.Page(stateFrom(c))
	if err != nil {
		logger.Errorf("render state failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) handleSubmit(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	st := stateFrom(c)
	ev, err := decodeSubmit(body)
	if err != nil {
		if errors.Is(err, errBadJSON) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// 结构不符合 schema：与校验失败一样静默忽略，只在 API 中给出原因
		logger.With("session", sessionIDFrom(c)).Debug("submission malformed", "err", err)
		res, ferr := h.dash.Malformed(st)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": ferr.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	res, err := h.dash.Submit(st, ev)
	if err != nil {
		logger.With("session", sessionIDFrom(c)).Error("submit failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ev.Clicks > 0 {
		logger.Audit("submit", sessionIDFrom(c), dashboard.AuditFields(ev, res))
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) handleNextChapter(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	n, err := decodeClicks(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view := h.dash.NextChapter(stateFrom(c), dashboard.ClickEvent{Clicks: n})
	if view.Moved {
		logger.Audit("chapter", sessionIDFrom(c), map[string]string{"chapter": strconv.Itoa(view.Chapter.Number)})
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) handleResize(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	px, err := decodeHeight(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view := h.dash.Resize(stateFrom(c), px)
	logger.Audit("resize", sessionIDFrom(c), map[string]string{"height": strconv.Itoa(view.Height)})
	c.JSON(http.StatusOK, view)
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return nil, false
	}
	if len(body) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return nil, false
	}
	return body, true
}
