package chart

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

var ErrExportDisabled = errors.New("chart: png export is disabled")

// RenderFunc 按给定视口把 HTML 页面截图为 PNG。
type RenderFunc func(ctx context.Context, html []byte, width, height int) ([]byte, error)

// Exporter 使用 headless Chrome 导出图表截图。
type Exporter struct {
	enabled bool
	timeout time.Duration
	render  RenderFunc
}

// NewExporter 创建导出器，未启用时不会启动浏览器。
func NewExporter(enabled bool, timeout time.Duration) *Exporter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Exporter{enabled: enabled, timeout: timeout, render: renderHTMLToPNG}
}

// WithRenderer 替换截图实现。
func (e *Exporter) WithRenderer(fn RenderFunc) *Exporter {
	if fn != nil {
		e.render = fn
	}
	return e
}

func (e *Exporter) Enabled() bool {
	return e != nil && e.enabled
}

// PNG 渲染 fig 并返回截图。
func (e *Exporter) PNG(ctx context.Context, fig Figure) ([]byte, error) {
	if !e.Enabled() {
		return nil, ErrExportDisabled
	}
	html, err := Page(fig)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	png, err := e.render(ctx, html, fig.Layout.Width, fig.Layout.Height)
	if err != nil {
		return nil, fmt.Errorf("export chart png: %w", err)
	}
	return png, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable 启动一次 Chrome 以确认可用。
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if err := EnsureHeadlessAvailable(context.Background()); err != nil {
		return nil, fmt.Errorf("headless chrome unavailable: %w", err)
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(parent, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
