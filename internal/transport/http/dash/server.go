package dashhttp

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ruleforty/internal/chart"
	"ruleforty/internal/dashboard"
	"ruleforty/internal/logger"
	"ruleforty/internal/metrics"
	"ruleforty/internal/session"
)

//go:embed web/templates/*.html web/static/*
var webAssets embed.FS

// Server 提供仪表盘页面与 JSON API。
type Server struct {
	addr   string
	router *gin.Engine
}

// CookieConfig 描述会话 cookie。
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr        string
	Title       string
	Dashboard   *dashboard.Dashboard
	Sessions    *session.Manager
	Exporter    *chart.Exporter
	Recorder    metrics.Recorder
	Metrics     http.Handler // nil 时不暴露 metrics 路由
	MetricsPath string
	Cookie      CookieConfig
}

// NewServer 构建 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Dashboard == nil || cfg.Sessions == nil {
		return nil, errors.New("dashboard http server requires dashboard and session manager")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8050"
	}
	if cfg.Title == "" {
		cfg.Title = "Rule of 40"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Noop{}
	}
	if cfg.Exporter == nil {
		cfg.Exporter = chart.NewExporter(false, 0)
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "ruleforty_session"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Recorder))

	if err := loadTemplates(router); err != nil {
		return nil, err
	}
	if err := serveStatic(router); err != nil {
		return nil, err
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": cfg.Sessions.Len()})
	})
	if cfg.Metrics != nil {
		router.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics))
	}

	h := &handlers{
		title:    cfg.Title,
		dash:     cfg.Dashboard,
		exporter: cfg.Exporter,
	}
	sessioned := router.Group("/", sessionMiddleware(cfg.Sessions, cfg.Cookie, cfg.Recorder))
	h.register(sessioned)

	return &Server{addr: cfg.Addr, router: router}, nil
}

func loadTemplates(router *gin.Engine) error {
	tmpl, err := template.New("dash").ParseFS(webAssets, "web/templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

func serveStatic(router *gin.Engine) error {
	sub, err := fs.Sub(webAssets, "web/static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(sub))
	return nil
}

// requestLogger 记录每个请求并计入 metrics。
func requestLogger(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		rec.HTTPRequest(c.FullPath(), status, dur)
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

// Handler 返回底层 http.Handler，供测试直接驱动。
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
