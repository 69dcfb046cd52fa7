package app

import (
	"context"
	"fmt"
	"time"

	"ruleforty/internal/chart"
	"ruleforty/internal/company"
	"ruleforty/internal/config"
	"ruleforty/internal/dashboard"
	"ruleforty/internal/logger"
	"ruleforty/internal/metrics"
	"ruleforty/internal/reader"
	"ruleforty/internal/session"
	dashhttp "ruleforty/internal/transport/http/dash"
)

type AppBuilder struct {
	cfg *config.Config

	seedFn     func(string) ([]company.Record, error)
	readerFn   func(config.ReaderConfig) (*reader.Reader, error)
	exporterFn func(config.ChartConfig) *chart.Exporter
	serverFn   func(dashhttp.ServerConfig) (*dashhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithExporter 替换 PNG 导出器（测试中用来避免启动浏览器）。
func WithExporter(exp *chart.Exporter) AppBuilderOption {
	return func(b *AppBuilder) {
		b.exporterFn = func(config.ChartConfig) *chart.Exporter { return exp }
	}
}

// WithSeed 替换初始公司列表。
func WithSeed(records []company.Record) AppBuilderOption {
	return func(b *AppBuilder) {
		b.seedFn = func(string) ([]company.Record, error) { return company.Clone(records), nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		seedFn:     company.LoadSeed,
		readerFn:   buildReader,
		exporterFn: buildExporter,
		serverFn:   dashhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(_ context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	seed, err := b.seedFn(cfg.Dashboard.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	logger.Infof("✓ 已加载 %d 家公司的初始数据", len(seed))

	rd, err := b.readerFn(cfg.Reader)
	if err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}
	logger.Infof("✓ 已加载 %d 个章节（语言=%s）", rd.Len(), rd.Locale())

	var (
		mgr  *session.Manager
		rec  metrics.Recorder = metrics.Noop{}
		prom *metrics.Prom
	)
	if cfg.Metrics.Enabled {
		prom = metrics.NewProm(func() int {
			if mgr == nil {
				return 0
			}
			return mgr.Len()
		})
		rec = prom
	}
	mgr = session.NewManager(session.Options{
		MaxSessions:   cfg.Session.MaxSessions,
		IdleTTL:       time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute,
		Seed:          seed,
		DefaultHeight: rd.Bounds().Default,
		OnEvict: func(id string) {
			logger.Debugf("session %s evicted", id)
		},
	})

	exporter := b.exporterFn(cfg.Chart)
	dash := dashboard.New(rd, rec)

	srvCfg := dashhttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Title:     cfg.Dashboard.Title,
		Dashboard: dash,
		Sessions:  mgr,
		Exporter:  exporter,
		Recorder:  rec,
		Cookie: dashhttp.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: time.Duration(cfg.Session.CookieMaxAgeMinute) * time.Minute,
		},
	}
	if prom != nil {
		srvCfg.Metrics = prom.Handler()
		srvCfg.MetricsPath = cfg.Metrics.Path
	}
	server, err := b.serverFn(srvCfg)
	if err != nil {
		return nil, fmt.Errorf("build http server: %w", err)
	}

	return &App{
		cfg:      cfg,
		server:   server,
		exporter: exporter,
		Summary:  newStartupSummary(cfg, seed, rd),
	}, nil
}

func buildReader(rc config.ReaderConfig) (*reader.Reader, error) {
	return reader.New(rc.ChaptersPath, rc.Locale, reader.HeightBounds{
		Min:     rc.MinHeight,
		Max:     rc.MaxHeight,
		Step:    rc.HeightStep,
		Default: rc.DefaultHeight,
	})
}

func buildExporter(cc config.ChartConfig) *chart.Exporter {
	return chart.NewExporter(cc.ExportEnabled, time.Duration(cc.ExportTimeoutSeconds)*time.Second)
}
