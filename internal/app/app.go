package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ruleforty/internal/chart"
	"ruleforty/internal/config"
	"ruleforty/internal/logger"
	dashhttp "ruleforty/internal/transport/http/dash"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务与配置热加载。
type App struct {
	cfg      *config.Config
	cfgPath  string
	server   *dashhttp.Server
	exporter *chart.Exporter
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。cfgPath 非空时 Run 会监听该文件。
func NewApp(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	a, err := buildAppWithWire(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	a.cfgPath = cfgPath
	return a, nil
}

// Run 启动 HTTP 服务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.server == nil {
		return fmt.Errorf("http server not initialized")
	}
	if a.Summary != nil {
		logger.InfoBlock(a.Summary.String())
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("dashboard http server error: %w", err)
		}
		return nil
	})

	if a.exporter != nil && a.exporter.Enabled() {
		group.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := chart.EnsureHeadlessAvailable(checkCtx); err != nil {
				// 导出失败只影响 /chart.png，不阻塞主服务
				logger.Warnf("headless chrome 不可用，PNG 导出将返回错误: %v", err)
			}
			return nil
		})
	}

	if a.cfgPath != "" {
		if err := config.Watch(a.cfgPath, a.applyReload, func(err error) {
			logger.Warnf("配置热加载失败，继续使用旧配置: %v", err)
		}); err != nil {
			logger.Warnf("无法监听配置文件 %s: %v", a.cfgPath, err)
		}
	}

	return group.Wait()
}

// applyReload 只热更新日志级别，其余字段需要重启才能生效。
func (a *App) applyReload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	prev := logger.Level()
	logger.SetLevel(cfg.App.LogLevel)
	if cur := logger.Level(); cur != prev {
		logger.Infof("✓ 日志级别已更新: %s -> %s", prev, cur)
	}
}

// Handler 返回底层 http.Handler，供测试与嵌入使用。
func (a *App) Handler() http.Handler {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Handler()
}

// Addr 返回监听地址。
func (a *App) Addr() string {
	if a == nil || a.server == nil {
		return ""
	}
	return a.server.Addr()
}
