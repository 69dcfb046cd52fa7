package config

import (
	"strings"
)

// 默认值常量
const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultAppLogFormat      = "text"
	defaultAppHTTPAddr       = ":8050"
	defaultSessionMax        = 1000
	defaultSessionIdleTTL    = 60
	defaultSessionCookie     = "ruleforty_session"
	defaultSessionCookieAge  = 24 * 60
	defaultDashboardTitle    = "Rule of 40"
	defaultReaderLocale      = "zh"
	defaultReaderHeight      = 600
	defaultReaderMinHeight   = 300
	defaultReaderMaxHeight   = 1000
	defaultReaderHeightStep  = 50
	defaultChartExportTimout = 20
	defaultMetricsPath       = "/metrics"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Session.applyDefaults(keys)
	c.Dashboard.applyDefaults(keys)
	c.Reader.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
	c.Metrics.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (s *SessionConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("session.cookie_name", &s.CookieName, defaultSessionCookie),
		intFieldDefault("session.max_sessions", &s.MaxSessions, defaultSessionMax),
		intFieldDefault("session.idle_ttl_minutes", &s.IdleTTLMinutes, defaultSessionIdleTTL),
		intFieldDefault("session.cookie_max_age_minutes", &s.CookieMaxAgeMinute, defaultSessionCookieAge),
	)
}

func (d *DashboardConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("dashboard.title", &d.Title, defaultDashboardTitle),
	)
	d.SeedPath = strings.TrimSpace(d.SeedPath)
}

func (r *ReaderConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("reader.locale", &r.Locale, defaultReaderLocale),
		intFieldDefault("reader.default_height", &r.DefaultHeight, defaultReaderHeight),
		intFieldDefault("reader.min_height", &r.MinHeight, defaultReaderMinHeight),
		intFieldDefault("reader.max_height", &r.MaxHeight, defaultReaderMaxHeight),
		intFieldDefault("reader.height_step", &r.HeightStep, defaultReaderHeightStep),
	)
	r.ChaptersPath = strings.TrimSpace(r.ChaptersPath)
	r.Locale = r.NormalizedLocale()
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("chart.export_timeout_seconds", &c.ExportTimeoutSeconds, defaultChartExportTimout),
	)
}

func (m *MetricsConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("metrics.enabled", &m.Enabled, true),
		stringFieldDefault("metrics.path", &m.Path, defaultMetricsPath),
	)
	if !strings.HasPrefix(m.Path, "/") {
		m.Path = "/" + m.Path
	}
}

// 辅助函数

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
