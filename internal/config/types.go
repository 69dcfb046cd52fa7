package config

import "strings"

// Config 是 ruleforty 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Session   SessionConfig   `toml:"session"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Reader    ReaderConfig    `toml:"reader"`
	Chart     ChartConfig     `toml:"chart"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	HTTPAddr  string `toml:"http_addr"`
	LogPath   string `toml:"log_path"`
	AuditLog  string `toml:"audit_log_path"`
}

// SessionConfig 控制每个浏览器会话的隔离状态表。
type SessionConfig struct {
	MaxSessions        int    `toml:"max_sessions"`
	IdleTTLMinutes     int    `toml:"idle_ttl_minutes"`
	CookieName         string `toml:"cookie_name"`
	CookieSecure       bool   `toml:"cookie_secure"`
	CookieMaxAgeMinute int    `toml:"cookie_max_age_minutes"`
}

// DashboardConfig 描述散点图的初始数据来源。
type DashboardConfig struct {
	Title    string `toml:"title"`
	SeedPath string `toml:"seed_path"` // 为空则使用内置种子数据
}

// ReaderConfig 描述章节阅读面板。
type ReaderConfig struct {
	ChaptersPath  string `toml:"chapters_path"` // 为空则使用内置章节
	Locale        string `toml:"locale"`        // "zh" | "en"
	DefaultHeight int    `toml:"default_height"`
	MinHeight     int    `toml:"min_height"`
	MaxHeight     int    `toml:"max_height"`
	HeightStep    int    `toml:"height_step"`
}

// ChartConfig 控制图表导出。
type ChartConfig struct {
	ExportEnabled        bool `toml:"export_enabled"`
	ExportTimeoutSeconds int  `toml:"export_timeout_seconds"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// NormalizedLocale 返回受支持的语言代码。
func (r ReaderConfig) NormalizedLocale() string {
	switch strings.ToLower(strings.TrimSpace(r.Locale)) {
	case "en", "en-us", "en_us":
		return "en"
	default:
		return "zh"
	}
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
