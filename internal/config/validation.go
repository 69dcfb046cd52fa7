package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Reader.validate(); err != nil {
		return err
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be one of text, json")
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be >= 1")
	}
	if s.IdleTTLMinutes < 1 {
		return fmt.Errorf("session.idle_ttl_minutes must be >= 1")
	}
	if strings.TrimSpace(s.CookieName) == "" {
		return fmt.Errorf("session.cookie_name cannot be empty")
	}
	return nil
}

func (r *ReaderConfig) validate() error {
	if r.HeightStep <= 0 {
		return fmt.Errorf("reader.height_step must be > 0")
	}
	if r.MinHeight <= 0 || r.MaxHeight < r.MinHeight {
		return fmt.Errorf("reader height range invalid: min=%d max=%d", r.MinHeight, r.MaxHeight)
	}
	if (r.MaxHeight-r.MinHeight)%r.HeightStep != 0 {
		return fmt.Errorf("reader height range [%d,%d] is not a multiple of step %d", r.MinHeight, r.MaxHeight, r.HeightStep)
	}
	if r.DefaultHeight < r.MinHeight || r.DefaultHeight > r.MaxHeight {
		return fmt.Errorf("reader.default_height must be in [%d,%d]", r.MinHeight, r.MaxHeight)
	}
	if (r.DefaultHeight-r.MinHeight)%r.HeightStep != 0 {
		return fmt.Errorf("reader.default_height must land on a %dpx step", r.HeightStep)
	}
	return nil
}

func (c *ChartConfig) validate() error {
	if c.ExportEnabled && c.ExportTimeoutSeconds <= 0 {
		return fmt.Errorf("chart.export_timeout_seconds must be > 0 when export is enabled")
	}
	return nil
}
