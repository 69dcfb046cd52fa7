package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvConfigPath 是指定配置文件路径的环境变量。
const EnvConfigPath = "RULEFORTY_CONFIG"

// DefaultPath 在环境变量缺省时使用。
const DefaultPath = "configs/config.yaml"

// Load 读取 path 及其 include 链，合并后应用默认值并校验。
func Load(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

// Files 返回 path 展开 include 之后的全部文件，顺序即合并顺序。
func Files(path string) ([]string, error) {
	return resolveConfigIncludes(path)
}

func load(path string) (*Config, []string, error) {
	files, err := resolveConfigIncludes(path)
	if err != nil {
		return nil, nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	for _, file := range files {
		if err := mergeConfigFile(v, file); err != nil {
			return nil, nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, files, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigFile 读取单个文件并合并到 v，后读的文件覆盖先读的。
func mergeConfigFile(v *viper.Viper, path string) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

// resolveConfigIncludes 展开 include 链，被引用的文件排在引用者之前。
func resolveConfigIncludes(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &includeWalker{done: map[string]bool{}, active: map[string]bool{}}
	if err := w.walk(abs); err != nil {
		return nil, err
	}
	return w.order, nil
}

// includeWalker 深度优先遍历 include，active 记录当前路径用于检测环。
type includeWalker struct {
	done   map[string]bool
	active map[string]bool
	order  []string
}

func (w *includeWalker) walk(path string) error {
	path = filepath.Clean(path)
	if w.active[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if w.done[path] {
		return nil
	}
	w.active[path] = true
	includes, err := readIncludes(path)
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := w.walk(inc); err != nil {
			return err
		}
	}
	delete(w.active, path)
	w.done[path] = true
	w.order = append(w.order, path)
	return nil
}

// readIncludes 返回文件顶层 include 列表中的非空路径。
func readIncludes(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	raw := v.Get("include")
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("include must be a string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings")
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out, nil
}

// collectSettingsKeys 记录配置文件中出现过的叶子字段，例如 "metrics.enabled"。
func collectSettingsKeys(settings map[string]any, dest keySet) {
	for k, v := range settings {
		markLeaves(strings.ToLower(strings.TrimSpace(k)), v, dest)
	}
}

func markLeaves(path string, node any, dest keySet) {
	if path == "" {
		return
	}
	sub, ok := node.(map[string]any)
	if !ok {
		dest.mark(path)
		return
	}
	for k, v := range sub {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			markLeaves(path+"."+k, v, dest)
		}
	}
}
