package config

import (
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PathFromEnv 返回 RULEFORTY_CONFIG 指定的路径，未设置时回退到 DefaultPath。
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Watch 监听主配置文件，文件写入后重新加载完整配置并回调 onChange。
// 解析失败时回调 onError，旧配置继续生效。
func Watch(path string, onChange func(*Config), onError func(error)) error {
	files, err := resolveConfigIncludes(path)
	if err != nil {
		return err
	}
	main := files[len(files)-1]
	v := viper.New()
	v.SetConfigFile(main)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}
