// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - $JINJAFS_CONFIG 指定，或 ~/.<app>.yaml、/etc/<app>/config.yaml
//  3. 内联配置 - $JINJAFS_CONFIG_YAML
//  4. 环境变量 - JINJAFS_ 前缀，例如 JINJAFS_TEMPLATE_SUFFIX
package config

import (
	"os"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/cfgm"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/rootfs"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/tmpl"
)

const (
	// EnvPrefix 工具自身配置的环境变量前缀
	EnvPrefix = "JINJAFS_"
	// EnvConfigFile 指定配置文件路径
	EnvConfigFile = "JINJAFS_CONFIG"
	// EnvConfigYAML 内联 YAML 配置
	EnvConfigYAML = "JINJAFS_CONFIG_YAML"
)

// Config 应用配置
type Config struct {
	Env      EnvConfig      `koanf:"env" desc:"配置变量收集"`
	Template TemplateConfig `koanf:"template" desc:"模板识别与渲染"`
}

// EnvConfig 配置变量收集
type EnvConfig struct {
	Prefix     string `koanf:"prefix" desc:"配置变量前缀"`
	InstallVar string `koanf:"install_var" desc:"提供安装路径的环境变量"`
	InstallKey string `koanf:"install_key" desc:"安装路径在模板中的名称"`
}

// TemplateConfig 模板识别与渲染
type TemplateConfig struct {
	Suffix      string `koanf:"suffix" desc:"模板文件后缀"`
	Marker      string `koanf:"marker" desc:"模板标记行"`
	OvsdbSuffix string `koanf:"ovsdb_suffix" desc:"单文件模式的结构化数据模板后缀"`
	Global      string `koanf:"global" desc:"完整配置映射在模板中的名称"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Env: EnvConfig{
			Prefix:     kconfig.DefaultPrefix,
			InstallVar: kconfig.DefaultInstallVar,
			InstallKey: kconfig.DefaultInstallKey,
		},
		Template: TemplateConfig{
			Suffix:      rootfs.DefaultSuffix,
			Marker:      rootfs.DefaultMarker,
			OvsdbSuffix: rootfs.DefaultOvsdbSuffix,
			Global:      tmpl.DefaultGlobal,
		},
	}
}

// Load 加载配置
func Load(appName string) (*Config, error) {
	opts := []cfgm.Option{
		cfgm.WithConfigPaths(cfgm.DefaultPaths(appName)...),
		cfgm.WithEnvPrefix(EnvPrefix),
	}
	if path := os.Getenv(EnvConfigFile); path != "" {
		opts = append(opts, cfgm.WithConfigFile(path))
	}
	if inline := os.Getenv(EnvConfigYAML); inline != "" {
		opts = append(opts, cfgm.WithConfigBytes([]byte(inline), "yaml"))
	}

	return cfgm.Load(DefaultConfig(), opts...)
}

// CollectOptions 返回配置变量收集选项
func (c *Config) CollectOptions() []kconfig.Option {
	return []kconfig.Option{
		kconfig.WithPrefix(c.Env.Prefix),
		kconfig.WithInstallVar(c.Env.InstallVar),
		kconfig.WithInstallKey(c.Env.InstallKey),
	}
}

// EngineOptions 返回模板引擎选项
func (c *Config) EngineOptions() []tmpl.Option {
	return []tmpl.Option{tmpl.WithGlobal(c.Template.Global)}
}

// RootfsOptions 返回文件命名约定
func (c *Config) RootfsOptions() rootfs.Options {
	return rootfs.Options{
		Suffix:      c.Template.Suffix,
		Marker:      c.Template.Marker,
		OvsdbSuffix: c.Template.OvsdbSuffix,
	}
}
