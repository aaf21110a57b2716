package cfgm

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Option 加载选项
type Option func(*options)

type options struct {
	configPaths []string
	configFile  string
	rawConfig   []byte
	rawFormat   string
	envPrefix   string
}

// WithConfigPaths 设置配置文件搜索路径，找到第一个即停止
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = append(o.configPaths, paths...)
	}
}

// WithConfigFile 指定必须存在的配置文件，优先于搜索路径
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithConfigBytes 加载内联配置，format 为 yaml、json 或 toml
func WithConfigBytes(data []byte, format string) Option {
	return func(o *options) {
		o.rawConfig = data
		o.rawFormat = format
	}
}

// WithEnvPrefix 启用前缀环境变量覆盖
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// DefaultPaths 返回默认配置文件搜索路径。
//
// 构建目录中的文件不参与搜索，只查找用户主目录和系统配置目录。
func DefaultPaths(appName string) []string {
	if appName == "" {
		return nil
	}

	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".yaml"))
	}
	paths = append(paths, "/etc/"+appName+"/config.yaml")

	return paths
}

// Load 加载配置，按优先级合并默认值、配置文件、内联配置和环境变量。
//
// 泛型参数 T 为配置结构体类型，必须使用 koanf tag 标记字段。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if err := loadFiles(k, &o); err != nil {
		return nil, err
	}

	if len(o.rawConfig) > 0 {
		if err := k.Load(rawbytes.Provider(o.rawConfig), parserForFormat(o.rawFormat)); err != nil {
			return nil, fmt.Errorf("failed to load inline config: %w", err)
		}
	}

	if o.envPrefix != "" {
		applyEnvPrefix(k, o.envPrefix)
	}

	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func loadFiles(k *koanf.Koanf, o *options) error {
	if o.configFile != "" {
		if err := k.Load(file.Provider(o.configFile), parserForPath(o.configFile)); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", o.configFile, err)
		}
		slog.Debug("Loaded config from file", "path", o.configFile)
		return nil
	}

	for _, path := range o.configPaths {
		err := k.Load(file.Provider(path), parserForPath(path))
		if err == nil {
			slog.Debug("Loaded config from file", "path", path)
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	slog.Debug("No config file found, using defaults")
	return nil
}

// applyEnvPrefix 为每个已知 key 查找对应的前缀环境变量
func applyEnvPrefix(k *koanf.Koanf, prefix string) {
	for _, key := range k.Keys() {
		if val, ok := os.LookupEnv(EnvName(prefix, key)); ok {
			_ = k.Set(key, val)
		}
	}
}

// EnvName 返回 koanf key 对应的环境变量名
func EnvName(prefix, key string) string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return prefix + strings.ToUpper(name)
}

func parserForPath(path string) koanf.Parser {
	return parserForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func parserForFormat(format string) koanf.Parser {
	switch strings.ToLower(format) {
	case "json":
		return json.Parser()
	case "toml":
		return toml.Parser()
	default:
		return yaml.Parser()
	}
}
