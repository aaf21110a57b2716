// Package kconfig 从进程环境中收集构建期配置值。
//
// 收集规则：
//  1. 所有以前缀 (默认 CONFIG_) 开头的环境变量，原样复制键名和值
//  2. 额外合成一个安装路径条目：INSTALL_PREFIX → $INSTALL_PREFIX
//
// 安装路径变量缺失时返回 [ErrMissingInstallPrefix]。
package kconfig

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultPrefix 配置变量前缀
	DefaultPrefix = "CONFIG_"
	// DefaultInstallVar 提供安装路径的环境变量
	DefaultInstallVar = "INSTALL_PREFIX"
	// DefaultInstallKey 安装路径在映射中的合成键名
	DefaultInstallKey = "INSTALL_PREFIX"
)

const keyDelim = "="

// ErrMissingInstallPrefix 安装路径环境变量未设置
var ErrMissingInstallPrefix = errors.New("install prefix variable not set")

// Values 配置映射，每次调用只构建一次，渲染期间只读。
type Values map[string]string

// Keys 返回排序后的键名
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Option 收集选项
type Option func(*options)

type options struct {
	prefix     string
	installVar string
	installKey string
}

// WithPrefix 设置配置变量前缀
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithInstallVar 设置提供安装路径的环境变量名
func WithInstallVar(name string) Option {
	return func(o *options) {
		if name != "" {
			o.installVar = name
		}
	}
}

// WithInstallKey 设置安装路径的合成键名
func WithInstallKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.installKey = key
		}
	}
}

// Collect 扫描当前进程环境并构建配置映射。
//
// 结果只依赖调用时刻的环境状态，没有副作用。
func Collect(opts ...Option) (Values, error) {
	o := options{
		prefix:     DefaultPrefix,
		installVar: DefaultInstallVar,
		installKey: DefaultInstallKey,
	}
	for _, opt := range opts {
		opt(&o)
	}

	installPrefix, ok := os.LookupEnv(o.installVar)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingInstallPrefix, o.installVar)
	}

	// 环境变量名可以包含 "."，只有 "=" 不会出现在变量名中，用它做分隔符保证键名不被拆分
	k := koanf.New(keyDelim)

	// 键名原样保留，不做大小写或分隔符转换
	if err := k.Load(env.Provider(o.prefix, keyDelim, func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s* variables: %w", o.prefix, err)
	}

	if err := k.Load(confmap.Provider(map[string]any{o.installKey: installPrefix}, keyDelim), nil); err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", o.installKey, err)
	}

	values := make(Values, len(k.Keys()))
	for _, key := range k.Keys() {
		values[key] = k.String(key)
	}

	return values, nil
}
