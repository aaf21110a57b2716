package tmpl

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
)

// DefaultGlobal 完整配置映射在模板中的名称
const DefaultGlobal = "CONFIG"

// Renderer 模板渲染能力，引擎可替换。
type Renderer interface {
	// Render 渲染模板文本，name 仅用于错误信息。
	Render(name, text string, values kconfig.Values) (string, error)
}

// SyntaxError 模板语法错误
type SyntaxError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

func (e *SyntaxError) Unwrap() error { return e.Err }


// ═══════════════════════════════════════════════════════════════════════════
// 引擎
// ═══════════════════════════════════════════════════════════════════════════

// Option 引擎选项
type Option func(*Engine) error

// WithGlobal 设置完整配置映射的全局名称
func WithGlobal(name string) Option {
	return func(e *Engine) error {
		if !identifierRe.MatchString(name) {
			return fmt.Errorf("invalid global name %q", name)
		}
		e.global = name
		return nil
	}
}

// WithBaseDir 设置 include/import 的查找根目录
func WithBaseDir(dir string) Option {
	return func(e *Engine) error {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return fmt.Errorf("failed to create template loader: %w", err)
		}
		e.loaders = append(e.loaders, loader)
		return nil
	}
}

// Engine 基于 pongo2 的 [Renderer] 实现
type Engine struct {
	set     *pongo2.TemplateSet
	global  string
	loaders []pongo2.TemplateLoader
}

var _ Renderer = (*Engine)(nil)

var autoescapeOnce sync.Once

// NewEngine 创建模板引擎
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{global: DefaultGlobal}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if len(e.loaders) == 0 {
		e.loaders = append(e.loaders, pongo2.DefaultLoader)
	}

	// Jinja 默认不做 HTML 转义
	autoescapeOnce.Do(func() { pongo2.SetAutoescape(false) })

	e.set = pongo2.NewSet("jinjafs", e.loaders...)

	return e, nil
}

// Render 渲染模板文本。
//
// 解析失败返回 [*SyntaxError]；执行失败返回包装后的引擎错误。
func (e *Engine) Render(name, text string, values kconfig.Values) (string, error) {
	tpl, err := e.set.FromString(text)
	if err != nil {
		return "", newSyntaxError(name, err)
	}

	out, err := tpl.Execute(NewContext(e.global, values))
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return out, nil
}

func newSyntaxError(name string, err error) *SyntaxError {
	se := &SyntaxError{File: name, Message: err.Error(), Err: err}

	var perr *pongo2.Error
	if errors.As(err, &perr) {
		se.Line = perr.Line
		if perr.OrigError != nil {
			se.Message = perr.OrigError.Error()
		}
	}

	return se
}

// ═══════════════════════════════════════════════════════════════════════════
// 渲染上下文
// ═══════════════════════════════════════════════════════════════════════════

// pongo2 只接受由字母、数字和下划线组成的上下文键
var identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewContext 构建渲染上下文。
//
// 合并顺序：
//  1. 辅助函数 (coalesce, value)
//  2. 每个合法标识符键作为顶级名称
//  3. 完整映射绑定到 global，最后写入，不会被同名配置键覆盖
func NewContext(global string, values kconfig.Values) pongo2.Context {
	mapping := make(map[string]string, len(values))
	for k, v := range values {
		mapping[k] = v
	}

	ctx := pongo2.Context{
		"coalesce": coalesceFunc,
		"value":    valueFunc(mapping),
	}
	for k, v := range mapping {
		if !identifierRe.MatchString(k) {
			continue
		}
		ctx[k] = v
	}
	ctx[global] = mapping

	return ctx
}

// coalesceFunc 返回第一个非空值，未定义的变量视为空
func coalesceFunc(values ...*pongo2.Value) any {
	for _, v := range values {
		if v == nil || v.IsNil() {
			continue
		}
		if v.IsString() && v.String() == "" {
			continue
		}

		return v.Interface()
	}

	return ""
}

// valueFunc 按键查找配置值，未设置时返回可选的默认值。
// 只查找已收集的映射，不重新读取环境。
func valueFunc(mapping map[string]string) func(key string, defaultVal ...string) string {
	return func(key string, defaultVal ...string) string {
		if val, ok := mapping[key]; ok && val != "" {
			return val
		}
		if len(defaultVal) > 0 {
			return defaultVal[0]
		}

		return ""
	}
}
