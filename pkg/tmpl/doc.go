// Package tmpl 提供 Jinja 风格的模板渲染。
//
// 渲染引擎基于 pongo2，语法与 Jinja 对齐，HTML 自动转义默认关闭。
//
// # 设计参考
//
//   - Jinja 模板语法: https://jinja.palletsprojects.com/templates/
//   - pongo2: https://github.com/flosch/pongo2
//
// # 渲染上下文
//
//  1. 完整配置映射绑定在全局名称下（默认 CONFIG），支持遍历和按键访问
//  2. 每个配置键同时作为顶级名称暴露：{{ CONFIG_FOO }}
//  3. 不是合法标识符的键只能通过全局名称访问
//
// 详见 [NewContext]。
//
// # 支持的函数
//
//   - coalesce: 返回第一个非空值 {{ coalesce(CONFIG_A, CONFIG_B, "default") }}
//   - value: 按键查找配置 {{ value("CONFIG_A", "fallback") }}
//
// # 错误
//
// 模板语法错误返回 [*SyntaxError]，包含文件名、行号和引擎消息；
// 执行期错误原样包装返回。
package tmpl
