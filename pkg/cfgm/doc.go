// Package cfgm 提供通用的配置加载功能。
//
// # 特性
//
// 使用泛型支持任意配置结构体类型，配置加载优先级 (从低到高)：
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 WithConfigPaths / WithConfigFile 选项设置
//  3. 内联配置 - 通过 WithConfigBytes 选项设置
//  4. 环境变量(前缀) - 通过 WithEnvPrefix 选项启用，最高优先级
//
// # 快速开始
//
//	type Config struct {
//	    Suffix string `koanf:"suffix" desc:"模板后缀"`
//	}
//
//	cfg, err := cfgm.Load(Config{Suffix: ".jinja"},
//	    cfgm.WithConfigPaths(cfgm.DefaultPaths("myapp")...),
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
//
// # 环境变量(前缀)
//
// 根据已加载的 koanf key 自动生成环境变量名：前缀 + 大写 key，
// 点号 (.) 和连字符 (-) 转为下划线 (_)。
//
// 示例 (前缀为 "MYAPP_")：
//   - template.suffix → MYAPP_TEMPLATE_SUFFIX
//   - env.install_var → MYAPP_ENV_INSTALL_VAR
//
// # 配置文件格式
//
// 根据扩展名选择解析器：.json → JSON，.toml → TOML，其余按 YAML 解析。
//
// # 生成配置示例
//
// 使用 [ExampleYAML] 根据配置结构体生成带注释的 YAML 示例文件。
package cfgm
