package command

import (
	"os"

	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm"
	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm/formatter"
	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm/writer"
)

// LogOptions 返回日志配置。
//
// 与 logm 预设的区别是日志只写 stderr，stdout 只输出渲染结果。
// VSCODE_INJECTION=1 时使用开发配置 (彩色文本、DEBUG 级别)。
func LogOptions() []logm.Option {
	if os.Getenv("VSCODE_INJECTION") == "1" {
		return []logm.Option{
			logm.WithLevel("DEBUG"),
			logm.WithFormatter(formatter.ColorText(
				formatter.WithTimeFormat("time"),
			)),
			logm.WithWriter(writer.Stderr()),
			logm.WithAddSource(true),
			logm.WithTimeFormat("time"),
		}
	}

	return []logm.Option{
		logm.WithLevel("INFO"),
		logm.WithFormatter(formatter.JSON(
			formatter.WithTimeFormat("rfc3339ms"),
		)),
		logm.WithWriter(writer.Stderr()),
		logm.WithAddSource(false),
		logm.WithTimeFormat("rfc3339ms"),
		logm.WithTimezone("UTC"),
	}
}
