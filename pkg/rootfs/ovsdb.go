package rootfs

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ProcessFile 渲染单个结构化数据模板并写入 out，不修改源文件。
//
// 文件名不以结构化数据后缀结尾时直接返回 nil。
// 读取和渲染错误原样返回，不输出诊断。
func (p *Processor) ProcessFile(path string, out io.Writer) error {
	if !strings.HasSuffix(path, p.opts.OvsdbSuffix) {
		slog.Debug("Not a structured data template", "path", path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rendered, err := p.renderer.Render(path, string(data), p.values)
	if err != nil {
		return err
	}

	checkJSON(path, rendered)

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	if _, err := io.WriteString(out, rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// checkJSON 校验渲染结果是否为合法 JSON，仅记录警告。
// OVSDB 事务文件的顶层通常是数组。
func checkJSON(path, rendered string) {
	if !json.Valid([]byte(rendered)) {
		slog.Warn("Rendered output is not valid JSON", "path", path)
	}
}
