// Package rootfs 将构建期配置注入 rootfs 目录树中的模板文件。
//
// 模板识别方式：
//  1. 文件名以模板后缀结尾 (默认 .jinja)，渲染后写入去掉后缀的路径，
//     复制权限位并删除源文件
//  2. 文件内容包含标记行 (默认 "# {# jinja-parse #}")，去掉标记行后原地渲染
//
// 符号链接和非 UTF-8 文件不会被处理。
package rootfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/tmpl"
)

const (
	// DefaultSuffix 模板文件后缀
	DefaultSuffix = ".jinja"
	// DefaultMarker 模板标记行
	DefaultMarker = "# {# jinja-parse #}"
	// DefaultOvsdbSuffix 单文件模式识别的结构化数据模板后缀
	DefaultOvsdbSuffix = ".json.jinja"
)

// 权限位，包含 setuid/setgid/sticky
const modeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Options 文件命名约定
type Options struct {
	Suffix      string
	Marker      string
	OvsdbSuffix string
}

// DefaultOptions 返回默认命名约定
func DefaultOptions() Options {
	return Options{
		Suffix:      DefaultSuffix,
		Marker:      DefaultMarker,
		OvsdbSuffix: DefaultOvsdbSuffix,
	}
}

// Stats 一次 rootfs 处理的统计
type Stats struct {
	Rendered int
	Skipped  int
}

// Processor 使用同一份配置映射渲染模板文件
type Processor struct {
	renderer tmpl.Renderer
	values   kconfig.Values
	opts     Options

	// Stderr 语法错误诊断输出，默认 os.Stderr
	Stderr io.Writer
}

// New 创建处理器。values 在整个处理过程中保持不变。
func New(renderer tmpl.Renderer, values kconfig.Values, opts Options) *Processor {
	def := DefaultOptions()
	if opts.Suffix == "" {
		opts.Suffix = def.Suffix
	}
	if opts.Marker == "" {
		opts.Marker = def.Marker
	}
	if opts.OvsdbSuffix == "" {
		opts.OvsdbSuffix = def.OvsdbSuffix
	}

	return &Processor{
		renderer: renderer,
		values:   values,
		opts:     opts,
		Stderr:   os.Stderr,
	}
}

// ProcessRootfs 遍历 dir 并渲染其中的模板文件。
//
// 遇到语法错误时输出诊断并立即停止，剩余文件不再处理。
func (p *Processor) ProcessRootfs(dir string) error {
	var stats Stats

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 根目录之下无法读取的子目录跳过，不中断遍历
			if path != dir && d != nil && d.IsDir() {
				slog.Debug("Skipping unreadable directory", "path", path, "error", err)
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			stats.Skipped++
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rendered, err := p.processFile(path)
		if err != nil {
			return err
		}
		if rendered {
			stats.Rendered++
		} else {
			stats.Skipped++
		}

		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Rootfs processed", "dir", dir, "rendered", stats.Rendered, "skipped", stats.Skipped)
	return nil
}

// processFile 处理单个文件，返回是否渲染
func (p *Processor) processFile(path string) (bool, error) {
	base := filepath.Base(path)
	bySuffix := len(base) > len(p.opts.Suffix) && strings.HasSuffix(base, p.opts.Suffix)

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// 二进制文件静默跳过
	if !utf8.Valid(data) {
		slog.Debug("Skipping non-text file", "path", path)
		return false, nil
	}

	text := string(data)
	var markers []int
	if !bySuffix {
		text, markers = stripMarker(text, p.opts.Marker)
		if len(markers) == 0 {
			return false, nil
		}
	}
	byMarker := len(markers) > 0

	out, err := p.renderer.Render(path, text, p.values)
	if err != nil {
		var se *tmpl.SyntaxError
		if errors.As(err, &se) {
			se.Line = sourceLine(se.Line, markers)
			p.reportSyntaxError(se)
		}
		return false, err
	}

	dst := path
	if bySuffix {
		dst = strings.TrimSuffix(path, p.opts.Suffix)
	}

	if err := writeRendered(path, dst, out); err != nil {
		return false, err
	}

	slog.Debug("Template rendered", "src", path, "dst", dst, "marker", byMarker)
	return true, nil
}

// writeRendered 写入渲染结果；后缀模板复制权限位后删除源文件
func writeRendered(src, dst, out string) error {
	if src == dst {
		if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dst, err)
		}
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := os.Chmod(dst, info.Mode()&modeBits); err != nil {
		return fmt.Errorf("failed to copy mode to %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s: %w", src, err)
	}

	return nil
}

// reportSyntaxError 输出醒目的语法错误诊断
func (p *Processor) reportSyntaxError(se *tmpl.SyntaxError) {
	slog.Error("Template syntax error", "file", se.File, "line", se.Line, "error", se.Message)

	if p.Stderr == nil {
		return
	}
	_, _ = fmt.Fprintf(p.Stderr,
		"\n*** TEMPLATE SYNTAX ERROR ***\n%s:%d: %s\n*****************************\n\n",
		se.File, se.Line, se.Message)
}

// stripMarker 删除所有与 marker 完全相同的行，返回被删除行的行号 (从 1 开始，升序)
func stripMarker(text, marker string) (string, []int) {
	lines := strings.SplitAfter(text, "\n")
	kept := make([]string, 0, len(lines))
	var markers []int
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") == marker {
			markers = append(markers, i+1)
			continue
		}
		kept = append(kept, line)
	}
	if len(markers) == 0 {
		return text, nil
	}

	return strings.Join(kept, ""), markers
}

// sourceLine 将去掉标记行后的行号换算回源文件行号
func sourceLine(line int, markers []int) int {
	if line <= 0 {
		return line
	}
	for _, m := range markers {
		if m <= line {
			line++
		}
	}

	return line
}
