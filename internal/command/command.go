// Package command 提供 jinjafs 命令行入口。
//
//	jinjafs --process-rootfs <dir>   渲染 dir 下的模板文件
//	jinjafs --process-ovsdb <file>   渲染单个 .json.jinja 文件到标准输出
//
// 参数数量不为 2 或选择器无法识别时静默退出。
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261018-go-pkg-jinjafs/internal/config"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/rootfs"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/tmpl"
)

const (
	// ProcessRootfs rootfs 模式选择器
	ProcessRootfs = "--process-rootfs"
	// ProcessOvsdb 单文件模式选择器
	ProcessOvsdb = "--process-ovsdb"
)

// Command 应用命令
var Command = New()

// New 创建应用命令。
//
// 选择器按位置参数处理，不经过 flag 解析。
func New() *cli.Command {
	return &cli.Command{
		Name:            "jinjafs",
		Usage:           "将构建期配置注入 rootfs 模板文件",
		UsageText:       "jinjafs --process-rootfs <dir> | --process-ovsdb <file>",
		SkipFlagParsing: true,
		HideHelp:        true,
		HideHelpCommand: true,
		Action:          action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 2 {
		slog.Debug("Wrong number of arguments, nothing to do", "args", args)
		return nil
	}

	switch args[0] {
	case ProcessRootfs:
		return processRootfs(cmd, args[1])
	case ProcessOvsdb:
		return processOvsdb(cmd, args[1])
	default:
		slog.Debug("Unknown selector, nothing to do", "selector", args[0])
		return nil
	}
}

func processRootfs(cmd *cli.Command, dir string) error {
	cfg, values, err := setup()
	if err != nil {
		return err
	}

	engine, err := tmpl.NewEngine(append(cfg.EngineOptions(), tmpl.WithBaseDir(dir))...)
	if err != nil {
		return err
	}

	p := rootfs.New(engine, values, cfg.RootfsOptions())
	p.Stderr = cmd.Root().ErrWriter

	return p.ProcessRootfs(dir)
}

func processOvsdb(cmd *cli.Command, path string) error {
	cfg, values, err := setup()
	if err != nil {
		return err
	}

	engine, err := tmpl.NewEngine(cfg.EngineOptions()...)
	if err != nil {
		return err
	}

	p := rootfs.New(engine, values, cfg.RootfsOptions())
	p.Stderr = cmd.Root().ErrWriter

	return p.ProcessFile(path, cmd.Root().Writer)
}

// setup 加载工具配置并收集配置变量，每次调用只收集一次
func setup() (*config.Config, kconfig.Values, error) {
	cfg, err := config.Load(version.GetAppRawName())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	values, err := kconfig.Collect(cfg.CollectOptions()...)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Collected config values", "keys", values.Keys())

	return cfg, values, nil
}
