// =============================================================================
// swarmflow 命令行入口
// =============================================================================
// 加载声明式团队定义，运行 Swarm 对话并管理已保存的路由状态
//
// 使用方法:
//
//	swarmflow validate --team team.yaml                       # 校验团队定义
//	swarmflow run --team team.yaml --task "hello"             # 运行团队
//	swarmflow run --team team.yaml --conversation c1 \
//	    --handoff-to Bob --task "here you go"                 # 恢复已暂停的对话
//	swarmflow state show --conversation c1                    # 查看保存的状态
//	swarmflow state list                                      # 列出已保存的会话
//	swarmflow state delete --conversation c1                  # 删除保存的状态
//	swarmflow version                                         # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/swarmflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = runValidate(os.Args[2:], os.Stdout)
	case "run":
		err = runRun(os.Args[2:], os.Stdout)
	case "state":
		err = runState(os.Args[2:], os.Stdout)
	case "version":
		printVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "swarmflow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `swarmflow - handoff-routed multi-agent teams

Usage:
  swarmflow <command> [options]

Commands:
  validate  Check a team definition and print its participants
  run       Run a team on a task or resume a saved conversation
  state     Inspect saved conversations (show, list, delete)
  version   Show version information
  help      Show this help message

Common options:
  --config <path>         Path to configuration file (YAML)

Options for 'run':
  --team <path>           Team definition (YAML or JSON)
  --conversation <id>     Conversation ID used for checkpoints
  --task <text>           Task text sent by --sender
  --sender <name>         Sender of the task message (default "user")
  --handoff-to <name>     Send the task as a handoff to this participant
  --metrics-addr <addr>   Serve Prometheus metrics while the run is in progress

Examples:
  swarmflow validate --team examples/travel.yaml
  swarmflow run --team team.yaml --conversation trip-1 --task "Book a flight"
  swarmflow run --team team.yaml --conversation trip-1 --handoff-to travel_agent --task "Paris"
  swarmflow state show --conversation trip-1
  swarmflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
