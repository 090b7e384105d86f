// Package logs builds the zap logger used by the CLI.
package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log level and the optional rotated log file.
type Config struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
	// Console receives human-readable output; nil means stderr.
	Console io.Writer `toml:"-"`
}

// DefaultLevel keeps normal runs quiet; the CLI prints its own status lines.
const DefaultLevel = "warn"

// ParseLevel parses a level name, falling back to DefaultLevel.
func ParseLevel(value string) zapcore.Level {
	lvl := zapcore.WarnLevel
	value = strings.TrimSpace(value)
	if value == "" {
		return lvl
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(value))); err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// New builds a logger writing colored console output and, when cfg.File is
// set, JSON lines to a lumberjack-rotated file.
func New(name string, cfg Config) *zap.Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.TimeKey = ""
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var console io.Writer = os.Stderr
	if cfg.Console != nil {
		console = cfg.Console
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), level)

	if cfg.File != "" {
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(fileWriter), level))
	}

	return zap.New(core).Named(name)
}
