// Package logger 统一构造 zerolog 日志实例
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New 创建日志实例。format 为 console/pretty 时输出可读格式，其余输出 JSON
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter 同 New，输出到指定 writer
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	var out io.Writer = w
	if f := strings.ToLower(format); f == "console" || f == "pretty" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: w != os.Stderr && w != os.Stdout}
	}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel 解析日志级别，无法识别时为 info
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Component 为组件附加 component 字段
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
