package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[2m"
	colorName  = "\x1b[38;5;108m" // muted green for component names
	colorWarn  = "\x1b[38;5;214m"
	colorError = "\x1b[38;5;167m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder renders "HH:MM:SS component message key=value ..." lines.
// Calm output for interactive use; hosts wanting machine logs use JSON mode.
type minimalEncoder struct {
	zapcore.Encoder
}

func newMinimalEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return &minimalEncoder{Encoder: zapcore.NewConsoleEncoder(cfg)}
}

func (e *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: e.Encoder.Clone()}
}

func (e *minimalEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(colorDim)
	line.AppendString(entry.Time.Format("15:04:05"))
	line.AppendString(colorReset)
	line.AppendByte(' ')

	switch entry.Level {
	case zapcore.WarnLevel:
		line.AppendString(colorWarn + "warn" + colorReset + " ")
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		line.AppendString(colorError + "error" + colorReset + " ")
	}

	if entry.LoggerName != "" {
		line.AppendString(colorName)
		line.AppendString(entry.LoggerName)
		line.AppendString(colorReset)
		line.AppendByte(' ')
	}

	line.AppendString(entry.Message)

	for _, f := range fields {
		line.AppendByte(' ')
		line.AppendString(colorDim)
		line.AppendString(f.Key)
		line.AppendByte('=')
		line.AppendString(fieldValue(f))
		line.AppendString(colorReset)
	}

	line.AppendByte('\n')
	return line, nil
}

func fieldValue(f zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	v, ok := enc.Fields[f.Key]
	if !ok {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	if strings.ContainsAny(s, " \t") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
