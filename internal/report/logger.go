package report

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dexArb/internal/model"
)

// NewLogger builds a zap logger that writes operator "log" records to out.
// Each line carries command, time in epoch milliseconds, level and log.
func NewLogger(out zapcore.WriteSyncer, level string) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:     "log",
		LevelKey:       "level",
		TimeKey:        "time",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     epochMillisEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), out, atomic)
	return zap.New(core).With(zap.String("command", model.CommandLog)), nil
}

func epochMillisEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendInt64(t.UnixMilli())
}
