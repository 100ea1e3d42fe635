package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/constellation/internal/config"
)

func sampledLogger(core zapcore.Core, levels map[zapcore.Level]LevelSamplingConfig) *Logger {
	sampled := newSampledCore(core, SamplingConfig{
		Enabled: true,
		Tick:    config.Duration(time.Minute),
		Levels:  levels,
	})
	return &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}
}

func TestNewSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Equal(t, core, newSampledCore(core, SamplingConfig{Enabled: false}))
}

func TestNewSampledCore_ErrorsNeverSampled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := sampledLogger(core, DefaultLevelSamplingConfig())

	for i := 0; i < 300; i++ {
		logger.Error(context.Background(), "error message")
	}
	assert.Equal(t, 300, observed.FilterMessage("error message").Len())
}

func TestNewSampledCore_PerLevelRates(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	logger := sampledLogger(core, map[zapcore.Level]LevelSamplingConfig{
		zapcore.InfoLevel: {Initial: 5, Thereafter: 0},
		zapcore.WarnLevel: {Initial: 2, Thereafter: 0},
	})

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		logger.Info(ctx, "info message")
		logger.Warn(ctx, "warn message")
		logger.Debug(ctx, "debug message")
	}

	assert.Equal(t, 5, observed.FilterMessage("info message").Len())
	assert.Equal(t, 2, observed.FilterMessage("warn message").Len())
	// Debug has no entry and falls back to the Info rate.
	assert.Equal(t, 5, observed.FilterMessage("debug message").Len())
}

func TestLevelFilterCore_InfoBoundary(t *testing.T) {
	core, _ := observer.New(TraceLevel)
	onlyInfo := &levelFilterCore{Core: core, minLevel: zapcore.InfoLevel, maxLevel: zapcore.InfoLevel, hasMin: true, hasMax: true}

	assert.True(t, onlyInfo.Enabled(zapcore.InfoLevel))
	assert.False(t, onlyInfo.Enabled(zapcore.DebugLevel))
	assert.False(t, onlyInfo.Enabled(zapcore.WarnLevel))

	child := onlyInfo.With([]zapcore.Field{zap.String("k", "v")})
	assert.False(t, child.Enabled(zapcore.WarnLevel))
}
