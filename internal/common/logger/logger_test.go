// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "predict-loan-approval"})

	log.Debug("debug", nil)
	log.Info("predicted", map[string]interface{}{"loanStatus": "Approved"})
	log.WithError(errors.New("boom")).Warn("warned", nil)
	log.With(map[string]interface{}{"field": "Gender"}).Error("failed", map[string]interface{}{"cause": errors.New("unknown")})

	entries := logs.All()
	assert.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "predict-loan-approval", entries[0].ContextMap()["taskType"])

	assert.Equal(t, "Approved", entries[1].ContextMap()["loanStatus"])

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "Gender", entries[3].ContextMap()["field"])
	assert.Equal(t, "unknown", entries[3].ContextMap()["cause"])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json")
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.muted))
		})
	}
}

func TestNoOpAndTestLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().Info("ignored", map[string]interface{}{"k": "v"})
		NewTestLogger(t).Info("visible in -v output", nil)
		NewStructured("info", "console").Debug("muted", nil)
	})
}
