package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		l := New(in, "json")
		assert.True(t, l.Core().Enabled(want), in)
		if want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(want-1), in)
		}
	}
}
