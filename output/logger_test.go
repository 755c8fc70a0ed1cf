package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/currentlycurrently/acidtest/output"
)

func TestLoggerProgressGatedByVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity output.VerbosityLevel
		wantOut   bool
	}{
		{"default hides progress", output.VerbosityDefault, false},
		{"verbose shows progress", output.VerbosityVerbose, true},
		{"debug shows progress", output.VerbosityDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := output.NewLoggerWithWriter(tt.verbosity, &buf)
			l.Progress("scanning %d files", 3)
			assert.Equal(t, tt.wantOut, buf.Len() > 0)
		})
	}
}

func TestLoggerDebugRequiresDebugVerbosity(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityVerbose, &buf)
	l.Debug("internal state")
	assert.Zero(t, buf.Len())

	l = output.NewLoggerWithWriter(output.VerbosityDebug, &buf)
	l.Debug("internal state")
	assert.Contains(t, buf.String(), "internal state")
}

func TestLoggerWarningAndErrorAlwaysLog(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityDefault, &buf)
	l.Warning("pattern file skipped: %s", "broken.json")
	l.Error("bundle not found: %s", "/tmp/x")

	out := buf.String()
	assert.Contains(t, out, "warning: pattern file skipped: broken.json")
	assert.Contains(t, out, "error: bundle not found: /tmp/x")
}

func TestLoggerTimings(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityDefault, &buf)
	stop := l.StartTiming("layer3")
	stop()

	d, ok := l.GetTiming("layer3")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))
	assert.Len(t, l.GetAllTimings(), 1)
}

func TestLoggerIsVerboseIsDebug(t *testing.T) {
	l := output.NewLoggerWithWriter(output.VerbosityVerbose, &bytes.Buffer{})
	assert.True(t, l.IsVerbose())
	assert.False(t, l.IsDebug())

	l = output.NewLoggerWithWriter(output.VerbosityDebug, &bytes.Buffer{})
	assert.True(t, l.IsDebug())
}
