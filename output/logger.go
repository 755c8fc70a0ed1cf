package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Logger provides structured progress logging with verbosity control.
// Output goes to stderr so stdout stays reserved for the report.
type Logger struct {
	verbosity    VerbosityLevel
	writer       io.Writer
	startTime    time.Time
	timings      map[string]time.Duration
	isTTY        bool
	progressBar  *progressbar.ProgressBar
	showProgress bool
}

// NewLogger creates a logger with the given verbosity, writing to stderr.
func NewLogger(verbosity VerbosityLevel) *Logger {
	writer := os.Stderr
	isTTY := IsTTY(writer)
	return &Logger{
		verbosity:    verbosity,
		writer:       writer,
		startTime:    time.Now(),
		timings:      make(map[string]time.Duration),
		isTTY:        isTTY,
		showProgress: isTTY,
	}
}

// NewLoggerWithWriter creates a logger with a custom writer, for testing.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity:    verbosity,
		writer:       w,
		startTime:    time.Now(),
		timings:      make(map[string]time.Duration),
		isTTY:        IsTTY(w),
		showProgress: false,
	}
}

// Progress logs a line at VerbosityVerbose and above.
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs a summary line at VerbosityVerbose and above.
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs a line only at VerbosityDebug.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[debug] "+format+"\n", args...)
	}
}

// Warning always logs, regardless of verbosity. Used for degraded,
// non-fatal errors that a scan proceeds past: pattern-load diagnostics
// and config-load errors.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "warning: "+format+"\n", args...)
}

// Error always logs, regardless of verbosity. Used for the fatal
// acidterr.InputError case.
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "error: "+format+"\n", args...)
}

// StartTiming starts a timing span for name and returns a stop function;
// calling it records the elapsed duration, which GetTiming then returns.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns the recorded duration for name, if any.
func (l *Logger) GetTiming(name string) (time.Duration, bool) {
	d, ok := l.timings[name]
	return d, ok
}

// GetAllTimings returns every recorded timing.
func (l *Logger) GetAllTimings() map[string]time.Duration {
	return l.timings
}

// PrintTimingSummary writes every recorded timing at VerbosityVerbose
// and above, sorted by name for stable output.
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	names := make([]string, 0, len(l.timings))
	for name := range l.timings {
		names = append(names, name)
	}
	sortStrings(names)
	for _, name := range names {
		fmt.Fprintf(l.writer, "  %s: %s\n", name, formatDuration(l.timings[name]))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Verbosity returns the logger's configured verbosity.
func (l *Logger) Verbosity() VerbosityLevel {
	return l.verbosity
}

// IsVerbose reports whether the logger is at least VerbosityVerbose.
func (l *Logger) IsVerbose() bool {
	return l.verbosity >= VerbosityVerbose
}

// IsDebug reports whether the logger is at VerbosityDebug.
func (l *Logger) IsDebug() bool {
	return l.verbosity >= VerbosityDebug
}

// IsTTY reports whether the logger's writer is an interactive terminal.
func (l *Logger) IsTTY() bool {
	return l.isTTY
}

// GetWriter returns the logger's underlying writer.
func (l *Logger) GetWriter() io.Writer {
	return l.writer
}

// StartProgress starts a determinate progress bar over total items,
// labeled description. No-op when the writer isn't a TTY.
func (l *Logger) StartProgress(total int, description string) {
	if !l.showProgress {
		return
	}
	l.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
	)
}

// UpdateProgress advances the progress bar by one step.
func (l *Logger) UpdateProgress() {
	if l.progressBar != nil {
		_ = l.progressBar.Add(1)
	}
}

// FinishProgress finalizes and clears the progress bar.
func (l *Logger) FinishProgress() {
	if l.progressBar != nil {
		_ = l.progressBar.Finish()
		l.progressBar = nil
	}
}

// SetProgressDescription updates the progress bar's label mid-scan.
func (l *Logger) SetProgressDescription(description string) {
	if l.progressBar != nil {
		l.progressBar.Describe(description)
	}
}

// IsProgressEnabled reports whether progress bar rendering is active.
func (l *Logger) IsProgressEnabled() bool {
	return l.showProgress
}
