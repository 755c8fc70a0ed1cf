package analytics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/analytics"
)

func TestLoadEnvFileCreatesAnonymousID(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	analytics.LoadEnvFile()

	envFile := filepath.Join(home, ".acidtest", ".env")
	_, err := os.Stat(envFile)
	require.NoError(t, err)
	assert.NotEmpty(t, os.Getenv("uuid"))
}

func TestReportEventNoopWithoutPublicKey(t *testing.T) {
	analytics.Init(false)
	analytics.PublicKey = ""
	// Must not panic or block when telemetry is effectively disabled.
	analytics.ReportEvent(analytics.ScanStarted)
}

func TestInitDisableMetrics(t *testing.T) {
	analytics.Init(true)
	analytics.PublicKey = "phc_test"
	// disabled via Init(true); must still be a no-op.
	analytics.ReportEvent(analytics.ScanCompleted)
	analytics.PublicKey = ""
}
