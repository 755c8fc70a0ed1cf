// Package analytics sends anonymized, opt-out usage telemetry: no file
// paths, no bundle names, no finding content — only event names, runtime
// metadata, and a stable per-machine random ID. Grounded directly on the
// teacher's analytics package (same .env-backed anonymous ID, same
// posthog-go client, same runtime-metadata properties), adapted to this
// tool's own config directory and event names.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	ScanStarted   = "acidtest:scan_started"
	ScanCompleted = "acidtest:scan_completed"
	ScanFailed    = "acidtest:scan_failed"
)

// PublicKey is the posthog project key, injected at build time. Events
// are never sent when it's empty.
var (
	PublicKey     string
	enableMetrics bool
	appVersion    string
)

// Init records whether metrics are enabled for this process.
func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics
}

// SetVersion records the tool version attached to every event.
func SetVersion(version string) {
	appVersion = version
}

func envFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".acidtest", ".env"), nil
}

func createEnvFile() {
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	if _, err := os.Stat(envFile); !os.IsNotExist(err) {
		return
	}
	if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
		return
	}
	env := map[string]string{"uuid": uuid.New().String()}
	_ = godotenv.Write(env, envFile)
}

// LoadEnvFile ensures a per-machine anonymous ID exists and loads it
// into the process environment.
func LoadEnvFile() {
	createEnvFile()
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(envFile)
}

// ReportEvent sends event with no additional properties.
func ReportEvent(event string) {
	ReportEventWithProperties(event, nil)
}

// ReportEventWithProperties sends event with extra properties merged
// over the automatic runtime metadata. Properties must not carry PII:
// no file paths, bundle names, or finding content.
func ReportEventWithProperties(event string, properties map[string]interface{}) {
	if !enableMetrics || PublicKey == "" {
		return
	}

	client, err := newClient()
	if err != nil {
		logErr(err)
		return
	}
	defer client.Close()

	capture := posthog.Capture{
		DistinctId: os.Getenv("uuid"),
		Event:      event,
		Properties: runtimeProperties(properties),
	}
	if err := client.Enqueue(capture); err != nil {
		logErr(err)
	}
}

func newClient() (posthog.Client, error) {
	disableGeoIP := true
	return posthog.NewWithConfig(PublicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
}

// runtimeProperties returns the automatic os/arch/version metadata merged
// with the caller-supplied properties, caller values taking precedence.
func runtimeProperties(extra map[string]interface{}) posthog.Properties {
	props := posthog.NewProperties()
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("go_version", runtime.Version())
	if appVersion != "" {
		props.Set("acidtest_version", appVersion)
	}
	for k, v := range extra {
		props.Set(k, v)
	}
	return props
}

func logErr(err error) {
	fmt.Fprintln(os.Stderr, err)
}
