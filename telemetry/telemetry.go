// Package telemetry reports anonymous, opt-out usage events for the
// compile driver. No file paths, IR content, or other potentially
// sensitive data is ever included in a reported property.
package telemetry

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
	// CompileCompleted is reported once per successful compile invocation.
	CompileCompleted = "compiler:compile_completed"
	// CompileFailed is reported when the input cannot be read or loaded,
	// or when every function is rejected.
	CompileFailed = "compiler:compile_failed"
)

var (
	PublicKey     string
	enableMetrics bool
	appVersion    string
)

// Init enables or disables telemetry for the process lifetime, per the
// --disable-metrics flag or the DISABLE_METRICS=1 environment variable.
func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics && os.Getenv("DISABLE_METRICS") != "1"
}

func SetVersion(version string) {
	appVersion = version
}

func createEnvFile() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Println("Error getting user home directory:", err)
		return
	}
	envFile := filepath.Join(homeDir, ".birl", ".env")
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
			fmt.Println("Error creating directory:", err)
			return
		}
		env := map[string]string{
			"uuid": uuid.New().String(),
		}
		if err := godotenv.Write(env, envFile); err != nil {
			fmt.Println("Error writing to .env file:", err)
		}
	}
}

// LoadEnvFile creates (if absent) and loads the install-id env file, so a
// stable anonymous id is used across invocations.
func LoadEnvFile() {
	createEnvFile()
	envFile := filepath.Join(os.Getenv("HOME"), ".birl", ".env")
	_ = godotenv.Load(envFile)
}

func ReportEvent(event string) {
	ReportEventWithProperties(event, nil)
}

// ReportEventWithProperties sends one event with the given properties
// plus OS, architecture, Go version and tool version. The driver passes
// only counts (functions, blocks, instructions, rejected functions) and a
// short failure-stage tag — never file paths or IR content.
func ReportEventWithProperties(event string, properties map[string]interface{}) {
	if !enableMetrics || PublicKey == "" {
		return
	}

	disableGeoIP := false
	client, err := posthog.NewWithConfig(
		PublicKey,
		posthog.Config{
			Endpoint:     "https://us.i.posthog.com",
			DisableGeoIP: &disableGeoIP,
		},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()

	capture := posthog.Capture{
		DistinctId: os.Getenv("uuid"),
		Event:      event,
	}

	captureProperties := posthog.NewProperties()
	captureProperties.Set("os", runtime.GOOS)
	captureProperties.Set("arch", runtime.GOARCH)
	captureProperties.Set("go_version", runtime.Version())
	if appVersion != "" {
		captureProperties.Set("birl_version", appVersion)
	}

	for k, v := range properties {
		captureProperties.Set(k, v)
	}

	capture.Properties = captureProperties

	if err := client.Enqueue(capture); err != nil {
		fmt.Println(err)
	}
}
