package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// DoctorCommand returns the CLI command definition for the 'doctor'
// subcommand, which diagnoses common setup issues before the server is
// wired into an agent.
func DoctorCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Diagnose common setup and configuration issues",
		Description: `Run checks to verify sentry-mcp is properly configured.

This command checks:
  - SENTRY_AUTH_TOKEN presence
  - Backend host selection (SENTRY_HOST or config file)
  - Proxy environment variables
  - Project config file discovery and validity

Exit codes:
  0 - All critical checks passed
  1 - One or more issues found`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDoctor(version)
		},
	}
}

type checkResult struct {
	Name       string
	Status     string // "pass", "warn", "fail"
	Message    string
	Suggestion string
}

// doctorEnv seams out the process environment and filesystem for tests.
type doctorEnv interface {
	Getenv(key string) string
	FindConfig() (string, error)
	LoadConfig(path string) (*Config, error)
}

type realDoctorEnv struct{}

func (realDoctorEnv) Getenv(key string) string               { return os.Getenv(key) }
func (realDoctorEnv) FindConfig() (string, error)            { return FindProjectConfig() }
func (realDoctorEnv) LoadConfig(path string) (*Config, error) { return LoadConfigFromFile(path) }

func runDoctor(version string) error {
	return runDoctorWithEnv(version, realDoctorEnv{})
}

func runDoctorWithEnv(version string, env doctorEnv) error {
	fmt.Printf("🔍 sentry-mcp doctor v%s\n\n", version)

	checks := []func(env doctorEnv) checkResult{
		checkAuthToken,
		checkHost,
		checkProxy,
		checkConfigFile,
	}

	failCount := 0
	for _, check := range checks {
		result := check(env)
		printCheckResult(result)
		if result.Status == "fail" {
			failCount++
		}
	}

	fmt.Println()
	if failCount > 0 {
		fmt.Printf("❌ Found %d issue(s) that need attention\n", failCount)
		return fmt.Errorf("found %d issues that need attention", failCount)
	}
	fmt.Printf("✅ All checks passed!\n")
	fmt.Printf("💡 Run 'sentry-mcp serve --verbose' to start the server\n")
	return nil
}

func printCheckResult(result checkResult) {
	var icon string
	switch result.Status {
	case "pass":
		icon = "✓"
	case "warn":
		icon = "⚠"
	case "fail":
		icon = "✗"
	}

	fmt.Printf("%s %s\n", icon, result.Message)
	if result.Suggestion != "" {
		fmt.Printf("  %s\n", result.Suggestion)
	}
}

func checkAuthToken(env doctorEnv) checkResult {
	token := env.Getenv("SENTRY_AUTH_TOKEN")
	if token == "" {
		return checkResult{
			Name:       "auth_token",
			Status:     "fail",
			Message:    "SENTRY_AUTH_TOKEN is not set",
			Suggestion: "Create an auth token in Sentry (Settings → Auth Tokens) and export SENTRY_AUTH_TOKEN",
		}
	}
	masked := token
	if len(masked) > 8 {
		masked = masked[:4] + "..." + masked[len(masked)-4:]
	}
	return checkResult{
		Name:    "auth_token",
		Status:  "pass",
		Message: fmt.Sprintf("SENTRY_AUTH_TOKEN is set (%s)", masked),
	}
}

func checkHost(env doctorEnv) checkResult {
	if host := env.Getenv("SENTRY_HOST"); host != "" {
		return checkResult{
			Name:    "host",
			Status:  "pass",
			Message: fmt.Sprintf("Backend host: %s (from SENTRY_HOST)", host),
		}
	}
	return checkResult{
		Name:       "host",
		Status:     "pass",
		Message:    "Backend host: sentry.io (default)",
		Suggestion: "Set SENTRY_HOST for self-hosted instances",
	}
}

func checkProxy(env doctorEnv) checkResult {
	for _, name := range []string{"SOCKS_PROXY", "socks_proxy", "HTTPS_PROXY", "https_proxy"} {
		if v := env.Getenv(name); v != "" {
			return checkResult{
				Name:    "proxy",
				Status:  "pass",
				Message: fmt.Sprintf("Proxy configured via %s: %s", name, v),
			}
		}
	}
	return checkResult{
		Name:    "proxy",
		Status:  "pass",
		Message: "No proxy configured (direct connection)",
	}
}

func checkConfigFile(env doctorEnv) checkResult {
	path, err := env.FindConfig()
	if err != nil || path == "" {
		return checkResult{
			Name:       "config_file",
			Status:     "warn",
			Message:    "No " + ConfigFileName + " found",
			Suggestion: "Optional: create one at the project root to pin host and timeout settings",
		}
	}
	if _, err := env.LoadConfig(path); err != nil {
		return checkResult{
			Name:       "config_file",
			Status:     "fail",
			Message:    fmt.Sprintf("Config file %s is not valid YAML", path),
			Suggestion: fmt.Sprintf("Error: %v", err),
		}
	}
	return checkResult{
		Name:    "config_file",
		Status:  "pass",
		Message: fmt.Sprintf("Config file found: %s", path),
	}
}
