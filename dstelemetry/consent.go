package dstelemetry

import (
	"os"
	"path/filepath"
	"strconv"

	yaml "gopkg.in/ghodss/yaml.v1"
)

// ConsentFileName is the name of the opt-out file looked up in the project
// root.
const ConsentFileName = ".telemetry"

// Environment variables that disable telemetry when set to any value,
// regardless of what the consent file says.
var skipTelemetryEnvVars = []string{"DISABLE_TELEMETRY", "DO_NOT_TRACK"}

// Environment variables that identify well-known CI systems.
var knownCIEnvVars = []string{
	"CODEBUILD_BUILD_ID",
	"JENKINS_URL",
	"TRAVIS",
	"GITLAB_CI",
	"CIRCLECI",
	"BITBUCKET_BUILD_NUMBER",
	"GITHUB_ACTION",
}

type consentFile struct {
	Consent *bool `json:"consent"`
}

// CheckConsent reports whether telemetry may be collected for the project
// at projectPath. Telemetry is on by default; it is off when an opt-out
// environment variable is set, or when the project's consent file contains
// `consent: false`. A missing, empty, or unreadable consent file does not
// opt the user out.
func CheckConsent(projectPath string) bool {
	for _, name := range skipTelemetryEnvVars {
		if os.Getenv(name) != "" {
			return false
		}
	}
	data, err := os.ReadFile(filepath.Join(projectPath, ConsentFileName))
	if err != nil {
		return true
	}
	var f consentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return true
	}
	if f.Consent == nil {
		return true
	}
	return *f.Consent
}

// IsKnownCIEnv reports whether the process appears to be running under a CI
// system, either via the generic CI variable or one of the well-known
// system-specific ones.
func IsKnownCIEnv() bool {
	if ci, err := strconv.ParseBool(os.Getenv("CI")); err == nil && ci {
		return true
	}
	for _, name := range knownCIEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
