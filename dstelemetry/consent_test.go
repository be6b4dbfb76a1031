package dstelemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearTelemetryEnv(t *testing.T) {
	t.Helper()
	for _, name := range skipTelemetryEnvVars {
		t.Setenv(name, "")
	}
	for _, name := range skipTelemetryEnvVars {
		os.Unsetenv(name)
	}
}

func writeConsentFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConsentFileName), []byte(contents), 0o600))
	return dir
}

func TestCheckConsentDefaultsToOn(t *testing.T) {
	clearTelemetryEnv(t)

	t.Run("no consent file", func(t *testing.T) {
		assert.True(t, CheckConsent(t.TempDir()))
	})

	t.Run("empty consent file", func(t *testing.T) {
		assert.True(t, CheckConsent(writeConsentFile(t, "")))
	})

	t.Run("consent file without a consent field", func(t *testing.T) {
		assert.True(t, CheckConsent(writeConsentFile(t, "other_key: 1\n")))
	})

	t.Run("unparseable consent file", func(t *testing.T) {
		assert.True(t, CheckConsent(writeConsentFile(t, "{{{not yaml")))
	})

	t.Run("consent true", func(t *testing.T) {
		assert.True(t, CheckConsent(writeConsentFile(t, "consent: true\n")))
	})
}

func TestCheckConsentFileOptOut(t *testing.T) {
	clearTelemetryEnv(t)
	assert.False(t, CheckConsent(writeConsentFile(t, "consent: false\n")))
}

func TestCheckConsentEnvironmentOptOut(t *testing.T) {
	for _, name := range skipTelemetryEnvVars {
		t.Run(name, func(t *testing.T) {
			clearTelemetryEnv(t)
			t.Setenv(name, "anything")
			// The environment wins even when the file says yes.
			assert.False(t, CheckConsent(writeConsentFile(t, "consent: true\n")))
		})
	}
}

func TestIsKnownCIEnv(t *testing.T) {
	clearCI := func(t *testing.T) {
		t.Helper()
		for _, name := range append([]string{"CI"}, knownCIEnvVars...) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	t.Run("no CI markers", func(t *testing.T) {
		clearCI(t)
		assert.False(t, IsKnownCIEnv())
	})

	t.Run("generic CI variable", func(t *testing.T) {
		clearCI(t)
		t.Setenv("CI", "true")
		assert.True(t, IsKnownCIEnv())
	})

	t.Run("generic CI variable set to false", func(t *testing.T) {
		clearCI(t)
		t.Setenv("CI", "false")
		assert.False(t, IsKnownCIEnv())
	})

	t.Run("system-specific variables", func(t *testing.T) {
		for _, name := range knownCIEnvVars {
			t.Run(name, func(t *testing.T) {
				clearCI(t)
				t.Setenv(name, "some value")
				assert.True(t, IsKnownCIEnv())
			})
		}
	})
}
