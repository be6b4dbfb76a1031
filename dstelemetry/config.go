// Package dstelemetry implements anonymized usage telemetry for dataset
// tooling. It is shipped as a hook (see TelemetryHook) that observes CLI
// command runs and catalog construction, and posts batched events to a
// collection endpoint in the background.
//
// No event ever contains raw usernames, hostnames, file paths, or free-form
// command arguments. Identities are one-way hashes and command arguments
// are masked against a known vocabulary before they leave the process.
//
// Users can opt out at any time; see CheckConsent.
package dstelemetry

import (
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// DefaultEndpoint is the URI events are posted to when Config.Endpoint is unset.
const DefaultEndpoint = "https://telemetry.datacraft.dev/api/track"

// DefaultFlushInterval is the default value for Config.FlushInterval.
const DefaultFlushInterval = 5 * time.Second

// DefaultCapacity is the default value for Config.Capacity.
const DefaultCapacity = 100

// Config contains options affecting the behavior of the telemetry engine.
type Config struct {
	// The URI to which events will be sent.
	Endpoint string
	// The application identifier included in every payload.
	AppID string
	// The capacity of the events buffer. Up to this many events are held in memory before
	// flushing. If the capacity is exceeded before the buffer is flushed, events will be
	// discarded.
	Capacity int
	// The time between flushes of the event buffer.
	FlushInterval time.Duration
	// HTTP headers to be sent with each request to the collection endpoint.
	Headers http.Header
	// The HTTP client instance to use.
	HTTPClient *http.Client
	// The destination for log output.
	Loggers ldlog.Loggers
}
