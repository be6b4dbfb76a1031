package dstelemetry

import (
	"net/http"
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-oss/go-dataset-sdk/internal/sharedtest"
)

const fakeEndpoint = "https://fake-telemetry-server/api/track"

func init() {
	retryDelay = 10 * time.Millisecond
}

func fixedEvent(name string) Event {
	return Event{
		Name:      name,
		Identity:  "abc123",
		Timestamp: fixedTime(),
		Properties: map[string]ldvalue.Value{
			"os": ldvalue.String("linux"),
		},
	}
}

func makeProcessorWithHandler(t *testing.T, handler http.Handler, modify func(*Config)) *Processor {
	t.Helper()
	loggers, _ := sharedtest.NewTestLoggers()
	config := Config{
		Endpoint:      fakeEndpoint,
		AppID:         "my-app",
		HTTPClient:    httphelpers.ClientFromHandler(handler),
		FlushInterval: time.Hour, // tests flush explicitly
		Loggers:       loggers,
	}
	if modify != nil {
		modify(&config)
	}
	p := NewProcessor(config)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func requireRequest(t *testing.T, requestsCh <-chan httphelpers.HTTPRequestInfo) httphelpers.HTTPRequestInfo {
	t.Helper()
	select {
	case r := <-requestsCh:
		return r
	case <-time.After(time.Second * 5):
		require.FailNow(t, "timed out waiting for request")
		return httphelpers.HTTPRequestInfo{}
	}
}

func requireNoMoreRequests(t *testing.T, requestsCh <-chan httphelpers.HTTPRequestInfo) {
	t.Helper()
	select {
	case r := <-requestsCh:
		require.FailNow(t, "received an unexpected request", "%s", r.Body)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProcessorPostsEventBatch(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	p := makeProcessorWithHandler(t, handler, nil)

	p.SendEvent(fixedEvent("CLI command"))
	p.SendEvent(fixedEvent("Catalog statistics"))
	p.Flush()

	r := requireRequest(t, requestsCh)
	assert.Equal(t, fakeEndpoint, r.Request.URL.String())
	assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
	assert.NotEqual(t, "", r.Request.Header.Get(payloadIDHeader))

	expected, err := makeEventsPayload("my-app", []Event{fixedEvent("CLI command"), fixedEvent("Catalog statistics")})
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(r.Body))
}

func TestProcessorSendsCustomHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	headers := make(http.Header)
	headers.Set("Authorization", "Bearer fake-token")
	p := makeProcessorWithHandler(t, handler, func(c *Config) { c.Headers = headers })

	p.SendEvent(fixedEvent("CLI command"))
	p.Flush()

	r := requireRequest(t, requestsCh)
	assert.Equal(t, "Bearer fake-token", r.Request.Header.Get("Authorization"))
}

func TestProcessorDoesNotPostEmptyBatch(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	p := makeProcessorWithHandler(t, handler, nil)

	p.Flush()

	requireNoMoreRequests(t, requestsCh)
}

func TestProcessorRetriesOnceOnRecoverableError(t *testing.T) {
	for _, status := range []int{400, 408, 429, 500, 503} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			handler, requestsCh := httphelpers.RecordingHandler(
				httphelpers.SequentialHandler(
					httphelpers.HandlerWithStatus(status), // fails once
					httphelpers.HandlerWithStatus(202),    // then succeeds
				),
			)
			p := makeProcessorWithHandler(t, handler, nil)

			p.SendEvent(fixedEvent("CLI command"))
			p.Flush()

			r0 := requireRequest(t, requestsCh)
			r1 := requireRequest(t, requestsCh)
			assert.Equal(t, string(r0.Body), string(r1.Body))
			// A retried payload keeps its ID so the endpoint can deduplicate.
			id0 := r0.Request.Header.Get(payloadIDHeader)
			assert.NotEqual(t, "", id0)
			assert.Equal(t, id0, r1.Request.Header.Get(payloadIDHeader))
			requireNoMoreRequests(t, requestsCh)
		})
	}
}

func TestProcessorGivesUpAfterTwoFailedAttempts(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(503))
	p := makeProcessorWithHandler(t, handler, nil)

	p.SendEvent(fixedEvent("CLI command"))
	p.Flush()

	requireRequest(t, requestsCh)
	requireRequest(t, requestsCh)
	requireNoMoreRequests(t, requestsCh)

	// A recoverable failure does not disable the processor.
	p.SendEvent(fixedEvent("CLI command"))
	p.Flush()
	requireRequest(t, requestsCh)
}

func TestProcessorDisablesItselfOnUnrecoverableError(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(401))
	loggers, mockLog := sharedtest.NewTestLoggers()
	p := makeProcessorWithHandler(t, handler, func(c *Config) { c.Loggers = loggers })

	p.SendEvent(fixedEvent("CLI command"))
	p.Flush()
	requireRequest(t, requestsCh)
	requireNoMoreRequests(t, requestsCh) // 401 is not retried

	require.NoError(t, p.Close())
	assert.NotEmpty(t, mockLog.GetOutput(ldlog.Error))

	p.SendEvent(fixedEvent("CLI command"))
	p.Flush()
	requireNoMoreRequests(t, requestsCh)
}

func TestProcessorCloseFlushesPendingEvents(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	p := makeProcessorWithHandler(t, handler, nil)

	p.SendEvent(fixedEvent("CLI command"))
	require.NoError(t, p.Close())

	r := requireRequest(t, requestsCh)
	assert.Contains(t, string(r.Body), "CLI command")

	// Closing twice is safe.
	require.NoError(t, p.Close())
}

func TestProcessorDropsEventsBeyondCapacity(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	loggers, mockLog := sharedtest.NewTestLoggers()
	p := makeProcessorWithHandler(t, handler, func(c *Config) {
		c.Capacity = 1
		c.Loggers = loggers
	})

	p.SendEvent(fixedEvent("kept"))
	p.SendEvent(fixedEvent("dropped"))
	require.NoError(t, p.Close())

	r := requireRequest(t, requestsCh)
	assert.Contains(t, string(r.Body), "kept")
	assert.NotContains(t, string(r.Body), "dropped")
	assert.NotEmpty(t, mockLog.GetOutput(ldlog.Warn))
}
