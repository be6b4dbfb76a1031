package dstelemetry

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const payloadIDHeader = "X-Datacraft-Payload-ID"

// Overridden in tests to avoid slow retries.
var retryDelay = 1 * time.Second

type sendEventsTask struct {
	client *http.Client
	config Config
}

func startSendTask(config Config, flushCh <-chan *flushPayload, workersGroup *sync.WaitGroup,
	unrecoverableFn func(statusCode int)) {
	t := sendEventsTask{
		client: config.HTTPClient,
		config: config,
	}
	go t.run(flushCh, unrecoverableFn, workersGroup)
}

func (t *sendEventsTask) run(flushCh <-chan *flushPayload, unrecoverableFn func(int),
	workersGroup *sync.WaitGroup) {
	for {
		payload, more := <-flushCh
		if !more {
			// Channel has been closed - we're shutting down
			break
		}
		statusCode := t.postEvents(payload.events)
		if statusCode > 0 && !isHTTPErrorRecoverable(statusCode) {
			unrecoverableFn(statusCode)
		}
		workersGroup.Done() // Decrement the count of in-progress posts
	}
}

// postEvents serializes and posts one batch, retrying once after a short
// pause on connection errors or recoverable HTTP statuses. It returns the
// last HTTP status received, or 0 if no response was obtained.
func (t *sendEventsTask) postEvents(events []Event) int {
	jsonPayload, err := makeEventsPayload(t.config.AppID, events)
	if err != nil {
		t.config.Loggers.Errorf("Unexpected error marshalling telemetry event json: %+v", err)
		return 0
	}

	// The payload ID lets the endpoint deduplicate if a retry goes through
	// after the first attempt actually succeeded.
	payloadUUID, _ := uuid.NewRandom()
	payloadID := payloadUUID.String() // if NewRandom somehow failed, we'll just proceed with an empty string

	t.config.Loggers.Debugf("Sending %d telemetry events: %s", len(events), jsonPayload)

	statusCode := 0
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			t.config.Loggers.Warn("Will retry posting telemetry events shortly")
			time.Sleep(retryDelay)
		}
		req, reqErr := http.NewRequest("POST", t.config.Endpoint, bytes.NewReader(jsonPayload))
		if reqErr != nil {
			t.config.Loggers.Errorf("Unexpected error while creating telemetry request: %+v", reqErr)
			return 0
		}
		for k, vv := range t.config.Headers {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		req.Header.Add("Content-Type", "application/json")
		req.Header.Add(payloadIDHeader, payloadID)

		resp, respErr := t.client.Do(req)
		if resp != nil && resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if respErr != nil {
			t.config.Loggers.Warnf("Unexpected error while sending telemetry events: %+v", respErr)
			continue
		}
		statusCode = resp.StatusCode
		if resp.StatusCode >= 400 && isHTTPErrorRecoverable(resp.StatusCode) {
			t.config.Loggers.Warn(httpErrorMessage(resp.StatusCode, "posting telemetry events", "will retry"))
			continue
		}
		break
	}
	return statusCode
}

func httpErrorMessage(statusCode int, context string, recoverableMessage string) string {
	statusDesc := ""
	if statusCode == 401 {
		statusDesc = " (invalid application ID)"
	}
	resultMessage := recoverableMessage
	if !isHTTPErrorRecoverable(statusCode) {
		resultMessage = "giving up permanently"
	}
	return fmt.Sprintf("Received HTTP error %d%s for %s - %s",
		statusCode, statusDesc, context, resultMessage)
}

// Tests whether an HTTP error status represents a condition that might resolve on its own if we retry,
// or at least should not make us permanently stop sending requests.
func isHTTPErrorRecoverable(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		switch statusCode {
		case 400: // bad request
			return true
		case 408: // request timeout
			return true
		case 429: // too many requests
			return true
		default:
			return false // all other 4xx errors are unrecoverable
		}
	}
	return true
}
