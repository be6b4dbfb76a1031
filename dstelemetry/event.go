package dstelemetry

import (
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Event is a single usage event. Identity must already be an anonymized
// value (see HashedIdentity); the processor does not hash it again.
type Event struct {
	Name       string
	Identity   string
	Timestamp  time.Time
	Properties map[string]ldvalue.Value
}

// NewEvent creates an event stamped with the current time.
func NewEvent(name, identity string, properties map[string]ldvalue.Value) Event {
	return Event{
		Name:       name,
		Identity:   identity,
		Timestamp:  time.Now().UTC(),
		Properties: properties,
	}
}

// makeEventsPayload serializes a batch of events into the wire format:
//
//	{"app_id": "...", "events": [{"event": ..., "identity": ..., "timestamp": ..., "properties": {...}}]}
func makeEventsPayload(appID string, events []Event) ([]byte, error) {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("app_id").String(appID)
	arr := obj.Name("events").Array()
	for _, e := range events {
		eventObj := arr.Object()
		eventObj.Name("event").String(e.Name)
		eventObj.Name("identity").String(e.Identity)
		eventObj.Name("timestamp").String(e.Timestamp.Format(time.RFC3339))
		propsObj := eventObj.Name("properties").Object()
		for _, k := range sortedPropertyKeys(e.Properties) {
			e.Properties[k].WriteToJSONWriter(propsObj.Name(k))
		}
		propsObj.End()
		eventObj.End()
	}
	arr.End()
	obj.End()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Property order is stable so that payloads are reproducible in tests.
func sortedPropertyKeys(properties map[string]ldvalue.Value) []string {
	keys := maps.Keys(properties)
	slices.Sort(keys)
	return keys
}
