package dstelemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// Processor batches events in memory and posts them to the collection
// endpoint in the background. Enqueueing never blocks the caller: if the
// inbox is full the event is dropped, with a warning logged once.
type Processor struct {
	inboxCh       chan dispatcherMessage
	inboxFullOnce sync.Once
	closeOnce     sync.Once
	loggers       ldlog.Loggers
}

type dispatcher struct {
	config    Config
	disabled  bool
	stateLock sync.Mutex
}

type flushPayload struct {
	events []Event
}

// Payload of the inboxCh channel.
type dispatcherMessage interface{}

type sendEventMessage struct {
	event Event
}

type flushEventsMessage struct{}

type shutdownMessage struct {
	replyCh chan struct{}
}

type syncMessage struct {
	replyCh chan struct{}
}

const maxFlushWorkers = 2

// NewProcessor creates a processor and starts its background dispatcher.
func NewProcessor(config Config) *Processor {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	inboxCh := make(chan dispatcherMessage, config.Capacity)
	startDispatcher(config, inboxCh)
	return &Processor{
		inboxCh: inboxCh,
		loggers: config.Loggers,
	}
}

// SendEvent enqueues an event without blocking.
func (p *Processor) SendEvent(e Event) {
	p.postNonBlockingMessageToInbox(sendEventMessage{event: e})
}

// Flush asks the dispatcher to post the current batch as soon as possible.
func (p *Processor) Flush() {
	p.postNonBlockingMessageToInbox(flushEventsMessage{})
}

func (p *Processor) postNonBlockingMessageToInbox(m dispatcherMessage) bool {
	select {
	case p.inboxCh <- m:
		return true
	default:
	}
	// Telemetry must never slow the application down, so rather than wait for
	// room in the inbox we drop the event. The warning is only shown once.
	p.inboxFullOnce.Do(func() {
		p.loggers.Warn("Telemetry events are being produced faster than they can be processed; some events will be dropped")
	})
	return false
}

// Close flushes pending events and shuts down the dispatcher. It blocks
// until in-flight posts have completed.
func (p *Processor) Close() error {
	p.closeOnce.Do(func() {
		// These go directly into the channel instead of through
		// postNonBlockingMessageToInbox because an orderly shutdown must not
		// drop them.
		p.inboxCh <- flushEventsMessage{}
		m := shutdownMessage{replyCh: make(chan struct{})}
		p.inboxCh <- m
		<-m.replyCh
	})
	return nil
}

func startDispatcher(config Config, inboxCh <-chan dispatcherMessage) {
	d := &dispatcher{config: config}

	// A fixed-size pool of workers waits on flushCh. This is the maximum
	// number of posts that can be in flight concurrently.
	flushCh := make(chan *flushPayload, 1)
	var workersGroup sync.WaitGroup
	for i := 0; i < maxFlushWorkers; i++ {
		startSendTask(config, flushCh, &workersGroup, d.handleUnrecoverableStatus)
	}
	go d.runMainLoop(inboxCh, flushCh, &workersGroup)
}

func (d *dispatcher) runMainLoop(
	inboxCh <-chan dispatcherMessage,
	flushCh chan<- *flushPayload,
	workersGroup *sync.WaitGroup,
) {
	defer func() {
		if err := recover(); err != nil {
			d.config.Loggers.Errorf("Unexpected panic in telemetry processing thread: %+v", err)
		}
	}()

	var outbox []Event
	droppedEvents := 0

	flushInterval := d.config.FlushInterval
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	flushTicker := time.NewTicker(flushInterval)

	for {
		select {
		case message := <-inboxCh:
			switch m := message.(type) {
			case sendEventMessage:
				if len(outbox) >= d.config.Capacity {
					droppedEvents++
					if droppedEvents == 1 {
						d.config.Loggers.Warn("Exceeded telemetry event queue capacity; some events will be dropped")
					}
				} else {
					outbox = append(outbox, m.event)
				}
			case flushEventsMessage:
				if d.triggerFlush(outbox, flushCh, workersGroup) {
					outbox = nil
					droppedEvents = 0
				}
			case syncMessage:
				workersGroup.Wait()
				m.replyCh <- struct{}{}
			case shutdownMessage:
				flushTicker.Stop()
				workersGroup.Wait() // Wait for all in-progress posts to complete
				close(flushCh)      // Causes all idle send workers to terminate
				m.replyCh <- struct{}{}
				return
			}
		case <-flushTicker.C:
			if d.triggerFlush(outbox, flushCh, workersGroup) {
				outbox = nil
				droppedEvents = 0
			}
		}
	}
}

// triggerFlush hands the current batch to a send worker. It reports whether
// the batch was accepted; if every worker is busy the outbox is kept as is
// and will be retried on the next flush.
func (d *dispatcher) triggerFlush(outbox []Event, flushCh chan<- *flushPayload, workersGroup *sync.WaitGroup) bool {
	if d.isDisabled() {
		return true // discard the batch
	}
	if len(outbox) == 0 {
		return false
	}
	workersGroup.Add(1) // Increment the count of active posts
	select {
	case flushCh <- &flushPayload{events: outbox}:
		return true
	default:
		workersGroup.Done()
		return false
	}
}

func (d *dispatcher) isDisabled() bool {
	d.stateLock.Lock()
	defer d.stateLock.Unlock()
	return d.disabled
}

// handleUnrecoverableStatus is called by send workers when the endpoint
// rejects a payload in a way that will not resolve on its own, such as an
// invalid application ID. Further sends are skipped for the lifetime of the
// processor.
func (d *dispatcher) handleUnrecoverableStatus(statusCode int) {
	d.stateLock.Lock()
	defer d.stateLock.Unlock()
	if !d.disabled {
		d.disabled = true
		d.config.Loggers.Errorf("Received unrecoverable HTTP error %d from telemetry endpoint; no further events will be sent", statusCode)
	}
}
