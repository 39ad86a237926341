package analytics

import (
	"context"
	"log/slog"
)

// Collector decouples event producers from a Recorder by buffering events
// on a channel drained by a single goroutine. Events are dropped when the
// buffer is full.
type Collector struct {
	sink    Recorder
	eventCh chan SearchEvent
	logger  *slog.Logger
	done    chan struct{}
}

func NewCollector(sink Recorder, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		sink:    sink,
		eventCh: make(chan SearchEvent, bufferSize),
		logger:  slog.Default().With("component", "analytics-collector"),
		done:    make(chan struct{}),
	}
}

// Start launches the forwarding goroutine. It stops when ctx is cancelled
// or Close is called, forwarding whatever is still buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.sink.Record(event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Debug("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Record enqueues event without blocking. It must not be called after Close.
func (c *Collector) Record(event SearchEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "query", event.Query)
	}
}

// Close stops accepting events and waits for the buffered ones to be
// forwarded. Start must have been called.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.sink.Record(event)
		default:
			return
		}
	}
}
