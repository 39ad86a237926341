package analytics

import "time"

// SearchEvent describes one evaluated query.
type SearchEvent struct {
	Query         string    `json:"query"`
	Policy        string    `json:"policy"`
	Returned      int       `json:"returned"`
	LatencyMicros int64     `json:"latency_us"`
	Failed        bool      `json:"failed"`
	TraceID       string    `json:"trace_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Recorder accepts search events.
type Recorder interface {
	Record(event SearchEvent)
}
