package event

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Type defines the type of event.
type Type uint16

const (
	EvSnapshotUpdated Type = iota + 1
	EvRefreshFailed
)

func (t Type) String() string {
	switch t {
	case EvSnapshotUpdated:
		return "snapshot_updated"
	case EvRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

// Event is the interface for all poller events.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // Unix microseconds
}

func (e BaseEvent) GetSeq() uint64 { return e.Seq }
func (e BaseEvent) GetTs() int64   { return e.Ts }

// NewBase stamps an event with the next sequence number and the current time.
func NewBase(seq *uint64) BaseEvent {
	return BaseEvent{Seq: NextSeq(seq), Ts: time.Now().UnixMicro()}
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// SnapshotUpdated is published after a refresh replaced the registry contents.
type SnapshotUpdated struct {
	BaseEvent
	CycleID     string `json:"cycle_id"`
	SelfPresent bool   `json:"self_present"`
	SharedCount int    `json:"shared_count"`
}

func (e SnapshotUpdated) GetType() Type { return EvSnapshotUpdated }

// RefreshFailed is published when a refresh cycle left the registry untouched.
type RefreshFailed struct {
	BaseEvent
	CycleID  string        `json:"cycle_id"`
	Kind     string        `json:"kind"` // decode.Kind label or "transport"
	Error    string        `json:"error"`
	Failures int           `json:"consecutive_failures"`
	RetryIn  time.Duration `json:"retry_in_ns"`
}

func (e RefreshFailed) GetType() Type { return EvRefreshFailed }

// Envelope is the wire form used by push subscribers.
type Envelope struct {
	Type string `json:"type"`
	Data Event  `json:"data"`
}

// Marshal encodes ev inside its Envelope.
func Marshal(ev Event) ([]byte, error) {
	return json.Marshal(Envelope{Type: ev.GetType().String(), Data: ev})
}

// Sink receives published events. Publish must not block for long.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// Fanout delivers every event to each registered sink in order.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
}

// Add registers a sink.
func (f *Fanout) Add(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

func (f *Fanout) Publish(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.Publish(ev)
	}
}
