package hnsw

import (
	"encoding/json"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3/protocol/pub"
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// pubsubEvent is the JSON envelope published for every EventReporter
// callback, tagged by kind so an out-of-process subscriber can dispatch on
// a single topic.
type pubsubEvent struct {
	Kind      string  `json:"kind"`
	Timestamp int64   `json:"timestamp_unix_nano"`
	Count     int     `json:"count,omitempty"`
	K         int     `json:"k,omitempty"`
	Ef        int     `json:"ef,omitempty"`
	Attempt   int     `json:"attempt,omitempty"`
	Retries   int     `json:"retries,omitempty"`
	ElapsedMs float64 `json:"elapsed_ms,omitempty"`
}

// PubSubReporter publishes every event as a JSON message on a mangos PUB
// socket bound to addr, grounded on the replication package's PUB/SUB
// wiring. Send failures (e.g. no subscribers, full buffer) are swallowed:
// telemetry must never block or fail an insert or search.
type PubSubReporter struct {
	sock pub.Socket
}

// NewPubSubReporter creates a PUB socket and binds it to addr
// (e.g. "tcp://*:9400").
func NewPubSubReporter(addr string) (*PubSubReporter, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("bind PUB socket to %s: %w", addr, err)
	}
	return &PubSubReporter{sock: sock}, nil
}

// Close releases the underlying socket.
func (r *PubSubReporter) Close() error {
	return r.sock.Close()
}

func (r *PubSubReporter) publish(ev pubsubEvent) {
	ev.Timestamp = time.Now().UnixNano()
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = r.sock.Send(data)
}

func (r *PubSubReporter) OnItemsAdded(count int, elapsed time.Duration) {
	r.publish(pubsubEvent{Kind: "items_added", Count: count, ElapsedMs: elapsed.Seconds() * 1000})
}

func (r *PubSubReporter) OnSearchCompleted(k, ef int, elapsed time.Duration, retries int) {
	r.publish(pubsubEvent{Kind: "search_completed", K: k, Ef: ef, Retries: retries, ElapsedMs: elapsed.Seconds() * 1000})
}

func (r *PubSubReporter) OnGraphChangedRetry(attempt int) {
	r.publish(pubsubEvent{Kind: "graph_changed_retry", Attempt: attempt})
}
