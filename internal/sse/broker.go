// Package sse streams chart render outcomes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Chart event kinds. They match the catalog record statuses, plus deleted.
const (
	ChartRendered = "rendered"
	ChartFailed   = "failed"
	ChartDeleted  = "deleted"
)

const (
	catalogUpdated = "catalog.updated"
	historySize    = 128
	clientBuffer   = 64
)

// KeepAlive is the interval of the comment frames that keep idle
// connections open through proxies.
var KeepAlive = 15 * time.Second

// ChartEvent is the payload of a chart.* event.
type ChartEvent struct {
	Source  string `json:"source"`
	Output  string `json:"output,omitempty"`
	Profile string `json:"profile,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Event is one named SSE message. Data is encoded as JSON.
type Event struct {
	Type string
	Data any
}

// frame is an encoded event together with its stream id.
type frame struct {
	id  int64
	raw []byte
}

type subscription struct {
	ch     chan []byte
	lastID int64
}

// Broker fans chart events out to SSE clients.
//
// The run goroutine owns the client set, the replay history, the event
// sequence and the catalog.updated throttle; everything else reaches it
// through channels. Every chart event is followed by at most one
// catalog.updated per throttle window, and a change inside a window is
// announced when the window ends.
type Broker struct {
	throttle time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that announces catalog.updated at most once per
// throttle.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:      throttle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	var (
		clients     = make(map[chan []byte]struct{})
		history     []frame
		seq         int64
		lastCatalog time.Time
		pending     *time.Timer
		pendingC    <-chan time.Time
	)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Slow client; it can catch up through Last-Event-ID.
		}
	}
	emit := func(e Event) {
		payload, err := json.Marshal(e.Data)
		if err != nil {
			return
		}
		seq++
		f := frame{id: seq, raw: []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, e.Type, payload))}
		history = append(history, f)
		if len(history) > historySize {
			history = history[len(history)-historySize:]
		}
		for ch := range clients {
			send(ch, f.raw)
		}
	}
	announceCatalog := func(now time.Time) {
		lastCatalog = now
		emit(Event{Type: catalogUpdated, Data: struct{}{}})
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.lastID > 0 {
				for _, f := range history {
					if f.id > sub.lastID {
						send(sub.ch, f.raw)
					}
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case e := <-b.publishCh:
			emit(e)
			if _, chart := e.Data.(ChartEvent); !chart {
				continue
			}
			now := time.Now()
			if wait := b.throttle - now.Sub(lastCatalog); wait > 0 {
				if pending == nil {
					pending = time.NewTimer(wait)
					pendingC = pending.C
				}
				continue
			}
			announceCatalog(now)

		case now := <-pendingC:
			pending, pendingC = nil, nil
			announceCatalog(now)

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. Events newer than lastID that are still in
// the history are replayed first; lastID 0 means live events only.
func (b *Broker) Subscribe(lastID int64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- subscription{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an event as is.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- e:
	case <-b.stopped:
	}
}

// PublishChart broadcasts chart.<kind> and schedules catalog.updated.
// Unknown kinds are dropped.
func (b *Broker) PublishChart(kind string, ev ChartEvent) {
	switch kind {
	case ChartRendered, ChartFailed, ChartDeleted:
		b.Publish(Event{Type: "chart." + kind, Data: ev})
	}
}

// ServeHTTP streams events to one client (GET /api/events). A reconnecting
// EventSource sends Last-Event-ID and receives what it missed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", time.Second.Milliseconds())
	flusher.Flush()

	ch := b.Subscribe(lastID)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(KeepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
