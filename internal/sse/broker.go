// Package sse pushes vault and editing-session changes to UI clients as
// Server-Sent Events.
//
// Every message carries an id. A client reconnecting with Last-Event-ID gets
// the messages it missed, as long as they are still in the replay buffer.
package sse

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	clientBuffer = 64
	replaySize   = 128
)

// Event is one message to broadcast. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Note change kinds reported by the vault watcher.
const (
	NoteCreated = "created"
	NoteUpdated = "updated"
	NoteDeleted = "deleted"
)

var noteEventTypes = map[string]string{
	NoteCreated: "note.created",
	NoteUpdated: "note.updated",
	NoteDeleted: "note.deleted",
}

type message struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch     chan []byte
	lastID uint64
	resume bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithPingInterval sets how often idle streams get a keep-alive comment.
func WithPingInterval(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.pingEvery = d
		}
	}
}

// WithLinksThrottle bounds how often backlinks.updated follows note changes.
func WithLinksThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.linksEvery = d
		}
	}
}

// Broker fans events out to connected clients. One goroutine owns the client
// set, the replay buffer and the throttle clock; the exported methods talk to
// it over channels.
type Broker struct {
	linksEvery time.Duration
	pingEvery  time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		linksEvery:    2 * time.Second,
		pingEvery:     30 * time.Second,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	var (
		clients   = make(map[chan []byte]struct{})
		replay    = make([]message, 0, replaySize)
		nextID    uint64
		lastLinks time.Time
	)

	send := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		nextID++
		raw := []byte("id: " + strconv.FormatUint(nextID, 10) +
			"\nevent: " + event.Type + "\ndata: " + string(payload) + "\n\n")

		if len(replay) == replaySize {
			copy(replay, replay[1:])
			replay = replay[:replaySize-1]
		}
		replay = append(replay, message{id: nextID, raw: raw})

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// slow client, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			if sub.resume {
				for _, m := range replay {
					if m.id <= sub.lastID {
						continue
					}
					select {
					case sub.ch <- m.raw:
					default:
					}
				}
			}
			clients[sub.ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			send(event)
			if _, ok := noteTypes[event.Type]; !ok {
				continue
			}
			// Any note change can add or remove links.
			if now := time.Now(); now.Sub(lastLinks) >= b.linksEvery {
				lastLinks = now
				send(Event{Type: "backlinks.updated", Data: struct{}{}})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

var noteTypes = map[string]struct{}{
	"note.created": {},
	"note.updated": {},
	"note.deleted": {},
}

// Close stops the broker and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that only sees new messages.
func (b *Broker) Subscribe() chan []byte {
	return b.subscribe(subscription{ch: make(chan []byte, clientBuffer)})
}

// SubscribeFrom adds a client that first gets the buffered messages with an
// id above lastID.
func (b *Broker) SubscribeFrom(lastID uint64) chan []byte {
	return b.subscribe(subscription{ch: make(chan []byte, clientBuffer), lastID: lastID, resume: true})
}

func (b *Broker) subscribe(sub subscription) chan []byte {
	if b.closed.Load() {
		close(sub.ch)
		return sub.ch
	}
	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(sub.ch)
	}
	return sub.ch
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishNoteEvent reports a file change seen by the vault watcher. kind is
// NoteCreated, NoteUpdated or NoteDeleted; anything else is ignored.
func (b *Broker) PublishNoteEvent(kind, path string) {
	typ, ok := noteEventTypes[kind]
	if !ok {
		return
	}
	b.Publish(Event{Type: typ, Data: map[string]string{"path": path}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var ch chan []byte
	if last, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
		ch = b.SubscribeFrom(last)
	} else {
		ch = b.Subscribe()
	}
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.pingEvery)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
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
