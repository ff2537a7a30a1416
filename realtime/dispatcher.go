// Package realtime pushes freshly created notifications and stat changes to
// connected clients. Delivery is best effort: no retry, no backpressure, no
// error surfaced to the caller. Clients that miss a push still see the data
// through the durable notification queries, so a lost message only delays
// the UI, it never loses state.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	ChannelNewNotification = "new-notification"
	ChannelAnalytics       = "update-analytics"
	ChannelPropertySold    = "property-sold"
)

// Publisher is the underlying transport. The Redis implementation lives in
// redis.go; tests swap in a recording fake.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Envelope wraps every outbound message with an id and timestamp so
// subscribers can de-duplicate replays.
type Envelope struct {
	EventID string      `json:"eventId"`
	Channel string      `json:"channel"`
	SentAt  time.Time   `json:"sentAt"`
	Data    interface{} `json:"data"`
}

type message struct {
	channel string
	payload []byte
}

// Dispatcher drains an in-process queue to the transport on its own
// goroutine, so publishing never blocks a request and the core workflow has
// no compile-time tie to a particular transport. Messages enqueued by one
// caller go out in the order they were enqueued.
type Dispatcher struct {
	pub    Publisher
	queue  chan message
	done   chan struct{}
	closed chan struct{}
}

func NewDispatcher(pub Publisher, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		pub:    pub,
		queue:  make(chan message, buffer),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go d.drain()
	return d
}

// Dispatch marshals v into an envelope and enqueues it. A full queue drops
// the message; a marshal failure is logged and swallowed. Neither is an
// error to the caller.
func (d *Dispatcher) Dispatch(channel string, v interface{}) {
	env := Envelope{
		EventID: uuid.NewString(),
		Channel: channel,
		SentAt:  time.Now(),
		Data:    v,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("realtime: dropping %s event, marshal failed: %v", channel, err)
		return
	}

	select {
	case d.queue <- message{channel: channel, payload: payload}:
	case <-d.done:
		log.Printf("realtime: dispatcher closed, dropping %s event", channel)
	default:
		log.Printf("realtime: queue full, dropping %s event", channel)
	}
}

func (d *Dispatcher) drain() {
	defer close(d.closed)
	for {
		select {
		case msg := <-d.queue:
			d.send(msg)
		case <-d.done:
			// Flush whatever is already queued, then stop.
			for {
				select {
				case msg := <-d.queue:
					d.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(msg message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.pub.Publish(ctx, msg.channel, msg.payload); err != nil {
		log.Printf("realtime: publish to %s failed: %v", msg.channel, err)
	}
}

// Close stops the drain loop after flushing queued messages.
func (d *Dispatcher) Close() {
	close(d.done)
	<-d.closed
}
