// Package memory is an in-process event channel for tests and single-binary use.
//
// Uncommitted messages are redelivered after Redeliver is called, which
// models a consumer restart.
package memory

import (
	"context"
	"sync"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
)

type message struct {
	key, value []byte
}

// Channel is a single-partition queue with commit tracking.
type Channel struct {
	mu        sync.Mutex
	cond      chan struct{}
	messages  []message
	next      int
	committed int
	commits   int
	closed    bool
}

// New creates an empty channel.
func New() *Channel {
	return &Channel{cond: make(chan struct{})}
}

// Publish encodes and appends the event.
func (c *Channel) Publish(ctx context.Context, event *core.DocumentEvent) error {
	data, err := events.Encode(event)
	if err != nil {
		return err
	}
	return c.PublishRaw(ctx, []byte(event.DocumentID), data)
}

// PublishRaw appends a message without encoding it.
func (c *Channel) PublishRaw(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return events.ErrClosed
	}
	c.messages = append(c.messages, message{key: key, value: value})
	c.wake()
	return nil
}

// Fetch returns the next undelivered message, blocking until one arrives.
func (c *Channel) Fetch(ctx context.Context) (events.Delivery, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, events.ErrClosed
		}
		if c.next < len(c.messages) {
			offset := c.next
			c.next++
			m := c.messages[offset]
			c.mu.Unlock()
			return &delivery{ch: c, offset: offset, msg: m}, nil
		}
		wait := c.cond
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Redeliver rewinds to the first uncommitted message.
func (c *Channel) Redeliver() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = c.committed
	c.wake()
}

// Committed returns the number of messages acknowledged in order.
func (c *Channel) Committed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// Commits returns how many times Commit was called.
func (c *Channel) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

// Len returns the number of messages published.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Events decodes every published message, skipping malformed ones.
func (c *Channel) Events() []*core.DocumentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.DocumentEvent, 0, len(c.messages))
	for _, m := range c.messages {
		if event, err := events.Decode(m.value); err == nil {
			out = append(out, event)
		}
	}
	return out
}

// Close wakes blocked fetchers and rejects further use.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.wake()
	}
	return nil
}

// wake must be called with mu held.
func (c *Channel) wake() {
	close(c.cond)
	c.cond = make(chan struct{})
}

type delivery struct {
	ch     *Channel
	offset int
	msg    message
}

func (d *delivery) Key() []byte   { return d.msg.key }
func (d *delivery) Value() []byte { return d.msg.value }

// Commit advances the committed offset past this message, like a Kafka
// consumer group commit.
func (d *delivery) Commit(ctx context.Context) error {
	d.ch.mu.Lock()
	defer d.ch.mu.Unlock()
	d.ch.commits++
	if d.offset+1 > d.ch.committed {
		d.ch.committed = d.offset + 1
	}
	return nil
}

var (
	_ events.Publisher = (*Channel)(nil)
	_ events.Consumer  = (*Channel)(nil)
)
