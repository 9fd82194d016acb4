// Package kafka implements the event channel on Apache Kafka using
// segmentio/kafka-go.
//
// Producers key messages by document ID and hash-balance them, so every
// event for one document lands on the same partition. Consumers join a
// consumer group and commit offsets explicitly after processing.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/events"
	kafkago "github.com/segmentio/kafka-go"
)

// Offset reset policies for consumer groups without a committed offset.
const (
	OffsetEarliest = "earliest"
	OffsetLatest   = "latest"
)

// Config holds broker connection settings.
type Config struct {
	Brokers     []string
	Topic       string
	GroupID     string
	OffsetReset string
	// MaxWait bounds how long the broker holds a fetch open when no data is ready.
	MaxWait time.Duration
}

// Validate checks the settings required by producers and consumers.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka config: at least one broker is required")
	}
	if c.Topic == "" {
		return errors.New("kafka config: topic is required")
	}
	switch c.OffsetReset {
	case "", OffsetEarliest, OffsetLatest:
	default:
		return fmt.Errorf("kafka config: unknown offset reset %q", c.OffsetReset)
	}
	return nil
}

func (c Config) startOffset() int64 {
	if c.OffsetReset == OffsetLatest {
		return kafkago.LastOffset
	}
	return kafkago.FirstOffset
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes document events to a topic.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a synchronous producer that waits for all in-sync
// replicas to acknowledge each write.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, logger), nil
}

func newPublisher(w messageWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{writer: w, logger: logger.With("component", "kafka-publisher")}
}

// Publish sends the event keyed by its document ID.
func (p *Publisher) Publish(ctx context.Context, event *core.DocumentEvent) error {
	value, err := events.Encode(event)
	if err != nil {
		return err
	}
	msg := kafkago.Message{Key: []byte(event.DocumentID), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event", "document_id", event.DocumentID, "err", err)
		return fmt.Errorf("publish %s: %w", event.DocumentID, err)
	}
	p.logger.Debug("published event", "document_id", event.DocumentID)
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads document events as a member of a consumer group.
type Consumer struct {
	reader messageReader
	logger *slog.Logger
}

// NewConsumer joins cfg.GroupID on cfg.Topic. Offsets are committed only
// through Delivery.Commit.
func NewConsumer(cfg Config, logger *slog.Logger) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka config: group id is required for consumers")
	}
	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = time.Second
	}
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: cfg.startOffset(),
		MaxWait:     maxWait,
	})
	return newConsumer(r, logger), nil
}

func newConsumer(r messageReader, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: r, logger: logger.With("component", "kafka-consumer")}
}

// Fetch blocks until the next message is available.
func (c *Consumer) Fetch(ctx context.Context) (events.Delivery, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// kafka-go reports a closed reader as io.EOF.
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", events.ErrClosed, err)
		}
		return nil, err
	}
	return &delivery{reader: c.reader, msg: msg}, nil
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

type delivery struct {
	reader messageReader
	msg    kafkago.Message
}

func (d *delivery) Key() []byte   { return d.msg.Key }
func (d *delivery) Value() []byte { return d.msg.Value }

func (d *delivery) Commit(ctx context.Context) error {
	return d.reader.CommitMessages(ctx, d.msg)
}

var (
	_ events.Publisher = (*Publisher)(nil)
	_ events.Consumer  = (*Consumer)(nil)
)
