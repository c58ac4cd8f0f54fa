package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher is the narrow interface services depend on; the no-op
// implementation keeps event publishing optional in tests.
type Publisher interface {
	Publish(topic string, env *Envelope)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, *Envelope) {}

// KafkaPublisher writes events asynchronously through an inbox channel so a
// slow broker never blocks the request path. Close drains the inbox before
// shutting the writer down.
type KafkaPublisher struct {
	w       *kafka.Writer
	log     *slog.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewKafkaPublisher(log *slog.Logger, brokers []string, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					p.log.Error("failed to publish event", slog.Any("error", err))
				}
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	close(p.inbox)
	for m := range p.inbox {
		_ = p.w.WriteMessages(context.Background(), m)
	}
	_ = p.w.Close()
}

// Publish enqueues the event; the envelope is marshalled here so a broken
// payload is logged once and dropped.
func (p *KafkaPublisher) Publish(topic string, env *Envelope) {
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Error("failed to marshal event envelope", slog.Any("error", err))
		return
	}
	p.inbox <- kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(env.OrderID, 10)),
		Value: value,
		Time:  time.Now(),
	}
}

// WaitClosed blocks until the publish loop has drained and exited.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }
