package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer is a buffered fire-and-forget writer. Publish never blocks the
// caller on the broker; a single loop goroutine owns the writer. The inbox
// channel is never closed, so a Publish racing shutdown cannot panic.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func NewProducer(brokers []string, topic string, buf int, logger *slog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		inbox:  make(chan kafka.Message, buf),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.done)
		for {
			select {
			case m := <-p.inbox:
				p.write(m)
			case <-p.quit:
				p.drain()
				return
			}
		}
	}()
}

// drain flushes whatever was queued before Close, then releases the writer.
func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			_ = p.w.Close()
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.logger.Error("kafka publish failed", "topic", p.w.Topic, "error", err)
	}
}

// Publish enqueues without waiting for the broker. Messages are dropped when
// the inbox is full or the producer is shutting down; this hook is
// best-effort by contract.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	select {
	case <-p.quit:
		p.logger.Warn("kafka producer closed, dropping message", "topic", p.w.Topic)
		return
	default:
	}
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case p.inbox <- m:
	default:
		p.logger.Warn("kafka inbox full, dropping message", "topic", p.w.Topic)
	}
}

// Close stops accepting messages; the loop flushes what is queued.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.quit) }) }

// WaitClosed blocks until the flush finished.
func (p *Producer) WaitClosed() { <-p.done }
