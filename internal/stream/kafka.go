package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"itchflow/internal/book"
)

// ExecutionPublisher writes execution records to a Kafka topic, keyed by
// stock so per-symbol consumers see fills in ledger order.
type ExecutionPublisher struct {
	writer *kafka.Writer
}

func NewExecutionPublisher(brokers []string, topic string) *ExecutionPublisher {
	return &ExecutionPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

type executionMessage struct {
	Stock     string  `json:"stock"`
	Price     float64 `json:"price"`
	Volume    uint32  `json:"volume"`
	Timestamp string  `json:"timestamp"`
	Nanos     uint64  `json:"nanos"`
}

// Publish sends a batch of ledger records in order.
func (p *ExecutionPublisher) Publish(ctx context.Context, records []book.Execution) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(records))
	for _, e := range records {
		value, err := json.Marshal(executionMessage{
			Stock:     e.Stock,
			Price:     e.Price,
			Volume:    e.Volume,
			Timestamp: e.Timestamp,
			Nanos:     e.TimestampNanos,
		})
		if err != nil {
			return fmt.Errorf("encode execution: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Stock),
			Value: value,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish executions: %w", err)
	}
	return nil
}

func (p *ExecutionPublisher) Close() error {
	return p.writer.Close()
}
