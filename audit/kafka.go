package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes records as JSON, keyed by category so a category's
// history stays ordered within one partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(writer *kafka.Writer) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Emit(ctx context.Context, record Record) error {
	message, err := json.Marshal(record)
	if err != nil {
		return err
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(record.CategoryID)),
		Value: message,
	})
	if err != nil {
		return fmt.Errorf("publishing %s audit record: %w", record.Action, err)
	}
	return nil
}
