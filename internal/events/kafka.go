package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaSink writes events to Kafka. Each event name maps to a topic; names
// without a mapping go to the default topic.
type KafkaSink struct {
	writer       *kafka.Writer
	defaultTopic string
	topicByEvent map[string]string
}

// NewKafkaSink returns a sink writing to the given brokers.
func NewKafkaSink(brokers []string, defaultTopic string, topicByEvent map[string]string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if defaultTopic == "" {
		return nil, fmt.Errorf("kafka sink requires a default topic")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		defaultTopic: defaultTopic,
		topicByEvent: topicByEvent,
	}, nil
}

// Topic returns the topic an event name is written to.
func (s *KafkaSink) Topic(name string) string {
	if t, ok := s.topicByEvent[name]; ok && t != "" {
		return t
	}
	return s.defaultTopic
}

// Publish implements Sink.
func (s *KafkaSink) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", ev.Name, err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.Topic(ev.Name),
		Key:   []byte(ev.Key),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Name)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing event %s to kafka: %w", ev.Name, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
