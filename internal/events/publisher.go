package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives report-generated events unless configured otherwise.
const DefaultTopic = "activity_report_events"

// Publisher emits report events.
type Publisher interface {
	PublishReportGenerated(ctx context.Context, event ReportGenerated) error
	Close() error
}

// NoopPublisher discards events; used when no brokers are configured.
type NoopPublisher struct{}

// PublishReportGenerated performs no action.
func (NoopPublisher) PublishReportGenerated(context.Context, ReportGenerated) error { return nil }

// Close performs no action.
func (NoopPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes report events to a single Kafka topic, keyed by user.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// PublishReportGenerated implements Publisher.
func (p *KafkaPublisher) PublishReportGenerated(ctx context.Context, event ReportGenerated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  event.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeReportGenerated)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	})
}

// Close flushes and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
