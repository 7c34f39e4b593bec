package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(event *entity.ArchiveEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer connects to the first reachable broker and makes sure the topic
// exists. Without a reachable broker it returns a producer that only logs.
func NewProducer(brokers []string, topic string) Producer {
	if len(brokers) == 0 {
		logrus.Warn("no kafka brokers configured, archive events are only logged")
		return NewLogProducer()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v, archive events are only logged", err)
		return NewLogProducer()
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic %s (might already exist): %v", topic, err)
	}

	logrus.Infof("Connected to Kafka at %v, topic %s", brokers, topic)
	return &kafkaProducer{writer: newWriter(brokers, topic), topic: topic}
}

// newWriter builds an async writer: Publish only enqueues, so a broker that
// goes away later never holds up a request. Delivery failures are logged.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   logDelivery,
	}
}

func logDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		logrus.WithField("archive_id", string(msg.Key)).Errorf("failed to deliver archive event: %v", err)
	}
}

func (p *kafkaProducer) Publish(event *entity.ArchiveEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
		Time:  event.Time,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	logrus.WithField("archive_id", event.ID).Debugf("event queued for topic %s", p.topic)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// logProducer stands in when Kafka is disabled or unreachable.
type logProducer struct{}

func NewLogProducer() Producer {
	return &logProducer{}
}

func (m *logProducer) Publish(event *entity.ArchiveEvent) error {
	logrus.WithFields(logrus.Fields{
		"archive_id": event.ID,
		"status":     event.Status,
		"kind":       event.Kind,
		"images":     event.Images,
	}).Info("archive event")
	return nil
}

func (m *logProducer) Close() error {
	return nil
}
