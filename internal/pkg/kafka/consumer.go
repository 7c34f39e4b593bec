package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// StartEventLogConsumer reads archive events until ctx is cancelled and logs each one.
func StartEventLogConsumer(ctx context.Context, brokers []string, topic, groupID string) {

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.Infof("Archive event consumer started, brokers %v, topic %s", brokers, topic)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logrus.Info("Archive event consumer stopped")
				return
			}
			logrus.Errorf("Error reading message from Kafka: %v", err)
			continue
		}

		if _, err := HandleEvent(msg.Value); err != nil {
			logrus.WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Errorf("Failed to parse archive event: %v", err)
		}
	}
}

// HandleEvent decodes one archive event and logs it at a level matching its status.
func HandleEvent(value []byte) (*entity.ArchiveEvent, error) {
	var event entity.ArchiveEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}

	entry := logrus.WithFields(logrus.Fields{
		"archive_id":  event.ID,
		"status":      event.Status,
		"files":       event.Files,
		"images":      event.Images,
		"duration_ms": event.DurationMs,
	})

	if event.Status == entity.EventFailed {
		entry.WithField("kind", event.Kind).Warnf("archive failed: %s", event.Error)
	} else {
		entry.Info("archive completed")
	}
	return &event, nil
}
