package service

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"thesis_backend/internals/configs"
	"thesis_backend/internals/features/notifications/model"
)

// Event adalah bentuk notifikasi yang dikirim ke broker untuk layanan mail/push.
type Event struct {
	NotificationID uuid.UUID      `json:"notification_id"`
	RecipientID    uuid.UUID      `json:"recipient_id"`
	Message        string         `json:"message"`
	Payload        map[string]any `json:"payload,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func EventFromModel(m model.NotificationModel) Event {
	ev := Event{
		NotificationID: m.NotificationID,
		RecipientID:    m.NotificationRecipientID,
		Message:        m.NotificationMessage,
		CreatedAt:      m.NotificationCreatedAt,
	}
	if len(m.NotificationPayload) > 0 {
		_ = json.Unmarshal(m.NotificationPayload, &ev.Payload)
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, events []Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher: SASL/PLAIN + TLS bila username diisi.
func NewKafkaPublisher(broker, topic, username, password string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: username, Password: password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherFromEnv mengembalikan nil jika KAFKA_BROKER kosong.
func NewKafkaPublisherFromEnv() *KafkaPublisher {
	broker := configs.GetEnv("KAFKA_BROKER")
	if broker == "" {
		log.Println("[INFO] KAFKA_BROKER not set, notification events stay local")
		return nil
	}
	return NewKafkaPublisher(
		broker,
		configs.GetEnv("KAFKA_TOPIC", "thesis.notifications"),
		configs.GetEnv("KAFKA_USERNAME"),
		configs.GetEnv("KAFKA_PASSWORD"),
	)
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []Event) error {
	if p == nil || p.writer == nil || len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.RecipientID.String()),
			Value: value,
			Time:  ev.CreatedAt,
		})
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
