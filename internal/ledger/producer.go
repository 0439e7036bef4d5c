package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// RefundProducer publishes refund obligations for the payments side to pick
// up. The ledger row in Postgres is the source of truth; the topic is a feed.
type RefundProducer interface {
	PublishRefund(ctx context.Context, entry *RefundEntry) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka refund producer
type KafkaProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	TimeoutMs    int
	RequiredAcks sarama.RequiredAcks
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "refund-obligations",
		RetryMax:     3,
		TimeoutMs:    10000,
		RequiredAcks: sarama.WaitForAll,
	}
}

// KafkaRefundProducer publishes refund entries to Kafka
type KafkaRefundProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// refundMessage is the wire shape published to the refund topic.
type refundMessage struct {
	EntryID        string    `json:"entry_id"`
	CancellationID string    `json:"cancellation_id"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	AmountCents    int64     `json:"amount_cents"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewKafkaRefundProducer creates a new Kafka refund producer
func NewKafkaRefundProducer(config *KafkaProducerConfig) (RefundProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond

	// Partition by user so a user's refunds arrive in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaRefundProducer{producer: producer, config: config}, nil
}

func (p *KafkaRefundProducer) PublishRefund(ctx context.Context, entry *RefundEntry) error {
	messageBytes, err := json.Marshal(refundMessage{
		EntryID:        entry.ID.String(),
		CancellationID: entry.CancellationID.String(),
		BookingID:      entry.BookingID.String(),
		UserID:         entry.UserID.String(),
		AmountCents:    entry.AmountCents,
		CreatedAt:      entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal refund entry: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(entry.UserID.String()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("entry_id"), Value: []byte(entry.ID.String())},
			{Key: []byte("booking_id"), Value: []byte(entry.BookingID.String())},
		},
	}

	if _, _, err := p.producer.SendMessage(message); err != nil {
		return fmt.Errorf("failed to send refund entry to Kafka: %w", err)
	}
	return nil
}

// Close closes the Kafka producer
func (p *KafkaRefundProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
