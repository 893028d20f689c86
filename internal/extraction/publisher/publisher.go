// Package publisher ships finished extraction results to Kafka.
//
// Publishing is synchronous: Publish returns only once the broker has
// acknowledged the record, so a run that reports success has been delivered.
// Records are keyed by SIREN so every result for one legal unit lands on the
// same partition in order.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"sirene/internal/extraction/models"
)

// Header keys set on every record.
const (
	HeaderRunID       = "run_id"
	HeaderContentType = "content-type"
)

// Publisher produces Result documents to one topic.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects a producer to brokers.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.ZstdCompression(), kgo.SnappyCompression()),
		kgo.ProducerBatchMaxBytes(16<<20),
		kgo.ProduceRequestTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish writes result and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, result *models.Result) error {
	rec, err := Record(p.topic, result)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		p.logger.ErrorContext(ctx, "result publish failed",
			"siren", result.Metadata.SIREN,
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("publish result for %s: %w", result.Metadata.SIREN, err)
	}
	p.logger.DebugContext(ctx, "result published",
		"siren", result.Metadata.SIREN,
		"run_id", result.Metadata.RunID,
		"bytes", len(rec.Value),
	)
	return nil
}

// Record encodes result as a Kafka record for topic.
func Record(topic string, result *models.Result) (*kgo.Record, error) {
	if result == nil || result.Company == nil {
		return nil, errors.New("result has no company")
	}
	value, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(result.Metadata.SIREN),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderRunID, Value: []byte(result.Metadata.RunID.String())},
			{Key: HeaderContentType, Value: []byte("application/json")},
		},
	}, nil
}

// Health pings the brokers.
func (p *Publisher) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close() {
	p.client.Close()
}
