package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
)

// Publisher emits browse activity events keyed by session so one session's
// events stay ordered within a partition.
type Publisher interface {
	Publish(ctx context.Context, activity *models.BrowseActivity) error
	Close() error
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *prometheus.HistogramVec
}

// NewPublisher returns a no-op publisher when Kafka is disabled.
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return noopPublisher{}, nil
	}

	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Retry.Max = 3
	sc.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("new sync producer: %w", err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic)
}

func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) (Publisher, error) {
	metrics, err := util.GetHistogramVec("kafka_messages_published", "status", "topic")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	return &publisher{producer: producer, topic: topic, metrics: metrics}, nil
}

func (p *publisher) Publish(ctx context.Context, activity *models.BrowseActivity) error {
	start := time.Now()
	status := "success"
	defer func() {
		p.metrics.WithLabelValues(status, p.topic).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(activity)
	if err != nil {
		status = "error"
		return fmt.Errorf("marshal browse activity: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(activity.SessionID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("transport"), Value: []byte(activity.Transport)},
			{Key: []byte("outcome"), Value: []byte(activity.Outcome)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		status = "error"
		return fmt.Errorf("send browse activity: %w", err)
	}
	logger.Debugw(ctx, "published browse activity",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"session_id", activity.SessionID,
		"generation", activity.Generation,
	)
	return nil
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.BrowseActivity) error { return nil }
func (noopPublisher) Close() error                                          { return nil }
