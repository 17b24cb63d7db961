package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

// DefaultAlertTopic is the topic used when none is configured.
const DefaultAlertTopic = "storefront.security.alerts"

// KafkaDispatcher produces alerts to a Kafka topic, keyed by source address
// so alerts from one client stay ordered within a partition.
type KafkaDispatcher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaDispatcher connects to brokers and produces to topic.
func NewKafkaDispatcher(brokers []string, topic string, opts ...kgo.Opt) (*KafkaDispatcher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		topic = DefaultAlertTopic
	}
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProduceRequestTimeout(5 * time.Second),
	}, opts...)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaDispatcher{client: client, topic: topic}, nil
}

// EnsureTopic creates the alert topic if it does not exist.
func (d *KafkaDispatcher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(d.client)
	_, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, d.topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", d.topic, err)
	}
	return nil
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, alert monitor.Alert) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	record := &kgo.Record{
		Topic: d.topic,
		Key:   []byte(alert.SourceAddress),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(alert.Kind)},
			{Key: "severity", Value: []byte(alert.Severity)},
		},
	}
	if err := d.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce alert: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (d *KafkaDispatcher) Close() {
	d.client.Close()
}
