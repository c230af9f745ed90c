package kafka

import (
	"context"

	"PolyChat/service/bus"
	"PolyChat/service/metrics"
	"PolyChat/tools/errs"

	"github.com/Shopify/sarama"
)

// Publisher writes persisted chat messages to one topic, keyed by
// conversation so a conversation stays on one partition.
type Publisher struct {
	topic  string
	prod   sarama.SyncProducer
	client sarama.Client
}

func NewPublisher(topic string, prod sarama.SyncProducer) *Publisher {
	return &Publisher{topic: topic, prod: prod}
}

func (p *Publisher) Publish(_ context.Context, ev bus.Event) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Key),
		Value: sarama.ByteEncoder(ev.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(ev.Kind)},
			{Key: []byte("id"), Value: []byte(ev.ID)},
		},
	}
	if _, _, err := p.prod.SendMessage(msg); err != nil {
		metrics.BusPublishFailures.WithLabelValues("kafka").Inc()
		return errs.WrapMsg(err, "kafka send", "topic", p.topic, "id", ev.ID)
	}
	return nil
}

func (p *Publisher) Close() error {
	err := p.prod.Close()
	if p.client != nil && !p.client.Closed() {
		if cerr := p.client.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
