package natsx

import (
	"context"
	"time"

	"PolyChat/service/bus"
	"PolyChat/service/metrics"
	"PolyChat/tools/errs"
)

const (
	BizDirect = "chat.direct"
	BizRoom   = "chat.room"
)

// NatsManager publishes persisted chat messages to
// <prefix>.direct and <prefix>.room. It is a bus.Publisher.
type NatsManager struct {
	client *NatsxClient
	sync   *NatsxSyncPublisher
}

func NewNatsManager(cfg NatsxConfig, subjectPrefix string, mode NatsxMode) (*NatsManager, error) {
	c, err := NewNatsxClient(cfg)
	if err != nil {
		return nil, err
	}
	for biz, kind := range map[string]string{BizDirect: bus.KindDirect, BizRoom: bus.KindRoom} {
		if err := c.RegisterRoute(NatsxRoute{Biz: biz, Subject: subjectPrefix + "." + kind, Mode: mode}); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return &NatsManager{
		client: c,
		sync:   &NatsxSyncPublisher{P: NewNatsxProducer(c), Retries: 2, Backoff: 100 * time.Millisecond},
	}, nil
}

func bizOf(kind string) string {
	if kind == bus.KindRoom {
		return BizRoom
	}
	return BizDirect
}

func (m *NatsManager) Publish(ctx context.Context, ev bus.Event) error {
	if m == nil || m.client == nil {
		return errs.New("manager not initialized")
	}
	hdr := map[string]string{"X-Conversation": ev.Key}
	if err := m.sync.Publish(ctx, bizOf(ev.Kind), ev.Payload, hdr, ev.ID); err != nil {
		metrics.BusPublishFailures.WithLabelValues("nats").Inc()
		return err
	}
	return nil
}

func (m *NatsManager) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}
