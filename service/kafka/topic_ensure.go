package kafka

import (
	"errors"

	"PolyChat/logger"
	"PolyChat/tools/errs"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"
)

// EnsureTopic creates c.Topic when missing and grows its partitions when
// fewer than configured. Kafka never shrinks partitions.
func EnsureTopic(admin sarama.ClusterAdmin, c Config) error {
	t := c.Topic
	descs, err := admin.DescribeTopics([]string{t})
	if err != nil {
		return errs.WrapMsg(err, "describe topic", "topic", t)
	}
	exists := len(descs) == 1 && descs[0].Err == sarama.ErrNoError

	minISR := "1"
	if c.ReplicationFactor >= 3 {
		minISR = "2"
	}

	if !exists {
		td := &sarama.TopicDetail{
			NumPartitions:     c.PartitionsPerTopic,
			ReplicationFactor: c.ReplicationFactor,
			ConfigEntries: map[string]*string{
				"cleanup.policy":                 strPtr("delete"),
				"min.insync.replicas":            strPtr(minISR),
				"unclean.leader.election.enable": strPtr("false"),
				"compression.type":               strPtr("producer"),
			},
		}
		if err := admin.CreateTopic(t, td, false); err != nil {
			var te *sarama.TopicError
			if (errors.As(err, &te) && te.Err == sarama.ErrTopicAlreadyExists) || errors.Is(err, sarama.ErrTopicAlreadyExists) {
				logger.Info("kafka topic exists (race)", zap.String("topic", t))
				return nil
			}
			return errs.WrapMsg(err, "create topic", "topic", t)
		}
		logger.Info("kafka topic created", zap.String("topic", t),
			zap.Int32("partitions", c.PartitionsPerTopic), zap.Int16("rf", c.ReplicationFactor))
		return nil
	}

	cur := int32(len(descs[0].Partitions))
	if c.PartitionsPerTopic > cur {
		if err := admin.CreatePartitions(t, c.PartitionsPerTopic, nil, false); err != nil {
			return errs.WrapMsg(err, "expand partitions", "topic", t, "from", cur, "to", c.PartitionsPerTopic)
		}
		logger.Info("kafka partitions expanded", zap.String("topic", t), zap.Int32("from", cur), zap.Int32("to", c.PartitionsPerTopic))
	}
	return nil
}

func strPtr(s string) *string { return &s }
