package kafka

import "github.com/Shopify/sarama"

type Config struct {
	Brokers             []string
	Topic               string
	PartitionsPerTopic  int32 // demo: 8; production: hundreds
	ReplicationFactor   int16 // single node = 1; production = 3
	ProducerRetries     int
	ProducerCompression string // none/snappy/lz4/zstd
	KafkaVersion        sarama.KafkaVersion
	EnsureTopicOnStart  bool
}

func DefaultConfig() Config {
	return Config{
		Brokers:             []string{"127.0.0.1:9092"},
		Topic:               "chat.message",
		PartitionsPerTopic:  8,
		ReplicationFactor:   1,
		ProducerRetries:     5,
		ProducerCompression: "snappy",
		KafkaVersion:        sarama.V2_1_0_0,
		EnsureTopicOnStart:  true,
	}
}
