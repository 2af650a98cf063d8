package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/questx-lab/luckydraw/pkg/pubsub"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

type publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher returns a synchronous producer. Messages with the same key go to
// the same partition, so the consumer sees them in publish order.
func NewPublisher(clientID string, brokerAddrs []string) (*publisher, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond

	producer, err := sarama.NewSyncProducer(brokerAddrs, cfg)
	if err != nil {
		return nil, err
	}

	return &publisher{producer: producer}, nil
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.producer.Close()
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.ByteEncoder(pack.Key),
		Value:     sarama.ByteEncoder(pack.Msg),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("cannot send message to %s: %w", topic, err)
	}

	xcontext.Logger(ctx).Debugf("Published message to %s[%d]@%d", topic, partition, offset)
	return nil
}
