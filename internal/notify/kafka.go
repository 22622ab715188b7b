package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// KafkaDispatcher publishes order events to a single topic, keyed by order
// ID so events for one order stay in partition order. The circuit breaker
// stops hammering a broker that is down; tripped or failed sends are only
// logged, keeping dispatch non-fatal to the caller.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

func NewKafkaDispatcher(brokers []string, topic string, logger *zap.Logger) (*KafkaDispatcher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "kafka-notify",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &KafkaDispatcher{
		producer: producer,
		topic:    topic,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

func (d *KafkaDispatcher) Enqueue(ctx context.Context, event OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("marshal order event", zap.Error(err))
		return
	}

	_, err = d.breaker.Execute(func() (interface{}, error) {
		msg := &sarama.ProducerMessage{
			Topic: d.topic,
			Key:   sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
			Value: sarama.ByteEncoder(payload),
		}

		partition, offset, err := d.producer.SendMessage(msg)
		if err != nil {
			return nil, err
		}

		d.logger.Debug("order event published",
			zap.String("type", event.Type),
			zap.Int64("order_id", event.OrderID),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset),
		)
		return nil, nil
	})
	if err != nil {
		d.logger.Warn("order event not delivered",
			zap.String("type", event.Type),
			zap.Int64("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
