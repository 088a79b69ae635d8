package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KafkaService carries revalidation notices between instances: every write
// publishes one, and every instance's admin hub consumes them.
type KafkaService struct {
	producer    sarama.SyncProducer
	consumer    sarama.ConsumerGroup
	brokers     []string
	topic       string
	topicReady  bool
	topicsMutex sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *KafkaMetrics
	log         *zap.Logger
}

// KafkaMetrics counts produced and consumed notices.
type KafkaMetrics struct {
	messagesSent     int64
	messagesReceived int64
	errors           int64
	mu               sync.RWMutex
}

// MessageHandler receives the raw value of a consumed message.
type MessageHandler func(message []byte)

func kafkaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRoundRobin(),
	}
	cfg.Version = sarama.V2_5_0_0
	return cfg
}

// instanceGroupID gives each process its own consumer group under prefix,
// so every instance reads every notice.
func instanceGroupID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// NewKafkaService connects a producer and a consumer group to brokers.
// groupPrefix is extended with a per-process suffix.
func NewKafkaService(brokers []string, groupPrefix, topic string, logger *zap.Logger) (*KafkaService, error) {
	cfg := kafkaConfig()
	groupID := instanceGroupID(groupPrefix)

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	consumer, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	s := newKafkaService(producer, consumer, topic, logger)
	s.brokers = brokers
	go s.handleConsumerErrors()
	return s, nil
}

// NewKafkaServiceFromProducer wraps an existing producer. The result can
// publish but not subscribe.
func NewKafkaServiceFromProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaService {
	return newKafkaService(producer, nil, topic, logger)
}

func newKafkaService(producer sarama.SyncProducer, consumer sarama.ConsumerGroup, topic string, logger *zap.Logger) *KafkaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaService{
		producer: producer,
		consumer: consumer,
		topic:    topic,
		ctx:      ctx,
		cancel:   cancel,
		metrics:  &KafkaMetrics{},
		log:      logger,
	}
}

func (s *KafkaService) handleConsumerErrors() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case err, ok := <-s.consumer.Errors():
			if !ok {
				return
			}
			s.countError()
			s.log.Warn("kafka consume error", zap.Error(err))
		}
	}
}

// EnsureTopicExists creates the notice topic when the cluster lacks it. It
// is a no-op for services built from a bare producer.
func (s *KafkaService) EnsureTopicExists() error {
	s.topicsMutex.Lock()
	defer s.topicsMutex.Unlock()
	if s.topicReady || len(s.brokers) == 0 {
		return nil
	}

	admin, err := sarama.NewClusterAdmin(s.brokers, kafkaConfig())
	if err != nil {
		return fmt.Errorf("create kafka admin: %w", err)
	}
	defer admin.Close()

	topics, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if _, exists := topics[s.topic]; !exists {
		retention := "86400000"
		detail := &sarama.TopicDetail{
			NumPartitions:     1,
			ReplicationFactor: 1,
			ConfigEntries:     map[string]*string{"retention.ms": &retention},
		}
		if err := admin.CreateTopic(s.topic, detail, false); err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
			return fmt.Errorf("create kafka topic: %w", err)
		}
		s.log.Info("kafka topic created", zap.String("topic", s.topic))
	}
	s.topicReady = true
	return nil
}

// PublishRevalidation sends notice to the notice topic, keyed by its source.
func (s *KafkaService) PublishRevalidation(ctx context.Context, notice RevalidationNotice) error {
	if err := s.EnsureTopicExists(); err != nil {
		return err
	}
	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:     s.topic,
		Key:       sarama.StringEncoder(notice.Source),
		Value:     sarama.ByteEncoder(body),
		Timestamp: notice.At,
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		s.countError()
		return fmt.Errorf("send revalidation notice: %w", err)
	}

	s.metrics.mu.Lock()
	s.metrics.messagesSent++
	s.metrics.mu.Unlock()
	s.log.Debug("revalidation notice sent", zap.String("topic", s.topic), zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

// Subscribe consumes the notice topic until Close, handing every message to
// handler.
func (s *KafkaService) Subscribe(handler MessageHandler) error {
	if s.consumer == nil {
		return errors.New("kafka consumer not configured")
	}
	if err := s.EnsureTopicExists(); err != nil {
		return err
	}

	go func() {
		h := &kafkaConsumerHandler{service: s, handler: handler}
		for {
			if err := s.consumer.Consume(s.ctx, []string{s.topic}, h); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				s.log.Warn("kafka consume failed", zap.String("topic", s.topic), zap.Error(err))
				select {
				case <-s.ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
				continue
			}
			if s.ctx.Err() != nil {
				return
			}
		}
	}()

	s.log.Info("kafka topic subscribed", zap.String("topic", s.topic))
	return nil
}

type kafkaConsumerHandler struct {
	service *KafkaService
	handler MessageHandler
}

func (h *kafkaConsumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *kafkaConsumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *kafkaConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(message.Value)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *kafkaConsumerHandler) handle(value []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.service.countError()
			h.service.log.Error("revalidation notice handler panicked", zap.Any("panic", r))
		}
	}()
	h.handler(value)

	h.service.metrics.mu.Lock()
	h.service.metrics.messagesReceived++
	h.service.metrics.mu.Unlock()
}

func (s *KafkaService) countError() {
	s.metrics.mu.Lock()
	s.metrics.errors++
	s.metrics.mu.Unlock()
}

// GetMetrics returns the notice counters.
func (s *KafkaService) GetMetrics() map[string]int64 {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()

	return map[string]int64{
		"messages_sent":     s.metrics.messagesSent,
		"messages_received": s.metrics.messagesReceived,
		"errors":            s.metrics.errors,
	}
}

// Close stops consuming and releases the producer.
func (s *KafkaService) Close() error {
	s.cancel()

	var errs []error
	if err := s.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}
	if s.consumer != nil {
		if err := s.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka consumer: %w", err))
		}
	}
	return errors.Join(errs...)
}
