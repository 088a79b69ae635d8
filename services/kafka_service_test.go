package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaService_PublishRevalidation(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	notice := RevalidationNotice{Source: "grupo", Paths: []string{PathBookIndex}, At: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "livro-revalidacao" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "grupo" {
			return errors.New("wrong key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got RevalidationNotice
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if len(got.Paths) != 1 || got.Paths[0] != PathBookIndex {
			return errors.New("wrong paths")
		}
		return nil
	})

	svc := NewKafkaServiceFromProducer(producer, "livro-revalidacao", nil)
	require.NoError(t, svc.PublishRevalidation(context.Background(), notice))
	assert.EqualValues(t, 1, svc.GetMetrics()["messages_sent"])

	require.NoError(t, svc.Close())
}

func TestKafkaService_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	svc := NewKafkaServiceFromProducer(producer, "livro-revalidacao", nil)
	err := svc.PublishRevalidation(context.Background(), RevalidationNotice{Source: "evento"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.EqualValues(t, 1, svc.GetMetrics()["errors"])

	require.NoError(t, svc.Close())
}

func TestKafkaService_SubscribeNeedsConsumer(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	svc := NewKafkaServiceFromProducer(producer, "livro-revalidacao", nil)
	assert.Error(t, svc.Subscribe(func([]byte) {}))
	require.NoError(t, svc.Close())
}

func TestKafkaConsumerHandler_RecoversFromPanics(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	svc := NewKafkaServiceFromProducer(producer, "livro-revalidacao", nil)
	defer svc.Close()

	var got []string
	h := &kafkaConsumerHandler{service: svc, handler: func(b []byte) {
		if string(b) == "boom" {
			panic("bad notice")
		}
		got = append(got, string(b))
	}}

	assert.NotPanics(t, func() {
		h.handle([]byte("boom"))
		h.handle([]byte("ok"))
	})
	assert.Equal(t, []string{"ok"}, got)
	metrics := svc.GetMetrics()
	assert.EqualValues(t, 1, metrics["messages_received"])
	assert.EqualValues(t, 1, metrics["errors"])
}

func TestInstanceGroupID(t *testing.T) {
	a := instanceGroupID("livro-admin")
	b := instanceGroupID("livro-admin")

	assert.True(t, strings.HasPrefix(a, "livro-admin-"))
	assert.NotEqual(t, a, b, "each instance consumes every notice")
}
