package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisher_Handle(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	customerID := uuid.New()
	event := newTestEvent("BillPaid", customerID)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "portal.events", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, customerID.String(), string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(value, &decoded))
		assert.Equal(t, "BillPaid", decoded["type"])
		assert.Equal(t, "test data", decoded["data"])

		require.NotEmpty(t, msg.Headers)
		assert.Equal(t, "event_type", string(msg.Headers[0].Key))
		assert.Equal(t, "BillPaid", string(msg.Headers[0].Value))
		return nil
	})

	publisher := NewKafkaPublisher(producer, "portal.events", zap.NewNop())
	require.NoError(t, publisher.Handle(context.Background(), event))
	assert.Nil(t, publisher.EventTypes())
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("leader not available"))

	publisher := NewKafkaPublisher(producer, "portal.events", zap.NewNop())
	err := publisher.Handle(context.Background(), newTestEvent("BillIssued", uuid.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BillIssued")
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_ViaBus(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	bus := NewInMemoryEventBus(zap.NewNop(), 0)
	bus.Subscribe(NewKafkaPublisher(producer, "portal.events", zap.NewNop()))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx,
		newTestEvent("ComplaintFiled", uuid.New()),
		newTestEvent("ComplaintResponded", uuid.New()),
	))
	require.NoError(t, producer.Close())
}

func TestParseRequiredAcks(t *testing.T) {
	tests := []struct {
		in      string
		want    sarama.RequiredAcks
		wantErr bool
	}{
		{"none", sarama.NoResponse, false},
		{"local", sarama.WaitForLocal, false},
		{"1", sarama.WaitForLocal, false},
		{"all", sarama.WaitForAll, false},
		{"", sarama.WaitForAll, false},
		{"sometimes", sarama.WaitForAll, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRequiredAcks(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSaramaConfig(t *testing.T) {
	cfg, err := newSaramaConfig(config.KafkaConfig{
		ClientID:     "water-portal",
		RequiredAcks: "all",
		RetryMax:     5,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Producer.Idempotent)
	assert.Equal(t, 1, cfg.Net.MaxOpenRequests)
	assert.True(t, cfg.Producer.Return.Successes)
	require.NoError(t, cfg.Validate())

	_, err = newSaramaConfig(config.KafkaConfig{RequiredAcks: "bogus"})
	assert.Error(t, err)
}
