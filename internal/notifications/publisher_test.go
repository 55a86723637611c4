package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification() *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    "dev-a",
		EventID:   uuid.New(),
		Type:      TypeWon,
		Title:     "You're a winner!",
		Message:   "You have been selected for the event: Swim lessons",
		CreatedAt: time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisherSendsJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	n := sampleNotification()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var decoded Notification
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.ID != n.ID || decoded.Type != TypeWon || decoded.UserID != "dev-a" {
			return errors.New("payload does not match notification")
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "waitlist-notifications")
	require.NoError(t, pub.Publish(context.Background(), n))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "waitlist-notifications")
	err := pub.Publish(context.Background(), sampleNotification())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestHeadersCarryIdentifiers(t *testing.T) {
	n := sampleNotification()
	got := map[string]string{}
	for _, h := range headersFor(n) {
		got[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, n.ID.String(), got["notification_id"])
	assert.Equal(t, "WON", got["notification_type"])
	assert.Equal(t, "dev-a", got["user_id"])
	assert.Equal(t, n.EventID.String(), got["event_id"])
	assert.Equal(t, "dev-a", n.PartitionKey())
}
