package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "session-1" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		if gjson.GetBytes(value, "generation").Int() != 4 {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})

	p, err := NewPublisherWithProducer(producer, "catalog.browse-activity")
	require.NoError(t, err)

	err = p.Publish(context.Background(), &models.BrowseActivity{
		SessionID:  "session-1",
		Generation: 4,
		Transport:  models.TransportREST,
		Outcome:    models.BrowseOutcomeSuccess,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p, err := NewPublisherWithProducer(producer, "catalog.browse-activity")
	require.NoError(t, err)

	err = p.Publish(context.Background(), &models.BrowseActivity{SessionID: "s"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestDisabledPublisher(t *testing.T) {
	p, err := NewPublisher(config.KafkaConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), &models.BrowseActivity{}))
	assert.NoError(t, p.Close())
}
