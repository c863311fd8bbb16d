package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-handover/internal/common/notifyprotocol"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	calls  []publishCall
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.calls = append(c.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return c.err
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_Send(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: DefaultExchange}
	msg := notifyprotocol.Message{
		DatasetID:      "0192f0c4-0000-7000-8000-000000000001",
		Source:         "tiktok",
		OrderNumber:    "TT-1",
		TrackingNumber: "TT900",
		OriginFile:     "tiktok.csv",
		ScannedAt:      time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Send(context.Background(), msg))
	require.Len(t, ch.calls, 1)
	call := ch.calls[0]
	assert.Equal(t, DefaultExchange, call.exchange)
	assert.Equal(t, "tiktok", call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, msg.DatasetID+"/TT900", call.msg.MessageId)

	var decoded notifyprotocol.Message
	require.NoError(t, json.Unmarshal(call.msg.Body, &decoded))
	assert.Equal(t, msg, decoded)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_SendError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{channel: ch, exchange: DefaultExchange}
	err := p.Send(context.Background(), notifyprotocol.Message{TrackingNumber: "X"})
	assert.ErrorContains(t, err, "channel closed")
}
