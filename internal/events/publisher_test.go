package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"chargeslot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []recordedPublish
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	metrics.EventsPublishedTotal.Reset()
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: DefaultExchange}

	err := p.Publish(context.Background(), "booking.created", map[string]string{"booking_id": "b-1"})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "booking.created", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.NotEmpty(t, got.msg.MessageId)

	var body map[string]string
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "b-1", body["booking_id"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues("booking.created", "ok")))
}

func TestPublish_Error(t *testing.T) {
	metrics.EventsPublishedTotal.Reset()
	p := &Publisher{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: DefaultExchange}

	err := p.Publish(context.Background(), "booking.reported", struct{}{})
	assert.ErrorContains(t, err, "channel closed")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues("booking.reported", "failed")))
}

func TestPublish_MarshalError(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: DefaultExchange}

	err := p.Publish(context.Background(), "booking.created", make(chan int))
	assert.Error(t, err)
	assert.Empty(t, ch.published)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.Publish(context.Background(), "booking.created", nil))
	assert.NoError(t, n.Close())
}
