package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDelivery struct {
	acked, nacked, requeue bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked, d.requeue = true, requeue
	return nil
}

func TestHandleAcksOnSuccess(t *testing.T) {
	d := &fakeDelivery{}
	var got []byte
	Handle(zap.NewNop(), d, "m1", []byte("hi"), func(b []byte) error {
		got = b
		return nil
	})
	assert.True(t, d.acked)
	assert.False(t, d.nacked)
	assert.Equal(t, []byte("hi"), got)
}

func TestHandleRequeuesOnFailure(t *testing.T) {
	d := &fakeDelivery{}
	Handle(zap.NewNop(), d, "m1", nil, func([]byte) error { return errors.New("smtp down") })
	assert.False(t, d.acked)
	assert.True(t, d.nacked)
	assert.True(t, d.requeue)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), KeyMailSend, MailRequested{To: "a@b.io"}, "req-1"))
	ev := r.Events()
	require.Len(t, ev, 1)
	assert.Equal(t, KeyMailSend, ev[0].Key)
	assert.Equal(t, "req-1", ev[0].ReqID)

	r.Err = errors.New("broker")
	assert.Error(t, r.Publish(context.Background(), KeyMailSend, nil, ""))
}

func TestNilConsumerNotInitialized(t *testing.T) {
	var c *Consumer
	assert.Error(t, c.Consume(context.Background(), 1, nil))
	assert.NoError(t, c.Close())
}
