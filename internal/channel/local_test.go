package channel

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerd/internal/game"
)

func TestLocalRoundTrip(t *testing.T) {
	clock := quartz.NewReal()
	l := NewLocal(clock)

	require.NoError(t, l.Send(context.Background(), map[string]string{"message_type": "ping"}))
	raw := <-l.Outbox()
	assert.JSONEq(t, `{"message_type":"ping"}`, string(raw))

	bet := 40
	require.NoError(t, l.Push(game.Message{Type: game.MessageTypeBet, Bet: &bet}))
	msg, err := l.Recv(context.Background(), clock.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, game.MessageTypeBet, msg.Type)
	require.NotNil(t, msg.Bet)
	assert.Equal(t, 40, *msg.Bet)
}

func TestLocalRecvTimeout(t *testing.T) {
	clock := quartz.NewReal()
	l := NewLocal(clock)

	_, err := l.Recv(context.Background(), clock.Now().Add(10*time.Millisecond))
	assert.ErrorIs(t, err, game.ErrMessageTimeout)

	// a deadline in the past times out without waiting
	_, err = l.Recv(context.Background(), clock.Now().Add(-time.Second))
	assert.ErrorIs(t, err, game.ErrMessageTimeout)
}

func TestLocalClose(t *testing.T) {
	clock := quartz.NewReal()
	l := NewLocal(clock)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	select {
	case <-l.Done():
	default:
		t.Fatal("done channel not closed")
	}

	assert.ErrorIs(t, l.Send(context.Background(), "x"), game.ErrChannelClosed)
	_, err := l.Recv(context.Background(), clock.Now().Add(time.Second))
	assert.ErrorIs(t, err, game.ErrChannelClosed)
	assert.ErrorIs(t, l.Push(game.Message{}), game.ErrChannelClosed)
}
