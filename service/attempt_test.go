package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mycenter/interfaces/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttempt_FirstSettleWins(t *testing.T) {
	conn := &mock.DataConnectionMock{}
	boom := errors.New("boom")

	t.Run("resolve_then_reject", func(t *testing.T) {
		a := NewAttempt()
		assert.False(t, a.Settled())
		assert.True(t, a.Resolve(conn))
		assert.False(t, a.Reject(boom))
		got, err := a.Result()
		require.NoError(t, err)
		assert.Same(t, conn, got)
	})
	t.Run("reject_then_resolve", func(t *testing.T) {
		a := NewAttempt()
		assert.True(t, a.Reject(boom))
		assert.False(t, a.Resolve(conn))
		got, err := a.Result()
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, got)
	})
	t.Run("reject_nil_is_closed", func(t *testing.T) {
		a := NewAttempt()
		a.Reject(nil)
		_, err := a.Result()
		assert.ErrorIs(t, err, ErrConnectionClosed)
	})
}

func TestAttempt_Wait(t *testing.T) {
	t.Run("wakes_on_resolve", func(t *testing.T) {
		a := NewAttempt()
		conn := &mock.DataConnectionMock{}
		go func() {
			time.Sleep(5 * time.Millisecond)
			a.Resolve(conn)
		}()
		got, err := a.Wait(context.Background())
		require.NoError(t, err)
		assert.Same(t, conn, got)
	})
	t.Run("already_rejected", func(t *testing.T) {
		a := NewAttempt()
		a.Reject(ErrConnectionClosed)
		_, err := a.Wait(context.Background())
		assert.ErrorIs(t, err, ErrConnectionClosed)
	})
	t.Run("bounded_by_context", func(t *testing.T) {
		a := NewAttempt()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := a.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, a.Settled())
	})
}
