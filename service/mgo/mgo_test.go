package mgo

import (
	"context"
	"errors"
	"testing"
	"time"

	"PolyChat/data/database/mgo/mongoutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffCapped(t *testing.T) {
	for i := 0; i < 10; i++ {
		d := backoff(i)
		assert.LessOrEqual(t, d, maxBackoff)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestConnectStopsOnCancel(t *testing.T) {
	m := NewManager(&mongoutil.Config{Uri: "mongodb://127.0.0.1:1", Database: "x"})
	boom := errors.New("refused")
	calls := 0
	m.dial = func(context.Context, *mongoutil.Config) (*mongoutil.Client, error) {
		calls++
		return nil, boom
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := m.Connect(ctx)
	require.Error(t, err)
	assert.GreaterOrEqual(t, calls, 1)
	assert.False(t, m.Healthy())
	assert.ErrorIs(t, m.Err(), boom)
}

func TestConnectRejectsInvalidConfig(t *testing.T) {
	m := NewManager(&mongoutil.Config{Uri: "mongodb://127.0.0.1:1"})
	calls := 0
	m.dial = func(context.Context, *mongoutil.Config) (*mongoutil.Client, error) {
		calls++
		return nil, errors.New("unreachable")
	}

	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, err, m.Err())
	assert.False(t, m.Healthy())
}

func TestErrKeepsLatestOfAnyType(t *testing.T) {
	m := NewManager(&mongoutil.Config{Database: "x"})
	assert.NoError(t, m.Err())

	first := errors.New("refused")
	m.lastErr.Store(&first)
	var second error = context.DeadlineExceeded
	m.lastErr.Store(&second)
	assert.ErrorIs(t, m.Err(), context.DeadlineExceeded)
}

func TestRunRequiresConnect(t *testing.T) {
	m := NewManager(&mongoutil.Config{Database: "x"})
	assert.Error(t, m.Run(context.Background(), time.Second))
}
