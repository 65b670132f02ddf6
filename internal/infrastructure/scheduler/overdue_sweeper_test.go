package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockMarker struct {
	mock.Mock
}

func (m *mockMarker) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestOverdueSweeper_RunOnceUsesClock(t *testing.T) {
	fixed := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	marker := new(mockMarker)
	marker.On("MarkOverdue", mock.Anything, fixed).Return(3, nil).Once()

	core, logs := observer.New(zap.InfoLevel)
	sweeper := NewOverdueSweeper(OverdueSweeperConfig{}, marker, zap.New(core))
	sweeper.now = func() time.Time { return fixed }

	sweeper.RunOnce(context.Background())

	marker.AssertExpectations(t)
	require.Equal(t, 1, logs.FilterMessage("Bills marked overdue").Len())
}

func TestOverdueSweeper_LogsFailures(t *testing.T) {
	marker := new(mockMarker)
	marker.On("MarkOverdue", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()

	core, logs := observer.New(zap.InfoLevel)
	sweeper := NewOverdueSweeper(OverdueSweeperConfig{}, marker, zap.New(core))
	sweeper.RunOnce(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Overdue sweep failed").Len())
}

func TestOverdueSweeper_StartRunsImmediatelyAndStops(t *testing.T) {
	marker := new(mockMarker)
	called := make(chan struct{}, 10)
	marker.On("MarkOverdue", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return(0, nil)

	sweeper := NewOverdueSweeper(OverdueSweeperConfig{Interval: 10 * time.Millisecond}, marker, zap.NewNop())
	require.NoError(t, sweeper.Start(context.Background()))
	require.NoError(t, sweeper.Start(context.Background()))

	for range 2 {
		select {
		case <-called:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep did not run")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sweeper.Stop(ctx))
	require.NoError(t, sweeper.Stop(ctx))
}
