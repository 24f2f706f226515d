package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPause_BlocksAtLeastDelay(t *testing.T) {
	p := New(30*time.Millisecond, nil)
	start := time.Now()
	require.NoError(t, p.Pause(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPause_ZeroDelay(t *testing.T) {
	p := New(0, nil)
	start := time.Now()
	require.NoError(t, p.Pause(context.Background()))
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestPause_Cancelled(t *testing.T) {
	p := New(time.Hour, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.Pause(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
