package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCronFiresAfterInitialDelay(t *testing.T) {
	var fires int32
	c := New(20*time.Millisecond, func(ctx context.Context) { atomic.AddInt32(&fires, 1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Stop()

	// Nothing should fire immediately: the first tick is one interval away.
	time.Sleep(5 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fires))

	time.Sleep(40 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fires), int32(1))
}

func TestCronStopEndsTheLoop(t *testing.T) {
	var fires int32
	c := New(10*time.Millisecond, func(ctx context.Context) { atomic.AddInt32(&fires, 1) })
	c.Start(context.Background())

	time.Sleep(25 * time.Millisecond)
	c.Stop()
	after := atomic.LoadInt32(&fires)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&fires), "no fire should happen after Stop")
}
