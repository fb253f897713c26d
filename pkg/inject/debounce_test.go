package inject

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CollapsesBursts(t *testing.T) {
	var fired atomic.Int64
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Arm()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), fired.Load())
}

func TestDebouncer_FiresPerQuietPeriod(t *testing.T) {
	var fired atomic.Int64
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Arm()
	time.Sleep(60 * time.Millisecond)
	d.Arm()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int64(2), fired.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var fired atomic.Int64
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })

	d.Arm()
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int64(0), fired.Load())
}
