package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming("isothermal", 100*time.Millisecond)
	c.RecordTiming("isothermal", 300*time.Millisecond)
	c.RecordTiming("wateranalysis", 50*time.Millisecond)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 2)

	iso := snap.Operations["isothermal"]
	assert.Equal(t, int64(2), iso.Count)
	assert.Equal(t, int64(400), iso.TotalTimeMs)
	assert.Equal(t, 200.0, iso.AvgTimeMs)
	assert.Equal(t, int64(100), iso.MinTimeMs)
	assert.Equal(t, int64(300), iso.MaxTimeMs)

	wa := snap.Operations["wateranalysis"]
	assert.Equal(t, int64(1), wa.Count)
	assert.Equal(t, int64(50), wa.MinTimeMs)
	assert.Equal(t, int64(50), wa.MaxTimeMs)
}

func TestSnapshotEmpty(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	assert.Empty(t, snap.Operations)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestRecordTimingConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.RecordTiming("isothermal", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(1000), snap.Operations["isothermal"].Count)
}
