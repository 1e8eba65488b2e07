package scheduler

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJobRejectsInvalidSchedule(t *testing.T) {
	service := NewService(arbor.NewLogger())

	err := service.RegisterJob("bad", "not a cron expr", "", func() error { return nil })
	assert.Error(t, err)
}

func TestRegisterJobRejectsDuplicates(t *testing.T) {
	service := NewService(arbor.NewLogger())
	handler := func() error { return nil }

	require.NoError(t, service.RegisterJob("sync", "0 0 * * *", "", handler))
	assert.Error(t, service.RegisterJob("sync", "0 0 * * *", "", handler))
}

func TestTriggerJobRunsHandler(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var runs int64
	require.NoError(t, service.RegisterJob("sync", "0 0 * * *", "", func() error {
		atomic.AddInt64(&runs, 1)
		return nil
	}))

	require.NoError(t, service.TriggerJob("sync"))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerJobUnknownName(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.Error(t, service.TriggerJob("missing"))
}

func TestJobStatusTracksLastError(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.RegisterJob("sync", "0 0 * * *", "nightly sync", func() error {
		return fmt.Errorf("partition unavailable")
	}))

	require.NoError(t, service.TriggerJob("sync"))

	assert.Eventually(t, func() bool {
		status, err := service.GetJobStatus("sync")
		if err != nil {
			return false
		}
		return status.LastError == "partition unavailable" && status.LastRun != nil && !status.IsRunning
	}, time.Second, 10*time.Millisecond)

	status, err := service.GetJobStatus("sync")
	require.NoError(t, err)
	assert.Equal(t, "nightly sync", status.Description)
	assert.Equal(t, "0 0 * * *", status.Schedule)
}

func TestJobsDoNotOverlap(t *testing.T) {
	service := NewService(arbor.NewLogger()).(*Service)

	var current, peak int64
	slowHandler := func() error {
		c := atomic.AddInt64(&current, 1)
		if c > atomic.LoadInt64(&peak) {
			atomic.StoreInt64(&peak, c)
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return nil
	}

	require.NoError(t, service.RegisterJob("one", "0 0 * * *", "", slowHandler))
	require.NoError(t, service.RegisterJob("two", "0 0 * * *", "", slowHandler))

	require.NoError(t, service.TriggerJob("one"))
	require.NoError(t, service.TriggerJob("two"))

	assert.Eventually(t, func() bool {
		s1, _ := service.GetJobStatus("one")
		s2, _ := service.GetJobStatus("two")
		return s1 != nil && s2 != nil && s1.LastRun != nil && s2.LastRun != nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(1), atomic.LoadInt64(&peak))
}

func TestStartStop(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.RegisterJob("sync", "0 0 * * *", "", func() error { return nil }))

	assert.False(t, service.IsRunning())
	require.NoError(t, service.Start())
	assert.True(t, service.IsRunning())
	assert.Error(t, service.Start())

	require.NoError(t, service.Stop())
	assert.False(t, service.IsRunning())
	require.NoError(t, service.Stop())
}

func TestPanickingJobIsRecovered(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.RegisterJob("sync", "0 0 * * *", "", func() error {
		panic("parser exploded")
	}))

	require.NoError(t, service.TriggerJob("sync"))

	assert.Eventually(t, func() bool {
		status, err := service.GetJobStatus("sync")
		if err != nil {
			return false
		}
		return status.LastError == "panic: parser exploded" && !status.IsRunning
	}, time.Second, 10*time.Millisecond)
}
