package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/queue"
)

func TestApplyRefreshesCachedCounts(t *testing.T) {
	store := newMemStore(rosterOf()...)
	cache := mapCache{"2024-01-10": {Present: 9}}
	svc := NewService(store, memRoster{store}, holidayCount(0), WithCache(cache), WithClock(fixedClock("2024-01-10")), WithLocation(time.UTC))
	ctx := context.Background()
	store.records = append(store.records, Record{StudentID: r2, Date: "2024-01-10", Status: StatusAbsent})

	svc.Apply(ctx, queue.Message{Type: "other", Body: []byte("2024-01-10")})
	svc.Apply(ctx, queue.Message{Type: queue.TopicAttendanceChanged, Body: []byte("10/01/2024")})
	assert.Equal(t, DayCounts{Present: 9}, cache["2024-01-10"])
	assert.Zero(t, store.countHits)

	svc.Apply(ctx, queue.Message{Type: queue.TopicAttendanceChanged, Body: []byte("2024-01-10")})
	assert.Equal(t, DayCounts{Absent: 1}, cache["2024-01-10"])
}

func TestDrainStopsWithContext(t *testing.T) {
	store := newMemStore(rosterOf()...)
	svc := NewService(store, memRoster{store}, holidayCount(0), WithClock(fixedClock("2024-01-10")), WithLocation(time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(4)
	require.NoError(t, q.Publish(ctx, queue.Message{Type: queue.TopicAttendanceChanged, Body: []byte("2024-01-10")}))
	events, err := q.Consume(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		svc.Drain(ctx, events)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.countHits == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not stop")
	}
}
