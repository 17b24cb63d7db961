package alerting

import (
	"context"
	"sync"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/monitor"
)

// RecentBuffer keeps the most recent alerts in a bounded ring for the admin
// API. When full, the oldest alert is overwritten.
type RecentBuffer struct {
	mu       sync.Mutex
	alerts   []monitor.Alert
	head     int // next write position
	count    int
	capacity int
}

// NewRecentBuffer creates a buffer with the given capacity (default 100).
func NewRecentBuffer(capacity int) *RecentBuffer {
	if capacity <= 0 {
		capacity = 100
	}
	return &RecentBuffer{
		alerts:   make([]monitor.Alert, capacity),
		capacity: capacity,
	}
}

// Dispatch stores the alert. It never fails.
func (b *RecentBuffer) Dispatch(_ context.Context, alert monitor.Alert) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count < b.capacity {
		b.count++
	}
	b.alerts[b.head] = alert
	b.head = (b.head + 1) % b.capacity
	return nil
}

// Recent returns up to n alerts, newest first. n <= 0 returns all.
func (b *RecentBuffer) Recent(n int) []monitor.Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]monitor.Alert, n)
	for i := 0; i < n; i++ {
		idx := (b.head - 1 - i + b.capacity) % b.capacity
		out[i] = b.alerts[idx]
	}
	return out
}

// Len returns the number of buffered alerts.
func (b *RecentBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
