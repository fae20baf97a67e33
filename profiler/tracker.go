package profiler

import (
	"sort"
	"sync"
	"time"
)

// TimeTracker tracks timing statistics for one named operation.
type TimeTracker struct {
	Name      string        `json:"name"`
	Count     int64         `json:"count"`
	TotalTime time.Duration `json:"total_time"`
	MinTime   time.Duration `json:"min_time"`
	MaxTime   time.Duration `json:"max_time"`
}

// Average returns the mean recorded duration.
func (t TimeTracker) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// Trackers aggregates TimeTrackers by name. It is safe for concurrent use.
type Trackers struct {
	mu       sync.Mutex
	trackers map[string]*TimeTracker
}

// NewTrackers creates an empty tracker set.
func NewTrackers() *Trackers {
	return &Trackers{trackers: make(map[string]*TimeTracker)}
}

// Record adds one duration to the tracker called name.
func (ts *Trackers) Record(name string, d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tracker, exists := ts.trackers[name]
	if !exists {
		tracker = &TimeTracker{
			Name:    name,
			MinTime: d,
			MaxTime: d,
		}
		ts.trackers[name] = tracker
	}

	tracker.Count++
	tracker.TotalTime += d
	if d < tracker.MinTime {
		tracker.MinTime = d
	}
	if d > tracker.MaxTime {
		tracker.MaxTime = d
	}
}

// StartOperation begins timing an operation and returns the function to call
// when it completes.
func (ts *Trackers) StartOperation(name string, now func() time.Time) func() {
	start := now()
	return func() {
		ts.Record(name, now().Sub(start))
	}
}

// Snapshot returns a copy of every tracker sorted by name.
func (ts *Trackers) Snapshot() []TimeTracker {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	out := make([]TimeTracker, 0, len(ts.trackers))
	for _, t := range ts.trackers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
