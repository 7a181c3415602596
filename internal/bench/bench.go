// Package bench measures units of work and accumulates per-name wall-clock
// cost for the whole process.
package bench

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpost/internal/logfields"
)

// Measure runs fn and returns the elapsed wall-clock time with fn's error.
func Measure(fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	return time.Since(start), err
}

// Entry is one accumulated name.
type Entry struct {
	Name  string
	Total time.Duration
	Calls int
}

// Milliseconds returns the cumulative cost rounded to whole milliseconds.
func (e Entry) Milliseconds() int64 {
	return int64(math.Round(float64(e.Total) / float64(time.Millisecond)))
}

// Accumulator maps names to cumulative durations. It is created once per
// process, never reset, and safe for concurrent use.
type Accumulator struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
	report  sync.Once
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{entries: make(map[string]*Entry)}
}

// Add records d under name.
func (a *Accumulator) Add(name string, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[name]
	if !ok {
		e = &Entry{Name: name}
		a.entries[name] = e
		a.order = append(a.order, name)
	}
	e.Total += d
	e.Calls++
}

// Time measures fn and adds the elapsed time under name. The error from fn is
// returned unchanged; time spent in a failing call is still recorded.
func (a *Accumulator) Time(name string, fn func() error) (time.Duration, error) {
	d, err := Measure(fn)
	a.Add(name, d)
	return d, err
}

// Snapshot returns a copy of all entries in first-recorded order.
func (a *Accumulator) Snapshot() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, *a.entries[name])
	}
	return out
}

// Sorted returns a copy of all entries sorted by name.
func (a *Accumulator) Sorted() []Entry {
	out := a.Snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Total returns the sum of all entries.
func (a *Accumulator) Total() time.Duration {
	var sum time.Duration
	for _, e := range a.Snapshot() {
		sum += e.Total
	}
	return sum
}

// Report logs one line per name in name order and a total line. Pages are
// processed concurrently, so first-recorded order differs between runs.
// Only the first call logs; later calls return false.
func (a *Accumulator) Report(logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	reported := false
	a.report.Do(func() {
		reported = true
		ctx := context.Background()
		for _, e := range a.Sorted() {
			logger.LogAttrs(ctx, slog.LevelInfo, "transform timing",
				logfields.Transform(e.Name),
				slog.Int64("ms", e.Milliseconds()),
				slog.Int("calls", e.Calls))
		}
		total := Entry{Name: "total", Total: a.Total()}
		logger.LogAttrs(ctx, slog.LevelInfo, "transform timing",
			logfields.Transform(total.Name),
			slog.Int64("ms", total.Milliseconds()))
	})
	return reported
}
