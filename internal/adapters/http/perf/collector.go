package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes inbound page requests, outbound meetup API calls
// and session store queries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindUpstream
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /admin" or "meetupapi.ListGroups"
	StatusCode int    // 0 when an upstream call never got a response
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries. When full the
// oldest entries are overwritten; aggregation only happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	total   int64
}

// NewCollector creates a collector holding up to size entries.
// PRE: none
// POST: Returns a ready-to-use collector; size <= 0 uses DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores an entry, overwriting the oldest one when the buffer is full.
// Safe on a nil Collector.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	c.mu.Unlock()
	atomic.AddInt64(&c.total, 1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return atomic.LoadInt64(&c.total)
}

// PathStat aggregates timing for one path or API operation.
type PathStat struct {
	Path     string  `json:"path"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	TotalMs  float64 `json:"total_ms"`
}

// Snapshot is the aggregated view served on the admin perf endpoint.
type Snapshot struct {
	TotalRecorded   int64      `json:"total_recorded"`
	Requests        int        `json:"requests"`
	RequestP50Ms    float64    `json:"request_p50_ms"`
	RequestP95Ms    float64    `json:"request_p95_ms"`
	RequestP99Ms    float64    `json:"request_p99_ms"`
	SlowestPaths    []PathStat `json:"slowest_paths"`
	SlowestUpstream []PathStat `json:"slowest_upstream"`
	SlowestQueries  []PathStat `json:"slowest_queries"`
}

// Snapshot aggregates entries newer than since, keeping the topN slowest
// paths of each kind by average duration.
// PRE: topN > 0
// POST: Returns percentiles over request entries and top-N lists
// INVARIANT: Recorded entries are not modified; a nil Collector yields an empty snapshot
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	requests := make(map[string]*PathStat)
	upstream := make(map[string]*PathStat)
	queries := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		var target map[string]*PathStat
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			target = requests
		case KindUpstream:
			target = upstream
		default:
			target = queries
		}
		s, ok := target[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			target[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
		if e.Kind != KindQuery && (e.StatusCode == 0 || e.StatusCode >= 400) {
			s.Failures++
		}
	}

	snap := Snapshot{
		TotalRecorded:   c.TotalRecorded(),
		Requests:        len(durations),
		SlowestPaths:    slowest(requests, topN),
		SlowestUpstream: slowest(upstream, topN),
		SlowestQueries:  slowest(queries, topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
