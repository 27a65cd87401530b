package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Stats aggregates recorded shader builds.
type Stats struct {
	// Builds is the number of recorded builds.
	Builds int

	// Total is the summed duration of all recorded builds.
	Total time.Duration

	// Bytes is the summed size of all produced sources.
	Bytes int

	// Slowest names the longest recorded build.
	Slowest string

	// SlowestDuration is the duration of the longest recorded build.
	SlowestDuration time.Duration
}

// Average returns the mean build duration, or zero if nothing was recorded.
func (s Stats) Average() time.Duration {
	if s.Builds == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Builds)
}

func (s *Stats) add(name string, d time.Duration, bytes int) {
	s.Builds++
	s.Total += d
	s.Bytes += bytes
	if d > s.SlowestDuration || s.Builds == 1 {
		s.Slowest = name
		s.SlowestDuration = d
	}
}

// Profiler tracks shader build timings and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval. It is safe for concurrent use.
type Profiler struct {
	mu sync.Mutex

	lastTime       time.Time
	updateInterval time.Duration
	logger         *slog.Logger

	total  Stats
	window Stats

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with all specified options applied.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options such as WithInterval and WithLogger
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		logger:         slog.Default(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Record adds one build to the statistics.
//
// Parameters:
//   - name: the program or builder label
//   - d: how long the build took
//   - bytes: the size of the produced source
func (p *Profiler) Record(name string, d time.Duration, bytes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total.add(name, d, bytes)
	p.window.add(name, d, bytes)
}

// Time runs fn and records its duration under name together with the size fn reports.
//
// Parameters:
//   - name: the program or builder label
//   - fn: the build to time, returning the produced size
//
// Returns:
//   - error: the error returned by fn, failed builds are not recorded
func (p *Profiler) Time(name string, fn func() (int, error)) error {
	start := time.Now()
	bytes, err := fn()
	if err != nil {
		return err
	}
	p.Record(name, time.Since(start), bytes)
	return nil
}

// Tick logs the builds recorded since the last logged tick once the update interval has
// elapsed. Statistics include: build count and rate, average and slowest build, output size,
// heap usage, allocation rate and GC count/pause times.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("shader build stats",
		slog.Int("builds", p.window.Builds),
		slog.Float64("builds_per_sec", float64(p.window.Builds)/elapsed.Seconds()),
		slog.Duration("avg", p.window.Average()),
		slog.String("slowest", p.window.Slowest),
		slog.Duration("slowest_duration", p.window.SlowestDuration),
		slog.Int("bytes", p.window.Bytes),
		slog.Float64("heap_mb", allocMB),
		slog.Float64("alloc_rate_mb_per_sec", allocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_last_pause_us", lastPauseUs),
		slog.Uint64("gc_max_pause_us", maxPauseUs),
	)

	p.window = Stats{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Summary returns the statistics of every build recorded since the profiler was created.
//
// Returns:
//   - Stats: the accumulated statistics
func (p *Profiler) Summary() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}
