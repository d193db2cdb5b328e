package engine

import (
	"runtime"
	"sync"
	"time"
)

const (
	runtimeSampleIntervalDefault = time.Second
	runtimeSampleMinInterval     = 10 * time.Millisecond
	runtimeSampleMaxSamples      = 120
)

// RuntimeSample is a snapshot of Go memory and GC figures together with
// the app's outstanding background work.
type RuntimeSample struct {
	Timestamp        int64  `json:"ts"`
	HeapAlloc        uint64 `json:"heapAlloc"`
	HeapInuse        uint64 `json:"heapInuse"`
	NumGC            uint32 `json:"numGC"`
	PauseTotalNs     uint64 `json:"pauseTotalNs"`
	Goroutines       int    `json:"goroutines"`
	AsyncPending     int64  `json:"asyncPending"`
	ResourcesPending int    `json:"resourcesPending"`
}

// RuntimeSampleBuffer keeps the most recent samples in a ring.
type RuntimeSampleBuffer struct {
	mu      sync.RWMutex
	samples []RuntimeSample
	index   int
	count   int
}

// NewRuntimeSampleBuffer returns a buffer holding up to capacity samples,
// clamped to [1, 120].
func NewRuntimeSampleBuffer(capacity int) *RuntimeSampleBuffer {
	capacity = min(max(capacity, 1), runtimeSampleMaxSamples)
	return &RuntimeSampleBuffer{samples: make([]RuntimeSample, capacity)}
}

// Add stores a sample, overwriting the oldest when full.
func (b *RuntimeSampleBuffer) Add(sample RuntimeSample) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	b.mu.Unlock()
}

// Snapshot returns samples in chronological order.
func (b *RuntimeSampleBuffer) Snapshot() []RuntimeSample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return nil
	}
	result := make([]RuntimeSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}
	return result
}

func normalizeRuntimeInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		return runtimeSampleIntervalDefault
	}
	return max(interval, runtimeSampleMinInterval)
}

// RuntimeSample reads the current figures. It does not take the frame
// lock.
func (a *App) RuntimeSample() RuntimeSample {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	s := RuntimeSample{
		Timestamp:    time.Now().UnixMilli(),
		HeapAlloc:    stats.HeapAlloc,
		HeapInuse:    stats.HeapInuse,
		NumGC:        stats.NumGC,
		PauseTotalNs: stats.PauseTotalNs,
		Goroutines:   runtime.NumGoroutine(),
		AsyncPending: a.asyncCount.Load(),
	}
	if a.measure.Resources != nil {
		s.ResourcesPending = a.measure.Resources.Pending()
	}
	return s
}

// runtimeSampler fills a buffer from a ticker until stopped.
type runtimeSampler struct {
	stop chan struct{}
	done chan struct{}
}

func startRuntimeSampler(app *App, buffer *RuntimeSampleBuffer, interval time.Duration) *runtimeSampler {
	interval = normalizeRuntimeInterval(interval)
	s := &runtimeSampler{stop: make(chan struct{}), done: make(chan struct{})}
	buffer.Add(app.RuntimeSample())
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				buffer.Add(app.RuntimeSample())
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

func (s *runtimeSampler) Stop() {
	close(s.stop)
	<-s.done
}
