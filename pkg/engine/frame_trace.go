package engine

import (
	"sync"
	"time"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FramePhaseTimings captures time spent in each cycle phase (ms).
type FramePhaseTimings struct {
	DispatchMs  float64 `json:"dispatchMs"`
	ReconcileMs float64 `json:"reconcileMs"`
	LayoutMs    float64 `json:"layoutMs"`
	PaintMs     float64 `json:"paintMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	Dispatched   int `json:"dispatched"`
	ShadowNodes  int `json:"shadowNodes"`
	StateEntries int `json:"stateEntries"`
	StatePruned  int `json:"statePruned"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Timestamp int64             `json:"ts"`
	FrameMs   float64           `json:"frameMs"`
	Phases    FramePhaseTimings `json:"phases"`
	Counts    FrameCounts       `json:"counts"`
	// Failed is set when the cycle did not commit.
	Failed bool `json:"failed,omitempty"`
}

// FrameTimeline is a chronological view of recent samples.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	FailedFrames  int           `json:"failedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer stores recent frame samples in a ring buffer.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   []FrameSample
	index     int
	count     int
	dropped   int
	failed    int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a buffer holding capacity samples. Frames
// slower than threshold count as dropped. Non-positive arguments select the
// defaults.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   make([]FrameSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *FrameTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Add records a frame sample and updates the dropped and failed counts.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if frameDuration > b.threshold {
		b.dropped++
	}
	if sample.Failed {
		b.failed++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tl := FrameTimeline{
		DroppedFrames: b.dropped,
		FailedFrames:  b.failed,
		ThresholdMs:   durationToMillis(b.threshold),
	}
	if b.count == 0 {
		return tl
	}
	tl.Samples = make([]FrameSample, b.count)
	if b.count < len(b.samples) {
		copy(tl.Samples, b.samples[:b.count])
	} else {
		copy(tl.Samples, b.samples[b.index:])
		copy(tl.Samples[len(b.samples)-b.index:], b.samples[:b.index])
	}
	return tl
}

// Last returns the n most recent samples of tl.
func (tl FrameTimeline) Last(n int) FrameTimeline {
	if n > 0 && n < len(tl.Samples) {
		tl.Samples = tl.Samples[len(tl.Samples)-n:]
	}
	return tl
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
