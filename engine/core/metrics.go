package core

import (
	"sync"

	"github.com/spaghettifunk/anima-blend/engine/containers"
)

const AVG_COUNT int = 30

type MetricsState struct {
	frameTimes         *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	// Draw counters for the frame currently being rendered.
	DrawnBatches  uint32
	DrawnVertices uint32
	// Draw counters of the last completed frame.
	LastBatches  uint32
	LastVertices uint32
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
		}
	})
	return nil
}

func MetricsUpdate(frame_elapsed_time float64) {
	if metricsState == nil {
		_ = MetricsInitialize()
	}
	// Calculate frame ms average
	frame_ms := (frame_elapsed_time * 1000.0)
	if metricsState.frameTimes.IsFull() {
		_, _ = metricsState.frameTimes.Dequeue()
	}
	_ = metricsState.frameTimes.Enqueue(frame_ms)
	sum := 0.0
	metricsState.frameTimes.Each(func(v float64) {
		sum += v
	})
	metricsState.MSavg = sum / float64(metricsState.frameTimes.Len())

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frame_ms
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++

	metricsState.LastBatches = metricsState.DrawnBatches
	metricsState.LastVertices = metricsState.DrawnVertices
	metricsState.DrawnBatches = 0
	metricsState.DrawnVertices = 0
}

// MetricsAddDrawn records one executed draw batch of vertexCount vertices.
func MetricsAddDrawn(vertexCount int) {
	if metricsState == nil {
		_ = MetricsInitialize()
	}
	metricsState.DrawnBatches++
	metricsState.DrawnVertices += uint32(vertexCount)
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.FPS, metricsState.MSavg
}

// MetricsDrawn returns batches and vertices drawn in the last completed frame.
func MetricsDrawn() (uint32, uint32) {
	if metricsState == nil {
		return 0, 0
	}
	return metricsState.LastBatches, metricsState.LastVertices
}
