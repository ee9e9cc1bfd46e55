package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame rows proportionally to each tracer's
// speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	return distributeRows(speedWeights(tracers), frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = distributeRows(speedWeights(tracers), frameH)
		return sch.blockAssignment
	}

	weights := make([]float64, len(tracers))
	for idx, tr := range tracers {
		stats := tr.Stats()
		if stats.RenderTime <= 0 || stats.BlockH == 0 {
			// No usable feedback; fall back to the speed estimates.
			sch.blockAssignment = distributeRows(speedWeights(tracers), frameH)
			return sch.blockAssignment
		}
		weights[idx] = float64(stats.BlockH) / float64(stats.RenderTime)
	}

	sch.blockAssignment = distributeRows(weights, frameH)
	return sch.blockAssignment
}

func speedWeights(tracers []Tracer) []float64 {
	weights := make([]float64, len(tracers))
	for idx, tr := range tracers {
		weights[idx] = float64(tr.Speed())
	}
	return weights
}

// Assign each weight a share of frameH rows proportional to its value. Every
// entry gets at least one row while rows last; rows lost to rounding go to
// the first entry.
func distributeRows(weights []float64, frameH uint32) []uint32 {
	rows := make([]uint32, len(weights))
	if len(weights) == 0 {
		return rows
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	var scheduledRows uint32
	for idx, w := range weights {
		share := 1.0
		if total > 0 {
			share = math.Max(1.0, math.Floor(w*float64(frameH)/total))
		}
		rows[idx] = uint32(share)
		scheduledRows += rows[idx]
	}

	// Take back rows handed out by the one row minimum, starting from the
	// largest blocks.
	for scheduledRows > frameH {
		largest := 0
		for idx := range rows {
			if rows[idx] > rows[largest] {
				largest = idx
			}
		}
		if rows[largest] == 0 {
			break
		}
		rows[largest]--
		scheduledRows--
	}

	// In case rows don't add up to the frame height append the missing ones to the first tracer
	rows[0] += frameH - scheduledRows
	return rows
}
