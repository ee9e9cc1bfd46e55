package cpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/tracer"
)

// A tracer that answers block requests on the cpu with a single worker
// go-routine. Several tracers can share the same scene.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Relative speed reported to the block schedulers.
	speed uint32

	// Answers the hierarchy queries.
	intersector *accel.Intersector

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats tracer.Stats

	// The attached scene.
	sceneData *scene.Scene
}

// Create a new cpu tracer using the default leaf intersector.
func NewTracer(id string, speed uint32) *Tracer {
	return NewTracerWithIntersector(id, speed, accel.New(accel.Moeller))
}

// Create a new cpu tracer that runs its queries through intersector.
func NewTracerWithIntersector(id string, speed uint32, intersector *accel.Intersector) *Tracer {
	return &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		speed:        speed,
		intersector:  intersector,
		blockReqChan: make(chan tracer.BlockRequest, 1),
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the relative speed estimate.
func (tr *Tracer) Speed() uint32 {
	return tr.speed
}

// Attach scene and start the worker. Calling Init on a running tracer
// replaces its scene once the current block completes.
func (tr *Tracer) Init(sc *scene.Scene) error {
	if sc == nil || sc.Hierarchy == nil || sc.Camera == nil {
		return tracer.ErrSceneNotLoaded
	}

	tr.Lock()
	defer tr.Unlock()

	tr.sceneData = sc
	tr.startWorker()
	return nil
}

// Shutdown the worker.
func (tr *Tracer) Close() {
	tr.Lock()
	closeChan := tr.closeChan
	tr.closeChan = nil
	tr.Unlock()

	// If the worker is running shut it down
	if closeChan != nil {
		closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-closeChan
		close(closeChan)
	}
	tr.wg.Wait()

	tr.Lock()
	tr.sceneData = nil
	tr.Unlock()
}

// Enqueue block request. Requests are rejected through the request's error
// channel if the worker is not running or is still busy with another block.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()

	if !running {
		blockReq.ErrChan <- tracer.ErrTracerClosed
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- tracer.ErrTracerBusy
	}
}

// Retrieve last block statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	tr.Lock()
	defer tr.Unlock()

	stats := tr.stats
	return &stats
}

// Spawn a go-routine to process block render requests. This method is meant
// to be called while holding tr.Lock().
func (tr *Tracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}

	tr.closeChan = make(chan struct{})
	closeChan := tr.closeChan
	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				tr.Lock()
				sc := tr.sceneData
				tr.Unlock()

				startTime := time.Now()
				traversal, err := tr.renderBlock(sc, &blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				tr.Lock()
				tr.stats = tracer.Stats{
					BlockH:     blockReq.BlockH,
					RenderTime: time.Since(startTime),
					Traversal:  traversal,
				}
				tr.Unlock()

				tr.logger.Debugf("rendered rows %d-%d in %s", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, time.Since(startTime))
				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Trace the primary rays of a block and, when requested, the ambient
// occlusion rays leaving each primary hit.
func (tr *Tracer) renderBlock(sc *scene.Scene, blockReq *tracer.BlockRequest) (accel.Stats, error) {
	var stats accel.Stats
	if sc == nil {
		return stats, tracer.ErrSceneNotLoaded
	}

	frame := blockReq.Frame
	if frame == nil || blockReq.BlockY+blockReq.BlockH > frame.H {
		return stats, fmt.Errorf("tracer: block rows %d-%d outside of frame", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH)
	}

	cam := sc.Camera
	h := sc.Hierarchy
	ao := newOcclusionSampler(blockReq.AOSamples, blockReq.AORadius)

	var batch accel.RayBatch
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		row := frame.Row(y)
		for x0 := uint32(0); x0 < frame.W; x0 += accel.BatchSize {
			lanes := int(frame.W - x0)
			if lanes > accel.BatchSize {
				lanes = accel.BatchSize
			}

			for lane := 0; lane < lanes; lane++ {
				dir := cam.RayDir(int(x0)+lane, int(y), int(frame.W), int(frame.H))
				batch.SetRay(lane, cam.Position, dir, 0, math32.Inf(1), blockReq.Time)
			}

			mask := accel.FirstLanes(lanes)
			stats.Add(tr.intersector.Intersect(mask, h, &batch))

			for lane := 0; lane < lanes; lane++ {
				sample := &row[x0+uint32(lane)]
				hit, ok := batch.Hit(lane)
				sample.Hit = hit
				sample.T = 0
				sample.Occlusion = 0
				if !ok {
					continue
				}
				sample.T = batch.TFar[lane]

				if ao != nil {
					ray := batch.Ray(lane)
					sample.Occlusion = ao.occlusion(tr.intersector, h, &ray, &stats)
				}
			}
		}
	}

	return stats, nil
}
