package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/tracer"
	"github.com/tangent-animation/embree/tracer/cpu"
	"golang.org/x/sync/errgroup"
)

// The default renderer splits each frame into row blocks, traces them in
// parallel on a pool of tracers and shades the result with a debug shader.
type defaultRenderer struct {
	logger log.Logger

	scene     *scene.Scene
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer
	options   Options

	frame *tracer.Frame
	image *image.RGBA

	blockAssignments []uint32
	stats            FrameStats
}

// Create a new renderer that traces frames on opts.NumTracers cpu tracers.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	numTracers := opts.NumTracers
	if numTracers == 0 {
		numTracers = uint32(runtime.NumCPU())
	}

	tracers := make([]tracer.Tracer, numTracers)
	for index := range tracers {
		tracers[index] = cpu.NewTracer(fmt.Sprintf("cpu-%d", index), 1)
	}
	return NewWithTracers(sc, scheduler, tracers, opts)
}

// Create a new renderer using the supplied tracers. The renderer takes
// ownership of the tracers and closes them when it is closed.
func NewWithTracers(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if sc == nil || sc.Hierarchy == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if int(opts.Mode) >= len(modeNames) {
		return nil, fmt.Errorf("%w %d", ErrUnknownMode, opts.Mode)
	}
	if opts.Mode != AmbientOcclusion {
		opts.AOSamples = 0
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scene:     sc,
		scheduler: scheduler,
		options:   opts,
		frame:     tracer.NewFrame(opts.FrameW, opts.FrameH),
		image:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
	}

	for _, tr := range tracers {
		if err := tr.Init(sc); err != nil {
			r.logger.Warningf("skipping tracer %s due to init error: %s", tr.Id(), err.Error())
			tr.Close()
			continue
		}
		r.tracers = append(r.tracers, tr)
	}
	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	r.logger.Infof("attached %d tracers", len(r.tracers))
	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get the last rendered frame.
func (r *defaultRenderer) Frame() *image.RGBA {
	return r.image
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Render frame.
func (r *defaultRenderer) Render(ctx context.Context) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	err := r.renderFrame(ctx)
	if err != nil {
		return err
	}

	shadeStart := time.Now()
	r.shadeFrame()
	r.logger.Debugf("shaded frame in %s", time.Since(shadeStart))

	r.updateStats(time.Since(start))
	r.logger.Infof("rendered %dx%d frame (%s) in %s", r.options.FrameW, r.options.FrameH, r.options.Mode, r.stats.RenderTime)
	return nil
}

// Split the frame across the tracers and wait for all blocks to complete.
func (r *defaultRenderer) renderFrame(ctx context.Context) error {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	g, gctx := errgroup.WithContext(ctx)
	var blockY uint32
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		if blockH == 0 {
			continue
		}

		doneChan := make(chan uint32, 1)
		errChan := make(chan error, 1)
		tr.Enqueue(tracer.BlockRequest{
			BlockY:    blockY,
			BlockH:    blockH,
			Frame:     r.frame,
			Time:      r.options.Time,
			AOSamples: r.options.AOSamples,
			AORadius:  r.options.AORadius,
			DoneChan:  doneChan,
			ErrChan:   errChan,
		})
		blockY += blockH

		trID := tr.Id()
		g.Go(func() error {
			select {
			case <-doneChan:
				return nil
			case err := <-errChan:
				return fmt.Errorf("renderer: tracer %s: %w", trID, err)
			case <-gctx.Done():
				return ErrInterrupted
			}
		})
	}

	return g.Wait()
}

func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}

	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		stat := TracerStat{
			Id:           tr.Id(),
			BlockH:       blockH,
			FramePercent: 100 * float32(blockH) / float32(r.options.FrameH),
		}
		if blockH != 0 {
			trStats := tr.Stats()
			stat.RenderTime = trStats.RenderTime
			stat.Traversal = trStats.Traversal
		}
		r.stats.Tracers[index] = stat
		r.stats.Traversal.Add(stat.Traversal)
	}
}
