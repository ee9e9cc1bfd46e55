package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/tangent-animation/embree/accel"
)

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration

	// Traversal counters for the block.
	Traversal accel.Stats
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration

	// Traversal counters summed over all tracers.
	Traversal accel.Stats
}

// Render per tracer statistics as a table.
func (stats FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Rays", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Traversal.Rays),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", stats.Traversal.Rays), stats.RenderTime.String()})

	table.Render()
	return buf.String()
}
