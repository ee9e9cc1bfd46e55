package accel

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Traversal counters collected while answering a query.
type Stats struct {
	Rays           int
	NodesVisited   int
	LeavesVisited  int
	PrimitiveTests int
	Pushes         int
	Pruned         int

	// Max number of live stack entries observed for any single ray.
	MaxStackDepth int
}

// Accumulate the counters of other.
func (s *Stats) Add(other Stats) {
	s.Rays += other.Rays
	s.NodesVisited += other.NodesVisited
	s.LeavesVisited += other.LeavesVisited
	s.PrimitiveTests += other.PrimitiveTests
	s.Pushes += other.Pushes
	s.Pruned += other.Pruned
	s.observeStack(other.MaxStackDepth)
}

func (s *Stats) observeStack(depth int) {
	if depth > s.MaxStackDepth {
		s.MaxStackDepth = depth
	}
}

// Build a tabular representation of the counters.
func (s Stats) Table() string {
	perRay := func(v int) string {
		if s.Rays == 0 {
			return "-"
		}
		return fmt.Sprintf("%.2f", float64(v)/float64(s.Rays))
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Counter", "Total", "Per ray"})
	table.Append([]string{"Rays", fmt.Sprint(s.Rays), " "})
	table.Append([]string{"Nodes visited", fmt.Sprint(s.NodesVisited), perRay(s.NodesVisited)})
	table.Append([]string{"Leaves visited", fmt.Sprint(s.LeavesVisited), perRay(s.LeavesVisited)})
	table.Append([]string{"Triangle tests", fmt.Sprint(s.PrimitiveTests), perRay(s.PrimitiveTests)})
	table.Append([]string{"Stack pushes", fmt.Sprint(s.Pushes), perRay(s.Pushes)})
	table.Append([]string{"Pruned entries", fmt.Sprint(s.Pruned), perRay(s.Pruned)})
	table.SetFooter([]string{"Max stack depth", fmt.Sprint(s.MaxStackDepth), " "})
	table.Render()
	return buf.String()
}
