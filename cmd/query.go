package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/olekukonko/tablewriter"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/scene/reader"
	"github.com/tangent-animation/embree/types"
	"github.com/urfave/cli"
)

// Trace a single ray against a compiled scene and report both the closest
// hit and the occlusion result.
func QueryRay(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	org, err := parseVec3(ctx.String("org"))
	if err != nil {
		return fmt.Errorf("invalid --org: %w", err)
	}
	dir, err := parseVec3(ctx.String("dir"))
	if err != nil {
		return fmt.Errorf("invalid --dir: %w", err)
	}

	tnear := float32(ctx.Float64("tnear"))
	tfar := math32.Inf(1)
	if ctx.IsSet("tfar") {
		tfar = float32(ctx.Float64("tfar"))
	}
	time := float32(ctx.Float64("time"))
	if !(time >= 0 && time <= 1) {
		return errors.New("time must be in the [0, 1] range")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	// Lane 0 answers the closest hit query and lane 1 the occlusion query.
	var batch accel.RayBatch
	batch.SetRay(0, org, dir, tnear, tfar, time)
	batch.SetRay(1, org, dir, tnear, tfar, time)

	stats := accel.Intersect(accel.FirstLanes(1), sc.Hierarchy, &batch)
	stats.Add(accel.Occluded(accel.LaneMask(1<<1), sc.Hierarchy, &batch))

	logger.Noticef("query result\n%s", formatQuery(&batch))
	logger.Infof("traversal statistics\n%s", stats.Table())
	return nil
}

// Render the hit record of lane 0 and the occlusion result of lane 1.
func formatQuery(batch *accel.RayBatch) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Field", "Value"})

	hit, ok := batch.Hit(0)
	table.Append([]string{"Hit", fmt.Sprintf("%t", ok)})
	if ok {
		table.Append([]string{"GeomID", fmt.Sprintf("%d", hit.GeomID)})
		table.Append([]string{"PrimID", fmt.Sprintf("%d", hit.PrimID)})
		table.Append([]string{"T", fmt.Sprintf("%.6f", batch.TFar[0])})
		table.Append([]string{"U, V", fmt.Sprintf("%.6f, %.6f", hit.U, hit.V)})
		table.Append([]string{"Ng", fmt.Sprintf("(%.4f, %.4f, %.4f)", hit.Ng[0], hit.Ng[1], hit.Ng[2])})
	}
	table.Append([]string{"Occluded", fmt.Sprintf("%t", batch.IsOccluded(1))})
	table.Render()
	return buf.String()
}

// Parse a "x,y,z" vector.
func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected 3 comma separated components; got %q", value)
	}
	for index, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return v, err
		}
		v[index] = float32(f)
	}
	return v, nil
}
