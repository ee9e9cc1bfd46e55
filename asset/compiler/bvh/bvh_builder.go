package bvh

import (
	"math"
	"time"

	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-3

	// If the split step (calculated as side length / (1024 * depth+1))
	// is less than this threshold the BVH builder will not evaluate
	// split candidates.
	minSplitStep float32 = 1e-5
)

var (
	// A split scoring strategy that uses the surface area heuristic (SAH).
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// The BoundedVolume interface is implemented by all primitives that can
// be partitioned by the bvh builder.
type BoundedVolume interface {
	// The bbox enclosing the volume over the whole time range. It is used
	// for scoring splits.
	BBox() types.BBox

	// The bbox of the volume at time key 0 or 1.
	KeyBBox(key int) types.BBox

	Center() types.Vec3
}

// A callback that is called whenever the BVH builder creates a new leaf. It
// stores the leaf items and returns a leaf ref pointing to them.
type LeafCallback func(itemList []BoundedVolume) accel.NodeRef

// A split scoring strategy.
type ScoreStrategy interface {
	// Calculate a score for splitting workList at splitPoint along a particular Axis.
	ScoreSplit(workList []BoundedVolume, splitAxis Axis, splitPoint float32) (leftCount, rightCount int, score float32)

	// Calculate a score for all items in workList.
	ScorePartition(workList []BoundedVolume) (score float32)
}

// The output of Build: a 4-wide node tree whose leaf refs were produced by the
// leaf callback.
type Tree struct {
	Root  accel.NodeRef
	Nodes []accel.Node

	// Number of inner node levels on the longest root to leaf path.
	Depth int
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type stats struct {
	partitionedItems int
	totalItems       int
	binaryNodes      int
	leafs            int
	forcedLeafs      int
	maxDepth         int
}

// A node of the intermediate binary tree. Leaf nodes have no children.
type binaryNode struct {
	keyBBox     [2]types.BBox
	left, right *binaryNode
	leaf        accel.NodeRef
}

func (n *binaryNode) isLeaf() bool {
	return n.left == nil
}

func (n *binaryNode) area() float32 {
	return n.keyBBox[0].Union(n.keyBBox[1]).HalfArea()
}

type builder struct {
	logger log.Logger

	// 4-wide nodes stored as a contiguous list
	nodes []accel.Node

	// A callback invoked to set up BVH leafs depending on the type of
	// partitioned bounding volume
	leafCb LeafCallback

	// The minimum number of items that are required for creating a leaf.
	minLeafItems int

	// Leafs are forced at this binary tree depth.
	maxDepth int

	// A channel for receiving score results.
	scoreChan chan splitScore

	// The split scoring strategy to use.
	scoreStrategy ScoreStrategy

	// Stats
	stats stats
}

// Construct a motion BVH from a set of bounded volumes.
//
// The builder first partitions the volumes into a binary tree using the
// supplied scoring strategy. SAH scores splits with:
// score = num_polygons * node bbox face area.
//
// The minLeafItems param should be used to specified the minimum number of
// items that can form a leaf. The BVH builder will automatically generate leafs
// if the incoming work length is <= minLeafItems. Leafs are also forced once
// the tree reaches accel.MaxDepth levels.
//
// The binary tree is then collapsed into 4-wide nodes that store the child
// bounds at both time keys.
func Build(workList []BoundedVolume, minLeafItems int, leafCb LeafCallback, scoreStrategy ScoreStrategy) *Tree {
	return newBuilder(minLeafItems, accel.MaxDepth, leafCb, scoreStrategy).build(workList)
}

func newBuilder(minLeafItems, maxDepth int, leafCb LeafCallback, scoreStrategy ScoreStrategy) *builder {
	return &builder{
		logger:        log.New("bvh builder"),
		nodes:         make([]accel.Node, 0),
		leafCb:        leafCb,
		minLeafItems:  minLeafItems,
		maxDepth:      maxDepth,
		scoreChan:     make(chan splitScore, 0),
		scoreStrategy: scoreStrategy,
	}
}

func (b *builder) build(workList []BoundedVolume) *Tree {
	b.stats.totalItems = len(workList)

	start := time.Now()
	tree := &Tree{}
	if len(workList) != 0 {
		root := b.partition(workList, 0)
		tree.Root, tree.Depth = b.collapse(root)
	}
	tree.Nodes = b.nodes

	b.logger.Debugf(
		"BVH tree build time: %d ms, binary depth: %d, nodes: %d, leafs: %d (%d forced), depth: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, len(b.nodes), b.stats.leafs, b.stats.forcedLeafs, tree.Depth,
	)
	return tree
}

// Partition worklist into a binary tree.
func (b *builder) partition(workList []BoundedVolume, depth int) *binaryNode {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	node := &binaryNode{
		keyBBox: [2]types.BBox{types.EmptyBBox(), types.EmptyBBox()},
	}

	// Calculate bounding boxes for node
	bbox := types.EmptyBBox()
	for _, item := range workList {
		node.keyBBox[0] = node.keyBBox[0].Union(item.KeyBBox(0))
		node.keyBBox[1] = node.keyBBox[1].Union(item.KeyBBox(1))
		bbox = bbox.Union(item.BBox())
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= b.minLeafItems {
		return b.createLeaf(node, workList)
	}

	// The collapsed tree can not be deeper than the binary one.
	if depth >= b.maxDepth {
		b.stats.forcedLeafs++
		return b.createLeaf(node, workList)
	}

	// Calc current node score
	var bestScore float32 = b.scoreStrategy.ScorePartition(workList)
	var bestSplit *splitScore = nil

	// Try partioning along each axis and select the split with best score
	pendingScores := 0

	// Run axis split tests in parallel
	side := bbox[1].Sub(bbox[0])
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		// We want the split steps to become more granular the deeper we go
		splitStep := side[axis] / (1024.0 / float32(depth+1))
		if splitStep < minSplitStep {
			continue
		}

		for step := 0; ; step++ {
			splitPoint := bbox[0][axis] + float32(step)*splitStep
			if splitPoint >= bbox[1][axis] {
				break
			}

			pendingScores++
			go func(axis Axis, splitPoint float32) {
				lCount, rCount, score := b.scoreStrategy.ScoreSplit(workList, axis, splitPoint)
				b.scoreChan <- splitScore{
					axis:       axis,
					splitPoint: splitPoint,

					leftCount:  lCount,
					rightCount: rCount,
					score:      score,
				}
			}(axis, splitPoint)
		}
	}

	// Process all scores and pick the best split. Ties are resolved
	// towards the lowest axis and split point so builds are reproducible.
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score < bestScore || (bestSplit != nil && candidate.score == bestScore && candidate.less(bestSplit)) {
			bestScore = candidate.score
			bestSplit = &candidate
		}
	}

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil {
		return b.createLeaf(node, workList)
	}

	// split work list into two sets
	leftWorkList := make([]BoundedVolume, bestSplit.leftCount)
	rightWorkList := make([]BoundedVolume, bestSplit.rightCount)
	leftIndex := 0
	rightIndex := 0
	for _, item := range workList {
		center := item.Center()
		if center[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList[leftIndex] = item
			leftIndex++
		} else {
			rightWorkList[rightIndex] = item
			rightIndex++
		}
	}

	b.stats.binaryNodes++
	node.left = b.partition(leftWorkList, depth+1)
	node.right = b.partition(rightWorkList, depth+1)
	return node
}

func (s *splitScore) less(other *splitScore) bool {
	if s.axis != other.axis {
		return s.axis < other.axis
	}
	return s.splitPoint < other.splitPoint
}

// Setup the given node as a leaf node containing all items in the work list.
func (b *builder) createLeaf(node *binaryNode, workList []BoundedVolume) *binaryNode {
	node.leaf = b.leafCb(workList)

	// update stats
	b.stats.leafs++
	b.stats.partitionedItems += len(workList)

	return node
}

// Collapse the binary subtree rooted at node into 4-wide nodes. Returns the
// ref for the subtree and its inner node depth.
func (b *builder) collapse(node *binaryNode) (accel.NodeRef, int) {
	if node.isLeaf() {
		return node.leaf, 0
	}

	// Keep opening the inner child with the largest surface area until
	// we have filled all node slots.
	children := make([]*binaryNode, 0, accel.NodeWidth)
	children = append(children, node.left, node.right)
	for len(children) < accel.NodeWidth {
		best := -1
		for index, child := range children {
			if child.isLeaf() {
				continue
			}
			if best < 0 || child.area() > children[best].area() {
				best = index
			}
		}
		if best < 0 {
			break
		}

		opened := children[best]
		children[best] = opened.left
		children = append(children, opened.right)
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, accel.Node{})

	depth := 0
	for slot, child := range children {
		ref, childDepth := b.collapse(child)
		b.nodes[nodeIndex].SetChild(slot, ref, child.keyBBox[0], child.keyBBox[1])
		if childDepth > depth {
			depth = childDepth
		}
	}

	return accel.InnerNodeRef(uint32(nodeIndex)), depth + 1
}

// A score implementation that uses surface area heuristic for calculating split scores.
type surfaceAreaHeuristic struct{}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + rightCount * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat32) when it enounters such cases.
func (h surfaceAreaHeuristic) ScoreSplit(workList []BoundedVolume, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lbox := types.EmptyBBox()
	rbox := types.EmptyBBox()

	leftCount = 0
	rightCount = 0
	for _, item := range workList {
		center := item.Center()
		if center[axis] < splitPoint {
			leftCount++
			lbox = lbox.Union(item.BBox())
		} else {
			rightCount++
			rbox = rbox.Union(item.BBox())
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	score = float32(leftCount)*lbox.HalfArea() + float32(rightCount)*rbox.HalfArea()
	return leftCount, rightCount, score
}

// Calculate score for a partitioned workList using formula:
// count * BBOX area
//
// If the workList is empty, then this method returns the worst possible
// score (MaxFloat32).
func (h surfaceAreaHeuristic) ScorePartition(workList []BoundedVolume) (score float32) {
	if len(workList) == 0 {
		return math.MaxFloat32
	}

	bbox := types.EmptyBBox()
	for _, item := range workList {
		bbox = bbox.Union(item.BBox())
	}

	return float32(len(workList)) * bbox.HalfArea()
}
