package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/model"
)

// Nodes returns one record per global id, sorted by id
func Nodes(elements []model.Element) (nodes []model.Node) {
	return Select(elements, func(r3.Vec) bool { return true })
}

// Select returns the distinct global nodes whose position satisfies keep,
// sorted by global id
func Select(elements []model.Element, keep func(p r3.Vec) bool) (nodes []model.Node) {
	seen := make(map[int]bool)
	for _, el := range elements {
		for _, n := range el.Nodes {
			if seen[n.GlobalID] || !keep(n.Position) {
				continue
			}
			seen[n.GlobalID] = true
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].GlobalID < nodes[j].GlobalID })
	return
}

// OnPlane matches points whose coordinate along axis (model.X, Y or Z) is
// within tol of value
func OnPlane(axis int, value, tol float64) func(p r3.Vec) bool {
	return func(p r3.Vec) bool {
		c := [3]float64{p.X, p.Y, p.Z}[axis]
		return math.Abs(c-value) <= tol
	}
}

// Bounds returns the corners of the axis aligned box holding every node
func Bounds(elements []model.Element) (min, max r3.Vec) {
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, el := range elements {
		for _, n := range el.Nodes {
			p := n.Position
			min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
			max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
		}
	}
	return
}
