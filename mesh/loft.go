// Package mesh builds brick element sets: structured lofted and box meshes,
// and hexahedral meshes read from Gmsh files.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
)

// Quad is a bilinear surface patch, corners counter clockwise
type Quad [4]r3.Vec

// At evaluates the patch at (u, v) in [0,1]^2, corner 0 at (0,0), corner 1
// at (1,0), corner 2 at (1,1)
func (q Quad) At(u, v float64) r3.Vec {
	var (
		w = [4]float64{(1 - u) * (1 - v), u * (1 - v), u * v, (1 - u) * v}
		p r3.Vec
	)
	for i, c := range q {
		p = r3.Add(p, r3.Scale(w[i], c))
	}
	return p
}

// Loft fills the volume between two quadrilateral surfaces with nU x nV x nW
// bricks. Points at equal (u, v) on both surfaces are joined by straight
// lines divided evenly. Global ids run along u, then v, then level.
func Loft(base, top Quad, nU, nV, nW int) (elements []model.Element, err error) {
	if nU < 1 || nV < 1 || nW < 1 {
		err = &model.TopologyError{ElementID: -1,
			Reason: fmt.Sprintf("loft divisions must be at least 1, have %d x %d x %d", nU, nV, nW)}
		return
	}
	var (
		nRow   = nU + 1
		nLevel = (nU + 1) * (nV + 1)
		points = make([]r3.Vec, nLevel*(nW+1))
	)
	id := func(l, i, j int) int { return l*nLevel + i*nRow + j }
	for i := 0; i <= nV; i++ {
		for j := 0; j <= nU; j++ {
			var (
				u, v = float64(j) / float64(nU), float64(i) / float64(nV)
				b, t = base.At(u, v), top.At(u, v)
			)
			for l := 0; l <= nW; l++ {
				points[id(l, i, j)] = r3.Add(b, r3.Scale(float64(l)/float64(nW), r3.Sub(t, b)))
			}
		}
	}
	elements = make([]model.Element, 0, nU*nV*nW)
	for l := 0; l < nW; l++ {
		for i := 0; i < nV; i++ {
			for j := 0; j < nU; j++ {
				var (
					el  = model.Element{ID: len(elements)}
					ids = [hex8.NNodes]int{
						id(l, i, j), id(l, i, j+1), id(l, i+1, j+1), id(l, i+1, j),
						id(l+1, i, j), id(l+1, i, j+1), id(l+1, i+1, j+1), id(l+1, i+1, j),
					}
				)
				for local, g := range ids {
					el.Nodes[local] = model.Node{GlobalID: g, LocalID: local, Position: points[g]}
				}
				elements = append(elements, el)
			}
		}
	}
	return
}

// Box meshes the axis aligned block [origin, origin+size] with nx x ny x nz
// equal bricks
func Box(origin, size r3.Vec, nx, ny, nz int) ([]model.Element, error) {
	var (
		x0, x1 = origin.X, origin.X + size.X
		y0, y1 = origin.Y, origin.Y + size.Y
		z0, z1 = origin.Z, origin.Z + size.Z
	)
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return nil, &model.TopologyError{ElementID: -1, Reason: fmt.Sprintf("box size %v must be positive", size)}
	}
	var (
		base = Quad{{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0}}
		top  = Quad{{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1}}
	)
	return Loft(base, top, nx, ny, nz)
}
