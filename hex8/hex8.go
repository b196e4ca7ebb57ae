// Package hex8 holds the reference geometry of the trilinear eight node
// hexahedron: corner table, shape functions and their natural derivatives,
// the 2x2x2 Gauss rule and the Gauss to corner extrapolation.
//
// Local degrees of freedom are numbered component major: the x displacement
// of local nodes 0..7 occupies slots 0..7, y occupies 8..15 and z 16..23.
package hex8

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/utils"
)

const (
	NNodes  = 8             // corners per element
	NDim    = 3             // displacement components per node
	NDOF    = NNodes * NDim // local degrees of freedom
	NStrain = 6             // xx, yy, zz, xy, yz, zx
	NGauss  = 8             // 2x2x2 rule
	NFaces  = 6
)

// Natural is a point in the reference cube [-1,1]^3
type Natural struct {
	Xi, Eta, Zeta float64
}

func (p Natural) Scale(a float64) Natural {
	return Natural{p.Xi * a, p.Eta * a, p.Zeta * a}
}

// Bottom face counter clockwise, then the top face directly above it
var corners = [NNodes]Natural{
	{-1, -1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{-1, 1, -1},
	{-1, -1, 1},
	{1, -1, 1},
	{1, 1, 1},
	{-1, 1, 1},
}

// Faces lists the corners of each quadrilateral face of the element
var Faces = [NFaces][4]int{
	{0, 1, 2, 3},
	{0, 1, 5, 4},
	{1, 2, 6, 5},
	{2, 3, 7, 6},
	{3, 0, 4, 7},
	{4, 5, 6, 7},
}

func NaturalCoordinates(localID int) Natural {
	if localID < 0 || localID >= NNodes {
		panic(fmt.Errorf("local node id %d out of range [0,%d)", localID, NNodes))
	}
	return corners[localID]
}

// LocalDOF maps a local node and displacement component to its slot in the
// 24 entry element vector
func LocalDOF(localID, comp int) int {
	return comp*NNodes + localID
}

func ShapeFunctions(p Natural) (N [NNodes]float64) {
	for i, c := range corners {
		N[i] = 0.125 * (1 + c.Xi*p.Xi) * (1 + c.Eta*p.Eta) * (1 + c.Zeta*p.Zeta)
	}
	return
}

// ShapeFunctionMatrix is the 3x24 block diagonal interpolation operator
// taking the element DOF vector to the displacement at p
func ShapeFunctionMatrix(p Natural) (R utils.Matrix) {
	var (
		N = ShapeFunctions(p)
	)
	R = utils.NewMatrix(NDim, NDOF)
	for comp := 0; comp < NDim; comp++ {
		for i := 0; i < NNodes; i++ {
			R.M.Set(comp, LocalDOF(i, comp), N[i])
		}
	}
	return
}

// ShapeFunctionDerivatives returns the 3x8 matrix of dN/dXi, dN/dEta, dN/dZeta
func ShapeFunctionDerivatives(p Natural) (R utils.Matrix) {
	R = utils.NewMatrix(NDim, NNodes)
	for i, c := range corners {
		R.M.Set(0, i, 0.125*c.Xi*(1+c.Eta*p.Eta)*(1+c.Zeta*p.Zeta))
		R.M.Set(1, i, 0.125*c.Eta*(1+c.Xi*p.Xi)*(1+c.Zeta*p.Zeta))
		R.M.Set(2, i, 0.125*c.Zeta*(1+c.Xi*p.Xi)*(1+c.Eta*p.Eta))
	}
	return
}

// GaussPoints returns the 2x2x2 rule sampling points, ordered like the
// corners they sit closest to. All weights are one.
func GaussPoints() (G [NGauss]Natural) {
	a := 1. / math.Sqrt(3)
	for i, c := range corners {
		G[i] = c.Scale(a)
	}
	return
}

// ExtrapolationMatrix E maps values sampled at the Gauss points to the
// corners: corner[k] = sum_i E[k][i] * gauss[i]. Row k holds the shape
// functions evaluated at sqrt(3) times corner k.
func ExtrapolationMatrix() (E utils.Matrix) {
	E = utils.NewMatrix(NNodes, NGauss)
	s3 := math.Sqrt(3)
	for k, c := range corners {
		N := ShapeFunctions(c.Scale(s3))
		E.SetRow(k, N[:])
	}
	return
}

// DOFVector holds one value per local degree of freedom in component major order
type DOFVector [NDOF]float64

func (v DOFVector) Node(localID int) r3.Vec {
	return r3.Vec{
		X: v[LocalDOF(localID, 0)],
		Y: v[LocalDOF(localID, 1)],
		Z: v[LocalDOF(localID, 2)],
	}
}

func (v *DOFVector) SetNode(localID int, d r3.Vec) {
	v[LocalDOF(localID, 0)] = d.X
	v[LocalDOF(localID, 1)] = d.Y
	v[LocalDOF(localID, 2)] = d.Z
}

func (v DOFVector) Vector() utils.Vector {
	data := make([]float64, NDOF)
	copy(data, v[:])
	return utils.NewVector(NDOF, data)
}
