// Package element integrates the stiffness of a single trilinear brick.
package element

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

// CoordinateMatrix returns the 8x3 physical coordinates ordered by local id
func CoordinateMatrix(el model.Element) (X utils.Matrix) {
	X = utils.NewMatrix(hex8.NNodes, hex8.NDim)
	for _, n := range el.Nodes {
		X.SetRow(n.LocalID, []float64{n.Position.X, n.Position.Y, n.Position.Z})
	}
	return
}

// Size is the largest bounding box extent of the element
func Size(el model.Element) (h float64) {
	var (
		min, max = el.Nodes[0].Position, el.Nodes[0].Position
	)
	for _, n := range el.Nodes[1:] {
		p := n.Position
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	d := r3.Sub(max, min)
	return math.Max(d.X, math.Max(d.Y, d.Z))
}

// Jacobian returns J = dN/dXi * X, rows d/dXi, d/dEta, d/dZeta of x, y, z
func Jacobian(el model.Element, p hex8.Natural) (J utils.Matrix) {
	return hex8.ShapeFunctionDerivatives(p).Mul(CoordinateMatrix(el))
}

// CartesianDerivatives returns the 3x8 matrix of dN/dx, dN/dy, dN/dz at p and
// det(J). Degenerate or inverted geometry is reported before J is inverted;
// det(J) is compared against a tolerance scaled to the element size.
func CartesianDerivatives(el model.Element, p hex8.Natural) (dNdx utils.Matrix, detJ float64, err error) {
	var (
		dNdXi = hex8.ShapeFunctionDerivatives(p)
		J     = dNdXi.Mul(CoordinateMatrix(el))
		Jinv  utils.Matrix
	)
	detJ = J.Det()
	if !(detJ > utils.DetTolerance(Size(el))) {
		err = &model.JacobianError{ElementID: el.ID, Point: [3]float64{p.Xi, p.Eta, p.Zeta}, Det: detJ}
		return
	}
	if Jinv, err = J.Inverse(); err != nil {
		err = &model.JacobianError{ElementID: el.ID, Point: [3]float64{p.Xi, p.Eta, p.Zeta}, Det: detJ}
		return
	}
	dNdx = Jinv.Mul(dNdXi)
	return
}

// StrainDisplacement returns the 6x24 matrix B with strain = B * v, where v
// is the element DOF vector and shear strains are engineering strains
func StrainDisplacement(el model.Element, p hex8.Natural) (B utils.Matrix, detJ float64, err error) {
	var (
		dNdx utils.Matrix
	)
	if dNdx, detJ, err = CartesianDerivatives(el, p); err != nil {
		return
	}
	B = utils.NewMatrix(hex8.NStrain, hex8.NDOF)
	for i := 0; i < hex8.NNodes; i++ {
		var (
			dx, dy, dz = dNdx.At(0, i), dNdx.At(1, i), dNdx.At(2, i)
			u          = hex8.LocalDOF(i, model.X)
			v          = hex8.LocalDOF(i, model.Y)
			w          = hex8.LocalDOF(i, model.Z)
		)
		B.M.Set(model.XX, u, dx)
		B.M.Set(model.YY, v, dy)
		B.M.Set(model.ZZ, w, dz)
		B.M.Set(model.XY, u, dy)
		B.M.Set(model.XY, v, dx)
		B.M.Set(model.YZ, v, dz)
		B.M.Set(model.YZ, w, dy)
		B.M.Set(model.ZX, u, dz)
		B.M.Set(model.ZX, w, dx)
	}
	return
}

// Integrand returns B^T * C * B * det(J) at p
func Integrand(el model.Element, C utils.Matrix, p hex8.Natural) (Kp utils.Matrix, err error) {
	var (
		B    utils.Matrix
		detJ float64
	)
	if B, detJ, err = StrainDisplacement(el, p); err != nil {
		return
	}
	Kp = B.Transpose().Mul(C.Mul(B)).Scale(detJ)
	return
}

// Stiffness integrates the 24x24 element stiffness with the 2x2x2 Gauss rule.
// All weights are one.
func Stiffness(el model.Element, C utils.Matrix) (Ke utils.Matrix, err error) {
	var (
		Kp utils.Matrix
	)
	Ke = utils.NewMatrix(hex8.NDOF, hex8.NDOF)
	for _, p := range hex8.GaussPoints() {
		if Kp, err = Integrand(el, C, p); err != nil {
			return
		}
		Ke.Add(Kp)
	}
	return
}

// Strain returns the strain at p for the element DOF vector v
func Strain(el model.Element, p hex8.Natural, v hex8.DOFVector) (eps model.Voigt, err error) {
	var (
		B utils.Matrix
	)
	if B, _, err = StrainDisplacement(el, p); err != nil {
		return
	}
	copy(eps[:], B.MulVec(v.Vector()).Data())
	return
}

// Stress returns C * strain
func Stress(C utils.Matrix, eps model.Voigt) (sig model.Voigt) {
	copy(sig[:], C.MulVec(utils.NewVector(hex8.NStrain, eps[:])).Data())
	return
}
