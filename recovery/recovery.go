// Package recovery turns the global displacement vector back into element
// fields: nodal displacements, strains and stresses extrapolated from the
// Gauss points, averaged nodal stresses, deformed geometry and reactions.
package recovery

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/assembly"
	"github.com/notargets/brickfem/element"
	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

// ElementDisplacement gathers the element DOF vector from U through the
// connectivity matrix and interpolates it at each corner
func ElementDisplacement(el model.Element, U []float64, nNodes int) (d [hex8.NNodes]r3.Vec, v hex8.DOFVector) {
	v = assembly.Gather(assembly.Connectivity(el, nNodes), U)
	vv := v.Vector()
	for l := 0; l < hex8.NNodes; l++ {
		u := hex8.ShapeFunctionMatrix(hex8.NaturalCoordinates(l)).MulVec(vv)
		d[l] = r3.Vec{X: u.AtVec(0), Y: u.AtVec(1), Z: u.AtVec(2)}
	}
	return
}

// GaussStressStrain evaluates strain and stress at the 2x2x2 Gauss points
func GaussStressStrain(el model.Element, C utils.Matrix, v hex8.DOFVector) (strain, stress [hex8.NGauss]model.Voigt, err error) {
	for i, p := range hex8.GaussPoints() {
		if strain[i], err = element.Strain(el, p, v); err != nil {
			return
		}
		stress[i] = element.Stress(C, strain[i])
	}
	return
}

// Extrapolate maps Gauss point values to the corners, indexed by local id
func Extrapolate(gauss [hex8.NGauss]model.Voigt) (nodal [hex8.NNodes]model.Voigt) {
	G := utils.NewMatrix(hex8.NGauss, hex8.NStrain)
	for i, g := range gauss {
		G.SetRow(i, g[:])
	}
	R := hex8.ExtrapolationMatrix().Mul(G)
	for k := range nodal {
		copy(nodal[k][:], R.Row(k).Data())
	}
	return
}

// ElementStressStrain returns corner strains and stresses of one element
func ElementStressStrain(el model.Element, C utils.Matrix, v hex8.DOFVector) (strain, stress [hex8.NNodes]model.Voigt, err error) {
	var (
		gStrain, gStress [hex8.NGauss]model.Voigt
	)
	if gStrain, gStress, err = GaussStressStrain(el, C, v); err != nil {
		return
	}
	strain, stress = Extrapolate(gStrain), Extrapolate(gStress)
	return
}

// NodalStressAveraging returns the arithmetic mean, per global id, of the
// corner stresses of every element touching that node
func NodalStressAveraging(elements []model.Element, stress [][hex8.NNodes]model.Voigt, nNodes int) (avg []model.Voigt) {
	var (
		count = make([]int, nNodes)
	)
	avg = make([]model.Voigt, nNodes)
	for e, el := range elements {
		for _, n := range el.Nodes {
			floats.Add(avg[n.GlobalID][:], stress[e][n.LocalID][:])
			count[n.GlobalID]++
		}
	}
	for g := range avg {
		if count[g] > 0 {
			floats.Scale(1/float64(count[g]), avg[g][:])
		}
	}
	return
}

func DeformedPosition(n model.Node, d r3.Vec) r3.Vec {
	return r3.Add(n.Position, d)
}

// DeformedMesh builds the outer quadrilateral surface of the deformed body.
// Vertices are indexed by global id; faces shared by two elements are left
// out.
func DeformedMesh(elements []model.Element, deformed []r3.Vec) (m model.Mesh) {
	type faceKey [4]int
	var (
		count = make(map[faceKey]int)
		faces [][4]int
	)
	key := func(f [4]int) faceKey {
		k := faceKey(f)
		utils.Index(k[:]).Sort()
		return k
	}
	for _, el := range elements {
		nodes := el.Ordered()
		for _, lf := range hex8.Faces {
			var f [4]int
			for i, l := range lf {
				f[i] = nodes[l].GlobalID
			}
			count[key(f)]++
			faces = append(faces, f)
		}
	}
	m.Vertices = make([]r3.Vec, len(deformed))
	copy(m.Vertices, deformed)
	for _, f := range faces {
		if count[key(f)] == 1 {
			m.Faces = append(m.Faces, f)
		}
	}
	return
}

// Reactions returns R = K0 * U - F0 at the restrained DOFs, with K0 and F0
// the system before supports were applied. Free nodes get zero.
func Reactions(K0 utils.Matrix, F0 utils.Vector, U []float64, mask []bool, nNodes int) (R []r3.Vec) {
	var (
		KU = K0.MulVec(utils.NewVector(len(U), U)).Data()
	)
	floats.Sub(KU, F0.Data())
	R = make([]r3.Vec, nNodes)
	for _, i := range utils.FindBool(mask, true) {
		g, comp := i%nNodes, i/nNodes
		switch comp {
		case model.X:
			R[g].X = KU[i]
		case model.Y:
			R[g].Y = KU[i]
		case model.Z:
			R[g].Z = KU[i]
		}
	}
	return
}
