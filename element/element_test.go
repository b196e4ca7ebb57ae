package element

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/material"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

// brick returns an element spanning origin to origin+size
func brick(origin, size r3.Vec) (el model.Element) {
	for i := 0; i < hex8.NNodes; i++ {
		c := hex8.NaturalCoordinates(i)
		el.Nodes[i] = model.Node{
			GlobalID: i,
			LocalID:  i,
			Position: r3.Vec{
				X: origin.X + size.X*(c.Xi+1)/2,
				Y: origin.Y + size.Y*(c.Eta+1)/2,
				Z: origin.Z + size.Z*(c.Zeta+1)/2,
			},
		}
	}
	return
}

func unitC(t *testing.T, E, nu float64) utils.Matrix {
	C, err := material.ElasticityMatrix(model.Material{E: E, Nu: nu})
	require.NoError(t, err)
	return C
}

func TestJacobian(t *testing.T) {
	el := brick(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 2, Y: 4, Z: 6})
	for _, p := range hex8.GaussPoints() {
		J := Jacobian(el, p)
		// parallelepiped: J = diag(size/2) everywhere
		assert.InDelta(t, 1., J.At(0, 0), 1.e-14)
		assert.InDelta(t, 2., J.At(1, 1), 1.e-14)
		assert.InDelta(t, 3., J.At(2, 2), 1.e-14)
		assert.InDelta(t, 0., J.At(0, 1), 1.e-14)
		assert.InDelta(t, 6., J.Det(), 1.e-12)
	}
	// Node order in the element record does not matter, local ids do
	{
		shuffled := el
		shuffled.Nodes[0], shuffled.Nodes[5] = shuffled.Nodes[5], shuffled.Nodes[0]
		X := CoordinateMatrix(shuffled)
		assert.Equal(t, CoordinateMatrix(el).Data(), X.Data())
	}
}

func TestStiffnessUnitCube(t *testing.T) {
	var (
		el = brick(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
		C  = unitC(t, 1, 0.3)
	)
	Ke, err := Stiffness(el, C)
	require.NoError(t, err)
	nr, nc := Ke.Dims()
	require.Equal(t, hex8.NDOF, nr)
	require.Equal(t, hex8.NDOF, nc)
	assert.True(t, Ke.IsSymmetric(1.e-14))
	// Independently integrated reference values
	assert.InDelta(t, 55./234., Ke.At(0, 0), 1.e-12)
	assert.InDelta(t, -25./234., Ke.At(0, 1), 1.e-12)
	assert.InDelta(t, 0.08012820512820512, Ke.At(0, 8), 1.e-12)
	assert.InDelta(t, 0.08012820512820512, Ke.At(0, 16), 1.e-12)
	assert.InDelta(t, -0.058760683760683725, Ke.At(0, 6), 1.e-12)
	assert.InDelta(t, Ke.At(0, 0), Ke.At(8, 8), 1.e-12)
	assert.InDelta(t, Ke.At(0, 0), Ke.At(23, 23), 1.e-12)
	// Rigid translations produce no nodal forces
	for i := 0; i < hex8.NDOF; i++ {
		var sum float64
		for comp := 0; comp < hex8.NDim; comp++ {
			for j := 0; j < hex8.NNodes; j++ {
				sum += Ke.At(i, hex8.LocalDOF(j, comp))
			}
			assert.InDelta(t, 0., sum, 1.e-13)
			sum = 0
		}
	}
	// Stiffness of a brick scales linearly with its size
	{
		Ke2, err := Stiffness(brick(r3.Vec{X: -3}, r3.Vec{X: 2, Y: 2, Z: 2}), C)
		require.NoError(t, err)
		for i := 0; i < hex8.NDOF; i++ {
			for j := 0; j < hex8.NDOF; j++ {
				assert.InDelta(t, 2*Ke.At(i, j), Ke2.At(i, j), 1.e-12)
			}
		}
	}
}

func TestRigidBodyStrain(t *testing.T) {
	el := brick(r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 0.5})
	// skew the top face so J varies through the element
	el.Nodes[6].Position = r3.Add(el.Nodes[6].Position, r3.Vec{X: 0.2, Y: 0.1})
	var (
		translation hex8.DOFVector
		rotation    hex8.DOFVector
		theta       = 1.e-3
	)
	for i, n := range el.Nodes {
		translation.SetNode(i, r3.Vec{X: 0.3, Y: -1.2, Z: 4})
		// infinitesimal rotation about z
		rotation.SetNode(i, r3.Vec{X: -theta * n.Position.Y, Y: theta * n.Position.X})
	}
	for _, p := range hex8.GaussPoints() {
		eps, err := Strain(el, p, translation)
		require.NoError(t, err)
		for _, e := range eps {
			assert.InDelta(t, 0., e, 1.e-13)
		}
		eps, err = Strain(el, p, rotation)
		require.NoError(t, err)
		for _, e := range eps {
			assert.InDelta(t, 0., e, 1.e-13)
		}
	}
}

func TestUniformStrain(t *testing.T) {
	var (
		el   = brick(r3.Vec{X: 1}, r3.Vec{X: 2, Y: 1, Z: 3})
		C    = unitC(t, 1000, 0.25)
		v    hex8.DOFVector
		want = model.Voigt{1.e-3, -2.e-3, 5.e-4, 3.e-4, 0, -1.e-4}
	)
	// u = eps.x with engineering shear split symmetrically
	for i, n := range el.Nodes {
		x := n.Position
		v.SetNode(i, r3.Vec{
			X: want[model.XX]*x.X + 0.5*want[model.XY]*x.Y + 0.5*want[model.ZX]*x.Z,
			Y: 0.5*want[model.XY]*x.X + want[model.YY]*x.Y + 0.5*want[model.YZ]*x.Z,
			Z: 0.5*want[model.ZX]*x.X + 0.5*want[model.YZ]*x.Y + want[model.ZZ]*x.Z,
		})
	}
	for _, p := range hex8.GaussPoints() {
		eps, err := Strain(el, p, v)
		require.NoError(t, err)
		for i := range want {
			assert.InDelta(t, want[i], eps[i], 1.e-14)
		}
		sig := Stress(C, eps)
		// sigma_xy = G * gamma_xy
		assert.InDelta(t, 1000/2.5*want[model.XY], sig[model.XY], 1.e-10)
	}
}

func TestSingularJacobian(t *testing.T) {
	// flattened brick
	{
		el := brick(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 0})
		el.ID = 12
		_, err := Stiffness(el, unitC(t, 1, 0.3))
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrSingularJacobian))
		var je *model.JacobianError
		require.True(t, errors.As(err, &je))
		assert.Equal(t, 12, je.ElementID)
		assert.InDelta(t, 0., je.Det, 1.e-14)
	}
	// inverted brick, top and bottom faces swapped
	{
		el := brick(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
		for i := 0; i < 4; i++ {
			el.Nodes[i].Position, el.Nodes[i+4].Position = el.Nodes[i+4].Position, el.Nodes[i].Position
		}
		_, _, err := StrainDisplacement(el, hex8.Natural{})
		var je *model.JacobianError
		require.True(t, errors.As(err, &je))
		assert.True(t, je.Det < 0)
		assert.False(t, math.IsNaN(je.Det))
	}
	// tiny but well shaped bricks are accepted at any length scale
	for _, h := range []float64{1.e-5, 1.e-3, 1.e3} {
		el := brick(r3.Vec{X: h}, r3.Vec{X: h, Y: h, Z: h})
		assert.InDelta(t, h, Size(el), 1.e-12*h)
		_, detJ, err := CartesianDerivatives(el, hex8.Natural{})
		require.NoError(t, err)
		assert.InDelta(t, h*h*h/8, detJ, 1.e-12*h*h*h)
		Ke, err := Stiffness(el, unitC(t, 1, 0.3))
		require.NoError(t, err)
		// brick stiffness scales with the side length
		Ke1, err := Stiffness(brick(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}), unitC(t, 1, 0.3))
		require.NoError(t, err)
		assert.InDeltaSlice(t, Ke1.Scale(h).Data(), Ke.Data(), 1.e-12*h)
	}
	// a sliver far thinner than its size is still rejected
	{
		el := brick(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1.e-15})
		_, _, err := CartesianDerivatives(el, hex8.Natural{})
		assert.True(t, errors.Is(err, model.ErrSingularJacobian))
	}
}
