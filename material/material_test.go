package material

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/brickfem/model"
)

func TestElasticityMatrix(t *testing.T) {
	{
		C, err := ElasticityMatrix(model.Material{Name: "steel", E: 210000, Nu: 0.3})
		require.NoError(t, err)
		// (1+nu)(1-2nu) = 0.52
		assert.InDelta(t, 0.7*210000/0.52, C.At(0, 0), 1.e-9)
		assert.InDelta(t, 0.3*210000/0.52, C.At(0, 1), 1.e-9)
		assert.InDelta(t, 0.3*210000/0.52, C.At(2, 1), 1.e-9)
		// Shear modulus G = E / 2(1+nu)
		assert.InDelta(t, 210000/2.6, C.At(3, 3), 1.e-9)
		assert.InDelta(t, 210000/2.6, C.At(5, 5), 1.e-9)
		assert.Equal(t, 0., C.At(0, 3))
		assert.Equal(t, 0., C.At(3, 4))
		// read only once built
		assert.Panics(t, func() { C.Set(0, 0, 1) })
	}
	// Symmetric positive definite across the admissible range of nu
	for _, nu := range []float64{-0.99, -0.5, 0, 0.1, 0.25, 0.3, 0.45, 0.499} {
		C, err := ElasticityMatrix(model.Material{E: 1000, Nu: nu})
		require.NoError(t, err)
		require.True(t, C.IsSymmetric(0))
		sym := mat.NewSymDense(6, nil)
		for i := 0; i < 6; i++ {
			for j := i; j < 6; j++ {
				sym.SetSym(i, j, C.At(i, j))
			}
		}
		var chol mat.Cholesky
		assert.True(t, chol.Factorize(sym), "nu = %v", nu)
	}
}

func TestInvalidMaterial(t *testing.T) {
	for _, m := range []model.Material{
		{Name: "incompressible", E: 1000, Nu: 0.5},
		{Name: "lower bound", E: 1000, Nu: -1},
		{Name: "beyond", E: 1000, Nu: 0.7},
		{Name: "no stiffness", E: 0, Nu: 0.3},
		{Name: "negative", E: -5, Nu: 0.3},
	} {
		_, err := ElasticityMatrix(m)
		require.Error(t, err, m.Name)
		assert.True(t, errors.Is(err, model.ErrInvalidMaterial), m.Name)
		var me *model.MaterialError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, m.Name, me.Material.Name)
	}
}
