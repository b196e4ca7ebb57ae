package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

func TestParseKind(t *testing.T) {
	for label, want := range map[string]Kind{"": LU, "LU": LU, " cholesky": Cholesky, "chol": Cholesky} {
		k, err := ParseKind(label)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("cg")
	assert.Error(t, err)
	assert.Equal(t, "cholesky", Cholesky.String())
}

func TestSolve(t *testing.T) {
	var (
		K = utils.NewMatrix(3, 3, []float64{
			4, -1, 0,
			-1, 4, -1,
			0, -1, 4,
		})
		want = []float64{1, -2, 3}
		F    = K.MulVec(utils.NewVector(3, want))
	)
	for _, kind := range []Kind{LU, Cholesky} {
		t.Run(kind.String(), func(t *testing.T) {
			Kcopy, Fcopy := K.Copy(), F.Copy()
			U, err := Solve(K, F, kind)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want, U.Data(), 1.e-14)
			assert.Equal(t, Kcopy.Data(), K.Data())
			assert.Equal(t, Fcopy.Data(), F.Data())
		})
	}
}

func TestSolveSingular(t *testing.T) {
	// Free free spring chain, one rigid body mode
	var (
		K = utils.NewMatrix(3, 3, []float64{
			1, -1, 0,
			-1, 2, -1,
			0, -1, 1,
		})
		F = utils.NewVector(3, []float64{1, 0, -1})
	)
	for _, kind := range []Kind{LU, Cholesky} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Solve(K, F, kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrSingularMatrix))
			var se *model.SingularMatrixError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 3, se.NDOF)
		})
	}
	// Indefinite but invertible: LU solves, Cholesky refuses
	{
		K := utils.NewMatrix(2, 2, []float64{0, 1, 1, 0})
		F := utils.NewVector(2, []float64{2, 3})
		U, err := Solve(K, F, LU)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{3, 2}, U.Data(), 1.e-15)
		_, err = Solve(K, F, Cholesky)
		assert.True(t, errors.Is(err, model.ErrSingularMatrix))
	}
}

func TestEquilibrate(t *testing.T) {
	K := utils.NewMatrix(3, 3, []float64{
		4, 2, 0,
		2, 9, 0,
		0, 0, 0,
	})
	Ks, S := Equilibrate(K)
	assert.InDeltaSlice(t, []float64{0.5, 1. / 3, 1}, S.Data(), 1.e-15)
	assert.InDeltaSlice(t, []float64{
		1, 1. / 3, 0,
		1. / 3, 1, 0,
		0, 0, 0,
	}, Ks.Data(), 1.e-15)
	assert.Equal(t, 4., K.At(0, 0))
}

func TestSolveScaled(t *testing.T) {
	// Tiny stiffness: the determinant underflows but every pivot is sound
	{
		n := 150
		K := utils.NewMatrix(n, n)
		for i := 0; i < n; i++ {
			K.Set(i, i, 2.e-3)
			if i > 0 {
				K.Set(i, i-1, -1.e-3).Set(i-1, i, -1.e-3)
			}
		}
		assert.Equal(t, 0., K.Det())
		want := utils.NewVector(n).Set(1)
		F := K.MulVec(want)
		for _, kind := range []Kind{LU, Cholesky} {
			U, err := Solve(K, F, kind)
			require.NoError(t, err, kind.String())
			assert.InDeltaSlice(t, want.Data(), U.Data(), 1.e-8)
		}
	}
	// Unit pivots beside large stiffness: raw condition far above
	// MaxCondition, equilibrated condition of order one
	{
		K := utils.NewMatrix(3, 3, []float64{
			1, 0, 0,
			0, 4.e14, -1.e14,
			0, -1.e14, 4.e14,
		})
		assert.True(t, K.ConditionNumber() > MaxCondition)
		want := []float64{0, 1.e-3, -2.e-3}
		F := K.MulVec(utils.NewVector(3, want))
		for _, kind := range []Kind{LU, Cholesky} {
			U, err := Solve(K, F, kind)
			require.NoError(t, err, kind.String())
			assert.InDeltaSlice(t, want, U.Data(), 1.e-15)
		}
	}
	// Scaling does not hide a rigid body mode
	{
		K := utils.NewMatrix(3, 3, []float64{
			1.e-9, -1.e-9, 0,
			-1.e-9, 2.e-9, -1.e-9,
			0, -1.e-9, 1.e-9,
		})
		F := utils.NewVector(3, []float64{1.e-9, 0, -1.e-9})
		for _, kind := range []Kind{LU, Cholesky} {
			_, err := Solve(K, F, kind)
			assert.True(t, errors.Is(err, model.ErrSingularMatrix), kind.String())
		}
	}
}
