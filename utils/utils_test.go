package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMatrix(t *testing.T) {
	// Transpose
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		mNr, mNc := M.Dims()
		A := M.Transpose()
		aNr, aNc := A.Dims()
		assert.Equal(t, aNc, mNr)
		assert.Equal(t, aNr, mNc)
		assert.Equal(t, A.RawMatrix().Data, []float64{1, 4, 2, 5, 3, 6})
	}
	// Mul, MulVec and Row
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		P := M.Mul(M.Transpose())
		assert.Equal(t, []float64{14, 32, 32, 77}, P.Data())
		v := M.MulVec(NewVector(3, []float64{1, 0, -1}))
		assert.Equal(t, []float64{-2, -2}, v.Data())
		assert.Equal(t, []float64{4, 5, 6}, M.Row(1).Data())
		assert.Equal(t, 6., M.Max())
		assert.Equal(t, 6., M.Row(1).Max())
	}
	// Inverse and Det
	{
		M := NewMatrix(2, 2, []float64{
			4, 7,
			2, 6,
		})
		assert.InDelta(t, 10., M.Det(), 1.e-12)
		Minv, err := M.Inverse()
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0.6, -0.7, -0.2, 0.4}, Minv.Data(), 1.e-14)
		assert.InDeltaSlice(t, NewIdentity(2).Data(), M.Mul(Minv).Data(), 1.e-14)
		_, err = NewMatrix(2, 2, []float64{1, 2, 2, 4}).Inverse()
		assert.Error(t, err)
		_, err = NewMatrix(2, 3).Inverse()
		assert.Error(t, err)
	}
	// Zeroing rows and columns, chained
	{
		M := NewMatrix(3, 3, []float64{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		})
		M.ZeroRow(1).ZeroCol(1).Set(1, 1, 1)
		assert.Equal(t, []float64{1, 0, 3, 0, 1, 0, 7, 0, 9}, M.Data())
		M.Scale(2).AddAt(0, 0, 1)
		assert.Equal(t, 3., M.At(0, 0))
		M.Add(NewIdentity(3))
		assert.Equal(t, 3., M.At(1, 1))
		assert.False(t, M.IsSymmetric(0))
		assert.True(t, NewIdentity(3).IsSymmetric(0))
		assert.False(t, NewMatrix(2, 3).IsSymmetric(1))
	}
	// Read only matrices refuse writes, copies are writable
	{
		M := NewIdentity(2)
		M.SetReadOnly("M")
		assert.Panics(t, func() { M.Set(0, 1, 1) })
		assert.Panics(t, func() { M.ZeroRow(0) })
		C := M.Copy()
		assert.NotPanics(t, func() { C.Set(0, 1, 1) })
		assert.Equal(t, 0., M.At(0, 1))
	}
	// Condition number
	{
		assert.InDelta(t, 1., NewIdentity(4).ConditionNumber(), 1.e-12)
		D := NewMatrix(2, 2, []float64{100, 0, 0, 1})
		assert.InDelta(t, 100., D.ConditionNumber(), 1.e-10)
		assert.True(t, math.IsInf(NewMatrix(2, 2, []float64{1, 0, 0, 0}).ConditionNumber(), 1))
	}
	assert.Panics(t, func() { NewMatrix(2, 2, []float64{1, 2, 3}) })
	assert.True(t, Matrix{}.IsEmpty())
}

func TestVector(t *testing.T) {
	v := NewVector(3)
	v.Set(2).AddAt(1, 3).SetAt(2, -1)
	assert.Equal(t, []float64{2, 5, -1}, v.Data())
	assert.Equal(t, 5., v.Max())
	c := v.Copy()
	c.Scale(2)
	assert.Equal(t, []float64{4, 10, -2}, c.Data())
	assert.Equal(t, 2., v.AtVec(0))
	assert.Equal(t, 3, v.Len())
	assert.Panics(t, func() { NewVector(2, []float64{1}) })
}

func TestIndex(t *testing.T) {
	assert.True(t, Index{2, 0, 1}.IsPermutation())
	assert.False(t, Index{2, 2, 1}.IsPermutation())
	assert.False(t, Index{0, 3, 1}.IsPermutation())
	assert.False(t, Index{-1, 0}.IsPermutation())
	I := Index{5, 1, 3}
	I.Sort()
	assert.Equal(t, Index{1, 3, 5}, I)
	assert.Equal(t, Index{0, 2}, FindBool([]bool{true, false, true}, true))
	assert.Nil(t, FindBool([]bool{false}, true))
	assert.Len(t, NewIndex(4), 4)
}

func TestSparse(t *testing.T) {
	dok := NewDOK(2, 4)
	dok.Set(0, 3, 1).Set(1, 0, 2)
	assert.Equal(t, 2, dok.NNZ())
	assert.Panics(t, func() { dok.Set(2, 0, 1) })
	dok.SetReadOnly("a")
	assert.Panics(t, func() { dok.Set(0, 0, 1) })
	a := dok.ToCSR()
	assert.Equal(t, 2., a.At(1, 0))
	assert.Equal(t, []float64{4, 2}, a.MulVec([]float64{1, 2, 3, 4}))
	assert.Panics(t, func() { a.MulVec([]float64{1}) })
	D := a.ToDense()
	assert.Equal(t, []float64{0, 0, 0, 1, 2, 0, 0, 0}, D.Data())
	var visited int
	a.DoNonZero(func(i, j int, v float64) { visited++ })
	assert.Equal(t, 2, visited)
}

func TestPartitionMap(t *testing.T) {
	{
		pm := NewPartitionMap(3, 10)
		assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, pm.Partitions)
		assert.Equal(t, 4, pm.GetBucketDimension(0))
		for k := 0; k < 10; k++ {
			bn, min, max := pm.GetBucket(k)
			require.True(t, bn >= 0)
			assert.True(t, min <= k && k < max)
		}
		bn, _, _ := pm.GetBucket(10)
		assert.Equal(t, -1, bn)
	}
	// more workers than items
	{
		pm := NewPartitionMap(8, 3)
		assert.Equal(t, 3, pm.ParallelDegree)
		kMin, kMax := pm.GetBucketRange(2)
		assert.Equal(t, 2, kMin)
		assert.Equal(t, 3, kMax)
	}
	// no items still yields one empty bucket
	{
		pm := NewPartitionMap(4, 0)
		assert.Equal(t, 1, pm.ParallelDegree)
		assert.Equal(t, 0, pm.GetBucketDimension(0))
	}
	assert.True(t, NewPartitionMap(0, 1000).ParallelDegree >= 1)
}

func TestCommon(t *testing.T) {
	assert.True(t, PointsCoincide(r3.Vec{X: 1}, r3.Vec{X: 1 + 1.e-10}, NODETOL))
	assert.False(t, PointsCoincide(r3.Vec{X: 1}, r3.Vec{X: 1, Z: 1.e-8}, NODETOL))
	assert.True(t, IsFinite([]float64{0, 1, -2}))
	assert.False(t, IsFinite([]float64{0, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
	assert.Equal(t, DETTOL, DetTolerance(1))
	assert.InDelta(t, 1.e-29, DetTolerance(1.e-5), 1.e-40)
}
