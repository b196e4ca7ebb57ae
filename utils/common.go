package utils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	NODETOL = 1.e-9  // default absolute distance for positional node matching
	DETTOL  = 1.e-14 // smallest Jacobian determinant accepted for a unit sized element
)

// PointsCoincide compares two points with the max-norm
func PointsCoincide(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// DetTolerance scales DETTOL by the cube of a characteristic element length
func DetTolerance(length float64) float64 {
	return DETTOL * length * length * length
}

func IsFinite(data []float64) bool {
	for _, val := range data {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return true
}
