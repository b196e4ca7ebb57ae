// Package material builds the isotropic linear elastic constitutive matrix.
package material

import (
	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

// ElasticityMatrix returns the 6x6 matrix C with stress = C * strain, using
// engineering shear strains in the order xx, yy, zz, xy, yz, zx
func ElasticityMatrix(mat model.Material) (C utils.Matrix, err error) {
	var (
		E, nu = mat.E, mat.Nu
	)
	switch {
	case !(E > 0):
		err = &model.MaterialError{Material: mat, Reason: "Young's modulus must be positive"}
		return
	case !(nu > -1 && nu < 0.5):
		err = &model.MaterialError{Material: mat, Reason: "Poisson's ratio must lie in (-1, 0.5)"}
		return
	}
	var (
		denom = (1 + nu) * (1 - 2*nu)
		alpha = (1 - nu) * E / denom
		beta  = nu * E / denom
		gamma = (1 - 2*nu) * E / (2 * denom)
	)
	C = utils.NewMatrix(hex8.NStrain, hex8.NStrain)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				C.M.Set(i, j, alpha)
			} else {
				C.M.Set(i, j, beta)
			}
		}
		C.M.Set(i+3, i+3, gamma)
	}
	if !utils.IsFinite(C.Data()) {
		err = &model.MaterialError{Material: mat, Reason: "elasticity matrix is not finite"}
		return
	}
	C.SetReadOnly("C")
	return
}
