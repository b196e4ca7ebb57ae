// Package solver solves the reduced global system K * u = F with a dense
// direct factorization.
package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

type Kind uint8

const (
	LU Kind = iota
	Cholesky
)

func (k Kind) String() string {
	return [...]string{"lu", "cholesky"}[k]
}

func ParseKind(label string) (k Kind, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "lu":
		k = LU
	case "cholesky", "chol":
		k = Cholesky
	default:
		err = fmt.Errorf("unknown solver \"%s\", use lu or cholesky", label)
	}
	return
}

// MaxCondition is the largest condition number estimate accepted from the
// factorization of the equilibrated system. A reduced stiffness matrix with
// an unrestrained rigid body mode estimates near 1/eps.
const MaxCondition = 1.e12

// Equilibrate returns S K S and S, with S diagonal, S_ii = 1/sqrt|K_ii| and
// S_ii = 1 where K_ii is zero. The scaled matrix has a unit diagonal so its
// condition number no longer depends on the units of K.
func Equilibrate(K utils.Matrix) (Ks utils.Matrix, S utils.Vector) {
	var (
		n, _ = K.Dims()
	)
	S = utils.NewVector(n).Set(1)
	for i := 0; i < n; i++ {
		if d := math.Abs(K.At(i, i)); d > 0 {
			S.SetAt(i, 1/math.Sqrt(d))
		}
	}
	Ks = K.Copy()
	var (
		raw = Ks.RawMatrix()
		s   = S.Data()
	)
	for i := 0; i < n; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+n]
		for j := range row {
			row[j] *= s[i] * s[j]
		}
	}
	return
}

// Solve returns u with K * u = F. K and F are not modified. The system is
// equilibrated before factorizing, so a zero pivot or a condition estimate
// above MaxCondition means K is not invertible whatever the units.
func Solve(K utils.Matrix, F utils.Vector, kind Kind) (U utils.Vector, err error) {
	var (
		n, nc = K.Dims()
		cond  float64
	)
	if n != nc || n != F.Len() {
		panic(fmt.Errorf("dimension mismatch: K is %d x %d, len(F) = %d", n, nc, F.Len()))
	}
	var (
		Ks, S = Equilibrate(K)
		Fs    = F.Copy()
		Us    = utils.NewVector(n)
	)
	for i, s := range S.Data() {
		Fs.SetAt(i, s*F.AtVec(i))
	}
	switch kind {
	case LU:
		var lu mat.LU
		lu.Factorize(Ks.M)
		cond = lu.Cond()
		err = lu.SolveVecTo(Us.V, false, Fs.V)
	case Cholesky:
		var ch mat.Cholesky
		if ok := ch.Factorize(symmetric(Ks)); !ok {
			err = &model.SingularMatrixError{NDOF: n, Reason: "matrix is not positive definite"}
			return
		}
		cond = ch.Cond()
		err = ch.SolveVecTo(Us.V, Fs.V)
	default:
		panic(fmt.Errorf("unknown solver kind %d", kind))
	}
	var condErr mat.Condition
	switch {
	case errors.As(err, &condErr), errors.Is(err, mat.ErrSingular):
		err = &model.SingularMatrixError{NDOF: n, Reason: fmt.Sprintf("%s factorization: %v", kind, err)}
		return
	case err != nil:
		return
	}
	if math.IsInf(cond, 1) || math.IsNaN(cond) {
		err = &model.SingularMatrixError{NDOF: n, Reason: "zero pivot in " + kind.String() + " factorization"}
		return
	}
	if cond > MaxCondition {
		err = &model.SingularMatrixError{NDOF: n,
			Reason: fmt.Sprintf("condition number estimate %8.3g exceeds %8.3g, check for unrestrained rigid body modes", cond, MaxCondition)}
		return
	}
	U = utils.NewVector(n)
	for i, s := range S.Data() {
		U.SetAt(i, s*Us.AtVec(i))
	}
	if !utils.IsFinite(U.Data()) {
		err = &model.SingularMatrixError{NDOF: n, Reason: "solution is not finite"}
	}
	return
}

// symmetric copies the upper triangle of K
func symmetric(K utils.Matrix) (S *mat.SymDense) {
	n, _ := K.Dims()
	S = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			S.SetSym(i, j, K.At(i, j))
		}
	}
	return
}
