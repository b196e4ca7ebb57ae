// Package assembly maps element quantities onto the global system and
// reduces that system for restrained degrees of freedom.
package assembly

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/element"
	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/utils"
)

// Connectivity returns the 24 x 3*nNodes Boolean matrix a taking the global
// displacement vector to the element DOF vector, v = a * u
func Connectivity(el model.Element, nNodes int) (a utils.CSR) {
	dok := utils.NewDOK(hex8.NDOF, hex8.NDim*nNodes)
	for _, n := range el.Nodes {
		for comp := 0; comp < hex8.NDim; comp++ {
			dok.Set(hex8.LocalDOF(n.LocalID, comp), model.DOFIndex(n.GlobalID, comp, nNodes), 1)
		}
	}
	dok.SetReadOnly("a")
	return dok.ToCSR()
}

// Scatter adds a^T * Ke * a into K. Only the nonzeros of a are visited.
func Scatter(K utils.Matrix, a utils.CSR, Ke utils.Matrix) {
	type entry struct {
		local, global int
		val           float64
	}
	var (
		entries = make([]entry, 0, hex8.NDOF)
	)
	a.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{i, j, v})
	})
	for _, r := range entries {
		for _, c := range entries {
			K.AddAt(r.global, c.global, r.val*Ke.At(r.local, c.local)*c.val)
		}
	}
}

// ElementStiffnesses computes Ke for every element, the elements split over
// NPar goroutines. NPar below one selects the number of CPUs. On failure the
// error of the lowest numbered failing element is returned.
func ElementStiffnesses(elements []model.Element, C utils.Matrix, NPar int) (Ke []utils.Matrix, err error) {
	var (
		pm   = utils.NewPartitionMap(NPar, len(elements))
		errs = make([]error, pm.ParallelDegree)
		wg   = sync.WaitGroup{}
	)
	Ke = make([]utils.Matrix, len(elements))
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				if Ke[k], errs[np] = element.Stiffness(elements[k], C); errs[np] != nil {
					break
				}
			}
			wg.Done()
		}(np)
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return nil, err
		}
	}
	return
}

// GlobalStiffness assembles K = sum over elements of a^T * Ke * a. Element
// matrices are computed in parallel and scattered in element order, so K
// does not depend on NPar.
func GlobalStiffness(elements []model.Element, C utils.Matrix, nNodes, NPar int) (K utils.Matrix, err error) {
	var (
		Ke []utils.Matrix
	)
	if Ke, err = ElementStiffnesses(elements, C, NPar); err != nil {
		return
	}
	K = utils.NewMatrix(hex8.NDim*nNodes, hex8.NDim*nNodes)
	for k, el := range elements {
		Scatter(K, Connectivity(el, nNodes), Ke[k])
	}
	return
}

// Gather returns the element DOF vector v = a * u
func Gather(a utils.CSR, U []float64) (v hex8.DOFVector) {
	copy(v[:], a.MulVec(U))
	return
}

// matchNodes returns the global ids a load or support applies to. A node
// reference wins over the position.
func matchNodes(nodes []model.Node, node int, position r3.Vec, tol float64) (ids []int) {
	if node != model.Unassigned {
		if node >= 0 && node < len(nodes) {
			ids = []int{node}
		}
		return
	}
	for _, n := range nodes {
		if utils.PointsCoincide(n.Position, position, tol) {
			ids = append(ids, n.GlobalID)
		}
	}
	return
}

// GlobalLoad accumulates the nodal forces into F. Coincident loads on one
// node add.
func GlobalLoad(nodes []model.Node, loads []model.Load, tol float64) (F utils.Vector, err error) {
	var (
		nNodes = len(nodes)
	)
	F = utils.NewVector(hex8.NDim * nNodes)
	for i, l := range loads {
		ids := matchNodes(nodes, l.Node, l.Position, tol)
		if len(ids) == 0 {
			err = &model.UnmatchedError{Kind: model.LoadCondition, Index: i, Node: l.Node, Position: l.Position}
			return
		}
		for _, g := range ids {
			F.AddAt(model.DOFIndex(g, model.X, nNodes), l.Force.X)
			F.AddAt(model.DOFIndex(g, model.Y, nNodes), l.Force.Y)
			F.AddAt(model.DOFIndex(g, model.Z, nNodes), l.Force.Z)
		}
	}
	return
}

// SupportMask marks every restrained global DOF
func SupportMask(nodes []model.Node, supports []model.Support, tol float64) (mask []bool, err error) {
	var (
		nNodes = len(nodes)
	)
	mask = make([]bool, hex8.NDim*nNodes)
	for i, s := range supports {
		ids := matchNodes(nodes, s.Node, s.Position, tol)
		if len(ids) == 0 {
			err = &model.UnmatchedError{Kind: model.SupportCondition, Index: i, Node: s.Node, Position: s.Position}
			return
		}
		for _, g := range ids {
			for comp, fixed := range s.Fixed() {
				if fixed {
					mask[model.DOFIndex(g, comp, nNodes)] = true
				}
			}
		}
	}
	return
}

// ApplySupports turns each restrained equation into 1 * u[i] = 0. The column
// is cleared along with the row so the restrained DOF no longer couples into
// the free equations.
func ApplySupports(K utils.Matrix, F utils.Vector, mask []bool) {
	for _, i := range utils.FindBool(mask, true) {
		K.ZeroRow(i)
		K.ZeroCol(i)
		F.SetAt(i, 0)
		K.Set(i, i, 1)
	}
}
