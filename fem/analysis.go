// Package fem runs a static linear elastic analysis of a brick mesh: it
// validates the model, assembles and reduces the global system, solves it
// and recovers the element and nodal results.
package fem

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/assembly"
	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/material"
	"github.com/notargets/brickfem/model"
	"github.com/notargets/brickfem/recovery"
	"github.com/notargets/brickfem/solver"
	"github.com/notargets/brickfem/utils"
)

type Options struct {
	Solver    solver.Kind
	Condition bool // estimate the condition number of the equilibrated reduced K via SVD
	// ParallelDegree is the number of goroutines computing element matrices
	// and element results, zero selects the number of CPUs
	ParallelDegree int
}

type Stage struct {
	Name    string
	Elapsed time.Duration
}

type Analysis struct {
	Model   model.Model
	Options Options
	Nodes   []model.Node // one per global id
	C       utils.Matrix
	K0      utils.Matrix // global stiffness before supports
	F0      utils.Vector // global load before supports
	K       utils.Matrix // reduced stiffness
	F       utils.Vector
	Mask    []bool // restrained DOFs
	// Condition is zero unless Options.Condition is set
	Condition float64
	Stages    []Stage
}

// NewAnalysis checks the model topology and material
func NewAnalysis(m model.Model, opts Options) (a *Analysis, err error) {
	a = &Analysis{Model: m, Options: opts}
	start := time.Now()
	if a.Nodes, err = m.GlobalNodes(); err != nil {
		return nil, err
	}
	if a.C, err = material.ElasticityMatrix(m.Material); err != nil {
		return nil, err
	}
	a.stage("validate", start)
	return
}

func (a *Analysis) NNodes() int { return len(a.Nodes) }
func (a *Analysis) NDOF() int   { return hex8.NDim * len(a.Nodes) }

func (a *Analysis) stage(name string, start time.Time) {
	a.Stages = append(a.Stages, Stage{name, time.Since(start)})
}

// Assemble builds K and F and applies the supports
func (a *Analysis) Assemble() (err error) {
	var (
		m     = a.Model
		tol   = m.MatchTolerance()
		start = time.Now()
	)
	if a.K0, err = assembly.GlobalStiffness(m.Elements, a.C, a.NNodes(), a.Options.ParallelDegree); err != nil {
		return
	}
	if a.F0, err = assembly.GlobalLoad(a.Nodes, m.Loads, tol); err != nil {
		return
	}
	if a.Mask, err = assembly.SupportMask(a.Nodes, m.Supports, tol); err != nil {
		return
	}
	a.stage("assemble", start)
	start = time.Now()
	a.K, a.F = a.K0.Copy(), a.F0.Copy()
	assembly.ApplySupports(a.K, a.F, a.Mask)
	a.K0.SetReadOnly("K0")
	a.K.SetReadOnly("K")
	a.stage("supports", start)
	return
}

// Solve assembles when needed, solves for the displacements and recovers
// the results
func (a *Analysis) Solve() (r model.Result, err error) {
	var (
		U utils.Vector
	)
	if a.K.IsEmpty() {
		if err = a.Assemble(); err != nil {
			return
		}
	}
	start := time.Now()
	if a.Options.Condition {
		Ks, _ := solver.Equilibrate(a.K)
		a.Condition = Ks.ConditionNumber()
	}
	if U, err = solver.Solve(a.K, a.F, a.Options.Solver); err != nil {
		return
	}
	a.stage("solve", start)
	start = time.Now()
	r, err = a.Recover(U.Data())
	a.stage("recover", start)
	return
}

// Recover builds the result set for the global displacement vector U
func (a *Analysis) Recover(U []float64) (r model.Result, err error) {
	var (
		m      = a.Model
		nNodes = a.NNodes()
		stress = make([][hex8.NNodes]model.Voigt, len(m.Elements))
	)
	if len(U) != a.NDOF() {
		err = fmt.Errorf("displacement vector has %d entries, expected %d", len(U), a.NDOF())
		return
	}
	r = model.Result{
		Elements: make([]model.ElementResult, len(m.Elements)),
		U:        U,
		NNodes:   nNodes,
		Deformed: make([]r3.Vec, nNodes),
	}
	var (
		pm   = utils.NewPartitionMap(a.Options.ParallelDegree, len(m.Elements))
		errs = make([]error, pm.ParallelDegree)
		wg   = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			kMin, kMax := pm.GetBucketRange(np)
			for e := kMin; e < kMax; e++ {
				if errs[np] = a.recoverElement(U, e, &r.Elements[e]); errs[np] != nil {
					break
				}
			}
			wg.Done()
		}(np)
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return
		}
	}
	for e, el := range m.Elements {
		for _, n := range el.Nodes {
			r.Deformed[n.GlobalID] = r.Elements[e].Deformed[n.LocalID]
		}
		stress[e] = r.Elements[e].Stress
	}
	r.NodalStress = recovery.NodalStressAveraging(m.Elements, stress, nNodes)
	r.DeformedMesh = recovery.DeformedMesh(m.Elements, r.Deformed)
	if !a.K0.IsEmpty() {
		r.Reactions = recovery.Reactions(a.K0, a.F0, U, a.Mask, nNodes)
	}
	return
}

func (a *Analysis) recoverElement(U []float64, e int, er *model.ElementResult) (err error) {
	var (
		el = a.Model.Elements[e]
		v  hex8.DOFVector
	)
	er.ElementID = el.ID
	er.Displacement, v = recovery.ElementDisplacement(el, U, a.NNodes())
	if er.Strain, er.Stress, err = recovery.ElementStressStrain(el, a.C, v); err != nil {
		return
	}
	for _, n := range el.Nodes {
		er.Deformed[n.LocalID] = recovery.DeformedPosition(n, er.Displacement[n.LocalID])
	}
	return
}

// Run is NewAnalysis followed by Solve
func Run(m model.Model, opts Options) (r model.Result, err error) {
	var (
		a *Analysis
	)
	if a, err = NewAnalysis(m, opts); err != nil {
		return
	}
	return a.Solve()
}
