// Package output writes analysis results: a YAML summary for reading and
// post processing, and a legacy VTK unstructured grid for viewers.
package output

import (
	"io"
	"io/ioutil"
	"math"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/fem"
	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
)

// Components names the Voigt entries as they appear in the summary
var Components = [hex8.NStrain]string{"xx", "yy", "zz", "xy", "yz", "zx"}

type NodeResult struct {
	ID           int        `json:"ID"`
	Position     [3]float64 `json:"Position"`
	Displacement [3]float64 `json:"Displacement"`
	Stress       [6]float64 `json:"Stress"` // xx, yy, zz, xy, yz, zx
	VonMises     float64    `json:"VonMises"`
	// Reaction is present only on nodes with a restrained component
	Reaction *[3]float64 `json:"Reaction,omitempty"`
}

type Range struct {
	Min float64 `json:"Min"`
	Max float64 `json:"Max"`
}

type Summary struct {
	Title     string `json:"Title"`
	Material  string `json:"Material"`
	Solver    string `json:"Solver"`
	NNodes    int    `json:"NNodes"`
	NElements int    `json:"NElements"`
	NDOF      int    `json:"NDOF"`
	// Condition is the estimated condition number of the reduced stiffness,
	// zero when not requested
	Condition           float64          `json:"Condition,omitempty"`
	MaxDisplacement     float64          `json:"MaxDisplacement"`
	MaxDisplacementNode int              `json:"MaxDisplacementNode"`
	Stress              map[string]Range `json:"Stress"`
	TotalLoad           [3]float64       `json:"TotalLoad"`
	TotalReaction       [3]float64       `json:"TotalReaction"`
	Nodes               []NodeResult     `json:"Nodes"`
}

func array(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// NewSummary collects the per node results of a solved analysis
func NewSummary(title string, a *fem.Analysis, r model.Result) (s Summary) {
	var (
		nNodes = a.NNodes()
	)
	s = Summary{
		Title:     title,
		Material:  a.Model.Material.Name,
		Solver:    a.Options.Solver.String(),
		NNodes:    nNodes,
		NElements: len(a.Model.Elements),
		NDOF:      a.NDOF(),
		Condition: a.Condition,
		Stress:    make(map[string]Range),
		Nodes:     make([]NodeResult, nNodes),
	}
	s.MaxDisplacement = -1
	for g, n := range a.Nodes {
		var (
			d  = r.Displacement(g)
			st = r.NodalStress[g]
		)
		s.Nodes[g] = NodeResult{
			ID:           g,
			Position:     array(n.Position),
			Displacement: array(d),
			Stress:       [6]float64(st),
			VonMises:     st.VonMises(),
		}
		for c := 0; c < hex8.NDim; c++ {
			if a.Mask[model.DOFIndex(g, c, nNodes)] {
				R := array(r.Reactions[g])
				s.Nodes[g].Reaction = &R
				break
			}
		}
		if norm := r3.Norm(d); norm > s.MaxDisplacement {
			s.MaxDisplacement, s.MaxDisplacementNode = norm, g
		}
	}
	for c, name := range Components {
		min, max := r.StressRange(c)
		s.Stress[name] = Range{min, max}
	}
	min, max := r.StressRange(model.VonMisesComponent)
	s.Stress["von_mises"] = Range{min, max}
	// F0 counts a position matched load once per node it hits
	var load r3.Vec
	for g := 0; g < nNodes; g++ {
		load = r3.Add(load, r3.Vec{
			X: a.F0.AtVec(model.DOFIndex(g, model.X, nNodes)),
			Y: a.F0.AtVec(model.DOFIndex(g, model.Y, nNodes)),
			Z: a.F0.AtVec(model.DOFIndex(g, model.Z, nNodes)),
		})
	}
	s.TotalLoad = array(load)
	s.TotalReaction = array(r.TotalReaction())
	return
}

// Imbalance is the norm of load plus reaction, zero for an equilibrated
// solution
func (s Summary) Imbalance() float64 {
	var sum float64
	for i := range s.TotalLoad {
		d := s.TotalLoad[i] + s.TotalReaction[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (s Summary) WriteYAML(w io.Writer) (err error) {
	var data []byte
	if data, err = yaml.Marshal(s); err != nil {
		return
	}
	_, err = w.Write(data)
	return
}

func (s Summary) WriteYAMLFile(filename string) (err error) {
	var data []byte
	if data, err = yaml.Marshal(s); err != nil {
		return
	}
	return ioutil.WriteFile(filename, data, 0644)
}

// ReadSummary parses a summary written by WriteYAML
func ReadSummary(data []byte) (s Summary, err error) {
	err = yaml.Unmarshal(data, &s)
	return
}
