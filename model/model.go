// Package model holds the records exchanged between the solver core and
// the code that builds meshes or consumes results.
package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
)

// Displacement components
const (
	X = iota
	Y
	Z
)

// Unassigned marks a load or support matched by position instead of node id
const Unassigned = -1

// DOFIndex is the global equation number of a displacement component.
// Numbering is component major: all x DOFs, then all y, then all z.
func DOFIndex(globalID, comp, nNodes int) int {
	return globalID + comp*nNodes
}

// Node is the per element record of a corner. Elements touching the same
// physical point carry nodes with the same GlobalID.
type Node struct {
	GlobalID int
	LocalID  int // corner position 0..7 within the owning element
	Position r3.Vec
}

type Element struct {
	ID    int
	Nodes [hex8.NNodes]Node
}

// Support restrains translations of one node; true means fixed
type Support struct {
	Node                   int // global id, or Unassigned to match by Position
	Position               r3.Vec
	FixedX, FixedY, FixedZ bool
}

func NewSupportAt(p r3.Vec, fixedX, fixedY, fixedZ bool) Support {
	return Support{Node: Unassigned, Position: p, FixedX: fixedX, FixedY: fixedY, FixedZ: fixedZ}
}

func NewSupportOnNode(globalID int, fixedX, fixedY, fixedZ bool) Support {
	return Support{Node: globalID, FixedX: fixedX, FixedY: fixedY, FixedZ: fixedZ}
}

func (s Support) Fixed() [3]bool {
	return [3]bool{s.FixedX, s.FixedY, s.FixedZ}
}

type Load struct {
	Node     int // global id, or Unassigned to match by Position
	Position r3.Vec
	Force    r3.Vec
}

func NewLoadAt(p, force r3.Vec) Load {
	return Load{Node: Unassigned, Position: p, Force: force}
}

func NewLoadOnNode(globalID int, force r3.Vec) Load {
	return Load{Node: globalID, Force: force}
}

type Material struct {
	Name string
	E    float64 // Young's modulus
	Nu   float64 // Poisson's ratio
}

// Model is one complete analysis input with a single material
type Model struct {
	Elements  []Element
	Loads     []Load
	Supports  []Support
	Material  Material
	Tolerance float64 // positional matching distance, zero selects the default
}

// Voigt holds a symmetric tensor as xx, yy, zz, xy, yz, zx
type Voigt [hex8.NStrain]float64

func (v Voigt) VonMises() float64 {
	dxy, dyz, dzx := v[0]-v[1], v[1]-v[2], v[2]-v[0]
	return math.Sqrt(0.5*(dxy*dxy+dyz*dyz+dzx*dzx) +
		3*(v[3]*v[3]+v[4]*v[4]+v[5]*v[5]))
}

func (v Voigt) Add(a Voigt) (r Voigt) {
	for i := range v {
		r[i] = v[i] + a[i]
	}
	return
}

func (v Voigt) Scale(a float64) (r Voigt) {
	for i := range v {
		r[i] = v[i] * a
	}
	return
}

// Stress and strain component indices into a Voigt
const (
	XX = iota
	YY
	ZZ
	XY
	YZ
	ZX
	VonMisesComponent // pseudo component for ranges and plots
)

// ElementResult holds the nodal fields of one element, indexed by local id
type ElementResult struct {
	ElementID    int
	Displacement [hex8.NNodes]r3.Vec
	Strain       [hex8.NNodes]Voigt
	Stress       [hex8.NNodes]Voigt
	Deformed     [hex8.NNodes]r3.Vec
}

// Mesh is a quadrilateral surface mesh for display
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][4]int
}

type Result struct {
	Elements     []ElementResult
	U            []float64 // global displacement vector, component major
	NNodes       int
	NodalStress  []Voigt  // averaged over adjacent elements, indexed by global id
	Deformed     []r3.Vec // deformed position per global id
	Reactions    []r3.Vec // support reactions per global id, zero for free nodes
	DeformedMesh Mesh
}

func (r Result) Displacement(globalID int) r3.Vec {
	return r3.Vec{
		X: r.U[DOFIndex(globalID, X, r.NNodes)],
		Y: r.U[DOFIndex(globalID, Y, r.NNodes)],
		Z: r.U[DOFIndex(globalID, Z, r.NNodes)],
	}
}

// StressRange returns the extrema of an averaged nodal stress component;
// VonMisesComponent selects the equivalent stress
func (r Result) StressRange(comp int) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, s := range r.NodalStress {
		var val float64
		if comp == VonMisesComponent {
			val = s.VonMises()
		} else {
			val = s[comp]
		}
		min = math.Min(min, val)
		max = math.Max(max, val)
	}
	return
}

// TotalReaction sums the support reactions
func (r Result) TotalReaction() (sum r3.Vec) {
	for _, f := range r.Reactions {
		sum = r3.Add(sum, f)
	}
	return
}
