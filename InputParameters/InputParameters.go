package InputParameters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/mesh"
	"github.com/notargets/brickfem/model"
)

// Parameters obtained from the YAML problem file
type InputParameters struct {
	Title     string       `json:"Title"`
	Material  MaterialSpec `json:"Material"`
	Mesh      MeshSpec     `json:"Mesh"`
	Supports  []Support    `json:"Supports"`
	Loads     []Load       `json:"Loads"`
	Tolerance float64      `json:"Tolerance"` // positional matching, zero selects the default
	Solver    string       `json:"Solver"`    // lu or cholesky
	Output    string       `json:"Output"`    // YAML result file
	VTK       string       `json:"VTK"`       // legacy VTK result file
}

type MaterialSpec struct {
	Name string  `json:"Name"`
	E    float64 `json:"E"`
	Nu   float64 `json:"Nu"`
}

// MeshSpec selects exactly one mesh source
type MeshSpec struct {
	Box  *BoxSpec  `json:"Box,omitempty"`
	Loft *LoftSpec `json:"Loft,omitempty"`
	Gmsh string    `json:"Gmsh,omitempty"` // path to a version 2.2 ASCII file
}

type BoxSpec struct {
	Origin    []float64 `json:"Origin"`
	Size      []float64 `json:"Size"`
	Divisions []int     `json:"Divisions"`
}

type LoftSpec struct {
	Base      [][]float64 `json:"Base"` // four corners, counter clockwise
	Top       [][]float64 `json:"Top"`
	Divisions []int       `json:"Divisions"`
}

// Selection picks nodes by one of: global id, point, plane or physical group
type Selection struct {
	Node  *int      `json:"Node,omitempty"`
	Point []float64 `json:"Point,omitempty"`
	Plane *Plane    `json:"Plane,omitempty"`
	Group string    `json:"Group,omitempty"`
}

type Plane struct {
	Axis  string  `json:"Axis"` // x, y or z
	Value float64 `json:"Value"`
}

type Support struct {
	Selection
	Fixed []bool `json:"Fixed"` // x, y, z; true restrains, omitted fixes all three
}

type Load struct {
	Selection
	Force []float64 `json:"Force"`
	// Split divides Force evenly over the selected nodes instead of applying
	// it to each
	Split bool `json:"Split"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Material\n", ip.Material.Name)
	fmt.Printf("%8.5g\t\t= E\n", ip.Material.E)
	fmt.Printf("%8.5f\t\t= Nu\n", ip.Material.Nu)
	fmt.Printf("[%s]\t\t\t= Mesh\n", ip.Mesh.kind())
	fmt.Printf("[%d]\t\t\t\t= Supports\n", len(ip.Supports))
	fmt.Printf("[%d]\t\t\t\t= Loads\n", len(ip.Loads))
	if ip.Tolerance != 0 {
		fmt.Printf("%8.3g\t\t= Tolerance\n", ip.Tolerance)
	}
	if len(ip.Solver) != 0 {
		fmt.Printf("[%s]\t\t\t= Solver\n", ip.Solver)
	}
}

func (ms MeshSpec) kind() string {
	switch {
	case ms.Box != nil:
		return "box"
	case ms.Loft != nil:
		return "loft"
	case len(ms.Gmsh) != 0:
		return "gmsh " + ms.Gmsh
	}
	return "none"
}

func vec(label string, c []float64) (v r3.Vec, err error) {
	if len(c) != 3 {
		err = fmt.Errorf("%s needs 3 components, have %v", label, c)
		return
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func divisions(d []int) (n [3]int, err error) {
	if len(d) != 3 {
		err = fmt.Errorf("mesh divisions need 3 values, have %v", d)
		return
	}
	copy(n[:], d)
	return
}

func quad(label string, corners [][]float64) (q mesh.Quad, err error) {
	if len(corners) != 4 {
		err = fmt.Errorf("%s needs 4 corners, have %d", label, len(corners))
		return
	}
	for i, c := range corners {
		if q[i], err = vec(fmt.Sprintf("%s corner %d", label, i), c); err != nil {
			return
		}
	}
	return
}

// BuildMesh creates the elements. Relative Gmsh paths are taken from dir.
func (ms MeshSpec) BuildMesh(dir string) (elements []model.Element, groups map[string][]int, err error) {
	var n [3]int
	switch ms.kind() {
	case "box":
		var origin, size r3.Vec
		if origin, err = vec("box origin", ms.Box.Origin); err != nil {
			return
		}
		if size, err = vec("box size", ms.Box.Size); err != nil {
			return
		}
		if n, err = divisions(ms.Box.Divisions); err != nil {
			return
		}
		elements, err = mesh.Box(origin, size, n[0], n[1], n[2])
	case "loft":
		var base, top mesh.Quad
		if base, err = quad("loft base", ms.Loft.Base); err != nil {
			return
		}
		if top, err = quad("loft top", ms.Loft.Top); err != nil {
			return
		}
		if n, err = divisions(ms.Loft.Divisions); err != nil {
			return
		}
		elements, err = mesh.Loft(base, top, n[0], n[1], n[2])
	case "none":
		err = fmt.Errorf("no mesh given, use one of Box, Loft or Gmsh")
	default:
		var (
			file = ms.Gmsh
			msh  *mesh.Mesh
		)
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		if msh, err = mesh.ReadGmsh22(file); err != nil {
			return
		}
		elements, groups = msh.Elements, msh.Groups
	}
	return
}

func axis(label string) (a int, err error) {
	switch strings.ToLower(label) {
	case "x":
		a = model.X
	case "y", "true": // YAML 1.1 reads an unquoted y as true
		a = model.Y
	case "z":
		a = model.Z
	default:
		err = fmt.Errorf("unknown axis \"%s\"", label)
	}
	return
}

// resolve returns either a node list for plane and group selections, or a
// single node id or point
func (s Selection) resolve(elements []model.Element, groups map[string][]int, tol float64) (ids []int, node int, point r3.Vec, err error) {
	node = model.Unassigned
	switch {
	case s.Node != nil:
		node = *s.Node
	case s.Point != nil:
		point, err = vec("point", s.Point)
	case s.Plane != nil:
		var a int
		if a, err = axis(s.Plane.Axis); err != nil {
			return
		}
		for _, n := range mesh.Select(elements, mesh.OnPlane(a, s.Plane.Value, tol)) {
			ids = append(ids, n.GlobalID)
		}
		if len(ids) == 0 {
			err = fmt.Errorf("no nodes on plane %s = %g", s.Plane.Axis, s.Plane.Value)
		}
	case len(s.Group) != 0:
		var ok bool
		if ids, ok = groups[s.Group]; !ok {
			err = fmt.Errorf("unknown node group \"%s\"", s.Group)
		}
	default:
		err = fmt.Errorf("selection needs one of Node, Point, Plane or Group")
	}
	return
}

// ToModel builds the analysis model. dir locates relative mesh files.
func (ip *InputParameters) ToModel(dir string) (m model.Model, err error) {
	var (
		groups map[string][]int
	)
	m.Material = model.Material{Name: ip.Material.Name, E: ip.Material.E, Nu: ip.Material.Nu}
	m.Tolerance = ip.Tolerance
	if m.Elements, groups, err = ip.Mesh.BuildMesh(dir); err != nil {
		return
	}
	tol := m.MatchTolerance()
	for i, s := range ip.Supports {
		var (
			fixed = [3]bool{true, true, true}
			ids   []int
			node  int
			point r3.Vec
		)
		if len(s.Fixed) != 0 {
			if len(s.Fixed) != 3 {
				err = fmt.Errorf("support %d: Fixed needs 3 values, have %v", i, s.Fixed)
				return
			}
			copy(fixed[:], s.Fixed)
		}
		if ids, node, point, err = s.resolve(m.Elements, groups, tol); err != nil {
			err = fmt.Errorf("support %d: %w", i, err)
			return
		}
		switch {
		case ids != nil:
			for _, g := range ids {
				m.Supports = append(m.Supports, model.NewSupportOnNode(g, fixed[0], fixed[1], fixed[2]))
			}
		case node != model.Unassigned:
			m.Supports = append(m.Supports, model.NewSupportOnNode(node, fixed[0], fixed[1], fixed[2]))
		default:
			m.Supports = append(m.Supports, model.NewSupportAt(point, fixed[0], fixed[1], fixed[2]))
		}
	}
	for i, l := range ip.Loads {
		var (
			force r3.Vec
			ids   []int
			node  int
			point r3.Vec
		)
		if force, err = vec(fmt.Sprintf("load %d force", i), l.Force); err != nil {
			return
		}
		if ids, node, point, err = l.resolve(m.Elements, groups, tol); err != nil {
			err = fmt.Errorf("load %d: %w", i, err)
			return
		}
		switch {
		case ids != nil:
			if l.Split {
				force = r3.Scale(1/float64(len(ids)), force)
			}
			for _, g := range ids {
				m.Loads = append(m.Loads, model.NewLoadOnNode(g, force))
			}
		case node != model.Unassigned:
			m.Loads = append(m.Loads, model.NewLoadOnNode(node, force))
		default:
			m.Loads = append(m.Loads, model.NewLoadAt(point, force))
		}
	}
	return
}
