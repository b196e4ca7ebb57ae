package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
)

// Gmsh v2.2 element types the reader understands
const (
	gmshLine  = 1
	gmshTri   = 2
	gmshQuad  = 3
	gmshHex   = 5
	gmshPoint = 15
)

var gmshNumNodes22 = map[int]int{
	gmshLine:  2,
	gmshTri:   3,
	gmshQuad:  4,
	gmshHex:   hex8.NNodes, // same corner order as hex8
	gmshPoint: 1,
}

// Mesh is a hexahedral mesh read from a file, with node groups built from
// the physical tags of its elements
type Mesh struct {
	FormatVersion string
	IsBinary      bool
	DataSize      int
	Elements      []model.Element
	NodeTags      []int            // file node tag per global id
	Groups        map[string][]int // sorted global ids per physical group
	names         map[int]string
	coords        map[int]r3.Vec
	tagged        []taggedElement
}

type taggedElement struct {
	fileID, gmshType, physical int
	nodes                      []int
}

func (m *Mesh) NNodes() int { return len(m.NodeTags) }

// Group returns the global ids of a physical group
func (m *Mesh) Group(name string) (ids []int, err error) {
	var ok bool
	if ids, ok = m.Groups[name]; !ok {
		names := make([]string, 0, len(m.Groups))
		for k := range m.Groups {
			names = append(names, k)
		}
		sort.Strings(names)
		err = fmt.Errorf("no physical group \"%s\" in mesh, have %v", name, names)
	}
	return
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2, ASCII only
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGmsh22(file)
}

// ParseGmsh22 keeps the 8 node hexahedra. Node tags are renumbered to global
// ids 0..n-1 in order of first appearance in the hexahedra.
func ParseGmsh22(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	msh := &Mesh{
		Groups: make(map[string][]int),
		names:  make(map[int]string),
		coords: make(map[int]r3.Vec),
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat22(scanner, msh); err != nil {
				return nil, err
			}
			if msh.IsBinary {
				return nil, fmt.Errorf("binary MSH files are not supported, re-export as ASCII")
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, msh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes22(scanner, msh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements22(scanner, msh); err != nil {
				return nil, err
			}

		default:
			// Skip sections this reader has no use for
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				endMarker := "$End" + line[1:]
				for scanner.Scan() {
					if strings.TrimSpace(scanner.Text()) == endMarker {
						break
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}

	if err := msh.build(); err != nil {
		return nil, err
	}
	return msh, nil
}

// readMeshFormat22 reads the MeshFormat section
func readMeshFormat22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}

	msh.FormatVersion = parts[0]
	if !strings.HasPrefix(msh.FormatVersion, "2.") {
		return fmt.Errorf("MSH version %s is not 2.2", msh.FormatVersion)
	}
	fileType, err := parseInt(parts[1], "MeshFormat file type")
	if err != nil {
		return err
	}
	msh.IsBinary = fileType == 1
	if msh.DataSize, err = parseInt(parts[2], "MeshFormat data size"); err != nil {
		return err
	}

	return skipTo(scanner, "$EndMeshFormat")
}

// readPhysicalNames reads physical group names
func readPhysicalNames(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}

	numNames, err := parseCount(scanner.Text(), "physical names")
	if err != nil {
		return err
	}

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) >= 3 {
			tag, err := parseInt(parts[1], "physical tag")
			if err != nil {
				return err
			}
			// Names may contain spaces
			msh.names[tag] = strings.Trim(strings.Join(parts[2:], " "), "\"")
		}
	}

	return skipTo(scanner, "$EndPhysicalNames")
}

// readNodes22 reads nodes in v2.2 format
func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := parseCount(scanner.Text(), "nodes")
	if err != nil {
		return err
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}

		var (
			xyz [3]float64
		)
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node tag: %s", scanner.Text())
		}
		for j := range xyz {
			if xyz[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return fmt.Errorf("node %d: %v", nodeID, err)
			}
		}
		msh.coords[nodeID] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}

	return skipTo(scanner, "$EndNodes")
}

// readElements22 reads elements in v2.2 format
func readElements22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	numElements, err := parseCount(scanner.Text(), "elements")
	if err != nil {
		return err
	}

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid element line: %s", scanner.Text())
		}

		var header [3]int
		for j, what := range []string{"element id", "element type", "element tag count"} {
			if header[j], err = parseInt(parts[j], what); err != nil {
				return err
			}
		}
		elemID, elemType, numTags := header[0], header[1], header[2]

		if numTags < 0 || len(parts) < 3+numTags {
			return fmt.Errorf("invalid element tags")
		}

		expectedNodes, ok := gmshNumNodes22[elemType]
		if !ok {
			// Skip other element types
			continue
		}

		// The first tag is the physical group
		var physical int
		if numTags > 0 {
			if physical, err = parseInt(parts[3], "physical tag"); err != nil {
				return fmt.Errorf("element %d: %v", elemID, err)
			}
		}

		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}

		nodeIDs := make([]int, expectedNodes)
		for j := 0; j < expectedNodes; j++ {
			if nodeIDs[j], err = parseInt(parts[nodeStart+j], "node tag"); err != nil {
				return fmt.Errorf("element %d: %v", elemID, err)
			}
			if _, ok := msh.coords[nodeIDs[j]]; !ok {
				return fmt.Errorf("element %d: node %d not defined", elemID, nodeIDs[j])
			}
		}

		msh.tagged = append(msh.tagged, taggedElement{elemID, elemType, physical, nodeIDs})
	}

	return skipTo(scanner, "$EndElements")
}

func parseInt(field, what string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, field)
	}
	return v, nil
}

// parseCount reads a section record count
func parseCount(line, what string) (int, error) {
	n, err := parseInt(strings.TrimSpace(line), "number of "+what)
	if err == nil && n < 0 {
		err = fmt.Errorf("negative number of %s: %d", what, n)
	}
	return n, err
}

func skipTo(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endMarker)
}

// build numbers the hexahedra nodes and fills the physical groups. Lower
// dimensional elements only contribute to groups; their nodes must belong to
// some hexahedron.
func (m *Mesh) build() error {
	global := make(map[int]int)
	for _, te := range m.tagged {
		if te.gmshType != gmshHex {
			continue
		}
		el := model.Element{ID: len(m.Elements)}
		for local, tag := range te.nodes {
			g, ok := global[tag]
			if !ok {
				g = len(m.NodeTags)
				global[tag] = g
				m.NodeTags = append(m.NodeTags, tag)
			}
			el.Nodes[local] = model.Node{GlobalID: g, LocalID: local, Position: m.coords[tag]}
		}
		m.Elements = append(m.Elements, el)
	}
	if len(m.Elements) == 0 {
		return &model.TopologyError{ElementID: -1, Reason: "mesh holds no 8 node hexahedra"}
	}

	members := make(map[string]map[int]bool)
	for _, te := range m.tagged {
		if te.physical == 0 {
			continue
		}
		name, ok := m.names[te.physical]
		if !ok {
			name = fmt.Sprintf("physical_%d", te.physical)
		}
		if members[name] == nil {
			members[name] = make(map[int]bool)
		}
		for _, tag := range te.nodes {
			g, ok := global[tag]
			if !ok {
				return fmt.Errorf("element %d in group \"%s\": node %d is not part of any hexahedron",
					te.fileID, name, tag)
			}
			members[name][g] = true
		}
	}
	for name, set := range members {
		ids := make([]int, 0, len(set))
		for g := range set {
			ids = append(ids, g)
		}
		sort.Ints(ids)
		m.Groups[name] = ids
	}
	m.tagged, m.coords = nil, nil
	return nil
}
