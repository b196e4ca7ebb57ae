package output

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/brickfem/fem"
	"github.com/notargets/brickfem/mesh"
	"github.com/notargets/brickfem/model"
)

func solvedCube(t *testing.T) (*fem.Analysis, model.Result) {
	elements, err := mesh.Box(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, 1, 1, 1)
	require.NoError(t, err)
	m := model.Model{Elements: elements, Material: model.Material{Name: "steel", E: 210000, Nu: 0.3}}
	for _, n := range mesh.Select(elements, mesh.OnPlane(model.Z, 0, 1.e-9)) {
		m.Supports = append(m.Supports, model.NewSupportOnNode(n.GlobalID, true, true, true))
	}
	m.Loads = []model.Load{
		model.NewLoadAt(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{Z: -500}),
		model.NewLoadAt(r3.Vec{X: 0, Y: 1, Z: 1}, r3.Vec{Z: -500}),
	}
	a, err := fem.NewAnalysis(m, fem.Options{})
	require.NoError(t, err)
	r, err := a.Solve()
	require.NoError(t, err)
	return a, r
}

func TestSummary(t *testing.T) {
	a, r := solvedCube(t)
	s := NewSummary("cube", a, r)
	assert.Equal(t, "steel", s.Material)
	assert.Equal(t, "lu", s.Solver)
	assert.Equal(t, 8, s.NNodes)
	assert.Equal(t, 1, s.NElements)
	assert.Equal(t, 24, s.NDOF)
	require.Len(t, s.Nodes, 8)
	for g, n := range s.Nodes {
		assert.Equal(t, g, n.ID)
		if n.Position[2] == 0 {
			require.NotNil(t, n.Reaction)
			assert.Equal(t, [3]float64{}, n.Displacement)
		} else {
			assert.Nil(t, n.Reaction)
		}
	}
	// the loaded top edge moves furthest
	assert.Contains(t, []int{6, 7}, s.MaxDisplacementNode)
	assert.True(t, s.MaxDisplacement > 0.0132)
	assert.InDelta(t, -1000., s.TotalLoad[2], 1.e-12)
	assert.InDelta(t, 0., s.Imbalance(), 1.e-8)
	zz := s.Stress["zz"]
	assert.True(t, zz.Min <= -3758.333)
	assert.True(t, zz.Max > zz.Min)
	assert.True(t, s.Stress["von_mises"].Min >= 0)
	assert.Len(t, s.Stress, 7)

	var buf bytes.Buffer
	require.NoError(t, s.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "Title: cube")
	back, err := ReadSummary(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, s.Nodes[7], back.Nodes[7])
	assert.Equal(t, s.Stress, back.Stress)

	file := filepath.Join(t.TempDir(), "result.yaml")
	require.NoError(t, s.WriteYAMLFile(file))
	data, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data)
}

func TestWriteVTK(t *testing.T) {
	a, r := solvedCube(t)
	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, "", a.Model.Elements, r))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "# vtk DataFile Version 3.0", lines[0])
	assert.Equal(t, "brickfem", lines[1])
	assert.Equal(t, "DATASET UNSTRUCTURED_GRID", lines[3])
	assert.Equal(t, "POINTS 8 double", lines[4])
	// 8 points follow, then the single cell in hex8 corner order
	assert.Equal(t, "CELLS 1 9", lines[13])
	assert.Equal(t, "8 0 1 3 2 4 5 7 6", lines[14])
	assert.Equal(t, "CELL_TYPES 1", lines[15])
	assert.Equal(t, "12", lines[16])
	assert.Equal(t, "POINT_DATA 8", lines[17])
	assert.Equal(t, "VECTORS displacement double", lines[18])
	assert.Contains(t, buf.String(), "TENSORS stress double\n")
	assert.Contains(t, buf.String(), "SCALARS von_mises double 1\nLOOKUP_TABLE default\n")

	file := filepath.Join(t.TempDir(), "result.vtk")
	require.NoError(t, WriteVTKFile(file, "cube", a.Model.Elements, r))
	data, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# vtk DataFile Version 3.0\ncube\n"))

	r.NodalStress = r.NodalStress[:2]
	assert.Error(t, WriteVTK(&buf, "", a.Model.Elements, r))
}
