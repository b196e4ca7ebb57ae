package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/notargets/brickfem/hex8"
	"github.com/notargets/brickfem/model"
)

// VTKHexahedron is the legacy VTK cell type of an 8 node brick; its corner
// order is the hex8 local order
const VTKHexahedron = 12

// WriteVTK writes the deformed mesh as a legacy ASCII unstructured grid with
// displacement, stress and von Mises stress as point data
func WriteVTK(w io.Writer, title string, elements []model.Element, r model.Result) (err error) {
	var (
		geo = new(bytes.Buffer)
		dat = new(bytes.Buffer)
	)
	if len(r.Deformed) != r.NNodes || len(r.NodalStress) != r.NNodes {
		return fmt.Errorf("result holds %d deformed nodes and %d stresses for %d nodes",
			len(r.Deformed), len(r.NodalStress), r.NNodes)
	}
	if len(title) == 0 {
		title = "brickfem"
	}
	fmt.Fprintf(geo, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", title)
	topology(geo, elements, r)
	pointData(dat, r)
	if _, err = geo.WriteTo(w); err != nil {
		return
	}
	_, err = dat.WriteTo(w)
	return
}

func WriteVTKFile(filename, title string, elements []model.Element, r model.Result) (err error) {
	var f *os.File
	if f, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteVTK(f, title, elements, r); err != nil {
		f.Close()
		return
	}
	return f.Close()
}

func topology(buf *bytes.Buffer, elements []model.Element, r model.Result) {
	// coordinates
	fmt.Fprintf(buf, "POINTS %d double\n", r.NNodes)
	for _, p := range r.Deformed {
		fmt.Fprintf(buf, "%23.15e %23.15e %23.15e\n", p.X, p.Y, p.Z)
	}

	// connectivities
	fmt.Fprintf(buf, "CELLS %d %d\n", len(elements), len(elements)*(1+hex8.NNodes))
	for _, el := range elements {
		var conn [hex8.NNodes]int
		for _, n := range el.Nodes {
			conn[n.LocalID] = n.GlobalID
		}
		fmt.Fprintf(buf, "%d", hex8.NNodes)
		for _, g := range conn {
			fmt.Fprintf(buf, " %d", g)
		}
		fmt.Fprintf(buf, "\n")
	}

	// types
	fmt.Fprintf(buf, "CELL_TYPES %d\n", len(elements))
	for range elements {
		fmt.Fprintf(buf, "%d\n", VTKHexahedron)
	}
}

func pointData(buf *bytes.Buffer, r model.Result) {
	fmt.Fprintf(buf, "POINT_DATA %d\n", r.NNodes)

	fmt.Fprintf(buf, "VECTORS displacement double\n")
	for g := 0; g < r.NNodes; g++ {
		d := r.Displacement(g)
		fmt.Fprintf(buf, "%23.15e %23.15e %23.15e\n", d.X, d.Y, d.Z)
	}

	// full symmetric 3x3 per point
	fmt.Fprintf(buf, "TENSORS stress double\n")
	for _, s := range r.NodalStress {
		fmt.Fprintf(buf, "%23.15e %23.15e %23.15e\n", s[model.XX], s[model.XY], s[model.ZX])
		fmt.Fprintf(buf, "%23.15e %23.15e %23.15e\n", s[model.XY], s[model.YY], s[model.YZ])
		fmt.Fprintf(buf, "%23.15e %23.15e %23.15e\n\n", s[model.ZX], s[model.YZ], s[model.ZZ])
	}

	fmt.Fprintf(buf, "SCALARS von_mises double 1\nLOOKUP_TABLE default\n")
	for _, s := range r.NodalStress {
		fmt.Fprintf(buf, "%23.15e\n", s.VonMises())
	}
}
