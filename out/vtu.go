// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"bytes"
	goio "io"

	"github.com/paddyschmidt/gofe2/rve"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// vtkcodes maps cell types to VTK cell codes
var vtkcodes = map[string]int{"hex8": 12, "qua4": 9}

// WriteVtu writes the current state of the RVE of an instance as a VTK unstructured grid:
// reference coordinates, displacements, boundary flags and cell tags
func WriteVtu(w goio.Writer, inst *rve.Instance) (err error) {
	msh := inst.Dom.Msh
	var buf bytes.Buffer
	io.Ff(&buf, "<?xml version=\"1.0\"?>\n<VTKFile type=\"UnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n<UnstructuredGrid>\n")
	io.Ff(&buf, "<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", len(msh.Verts), len(msh.Cells))

	// coordinates
	io.Ff(&buf, "<Points>\n<DataArray type=\"Float64\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, v := range msh.Verts {
		io.Ff(&buf, "%23.15e %23.15e %23.15e ", v.C[0], v.C[1], v.C[2])
	}
	io.Ff(&buf, "\n</DataArray>\n</Points>\n")

	// connectivities
	io.Ff(&buf, "<Cells>\n<DataArray type=\"Int32\" Name=\"connectivity\" format=\"ascii\">\n")
	for _, c := range msh.Cells {
		for _, vid := range c.Verts {
			io.Ff(&buf, "%d ", vid)
		}
	}
	io.Ff(&buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"offsets\" format=\"ascii\">\n")
	var offset int
	for _, c := range msh.Cells {
		offset += len(c.Verts)
		io.Ff(&buf, "%d ", offset)
	}
	io.Ff(&buf, "\n</DataArray>\n<DataArray type=\"UInt8\" Name=\"types\" format=\"ascii\">\n")
	for _, c := range msh.Cells {
		code, ok := vtkcodes[c.Type]
		if !ok {
			return chk.Err("cannot handle cell type %q", c.Type)
		}
		io.Ff(&buf, "%d ", code)
	}
	io.Ff(&buf, "\n</DataArray>\n</Cells>\n")

	// points data
	io.Ff(&buf, "<PointData Vectors=\"u\">\n")
	io.Ff(&buf, "<DataArray type=\"Float64\" Name=\"u\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, v := range msh.Verts {
		u := []float64{0, 0, 0}
		if inst.Dom.Vid2node[v.Id] != nil {
			u = inst.Dom.NodeU(v.Id)
		}
		io.Ff(&buf, "%23.15e %23.15e %23.15e ", u[0], u[1], u[2])
	}
	io.Ff(&buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"boundary\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, v := range msh.Verts {
		flag := 0
		if inst.Boundary.Has(v.Id) {
			flag = 1
		}
		io.Ff(&buf, "%d ", flag)
	}
	io.Ff(&buf, "\n</DataArray>\n</PointData>\n")

	// cells data
	io.Ff(&buf, "<CellData Scalars=\"tag\">\n")
	io.Ff(&buf, "<DataArray type=\"Int32\" Name=\"tag\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, c := range msh.Cells {
		io.Ff(&buf, "%d ", iabs(c.Tag))
	}
	io.Ff(&buf, "\n</DataArray>\n</CellData>\n")

	// close
	io.Ff(&buf, "</Piece>\n</UnstructuredGrid>\n</VTKFile>\n")
	_, err = buf.WriteTo(w)
	return
}

func iabs(val int) int {
	if val < 0 {
		return -val
	}
	return val
}
