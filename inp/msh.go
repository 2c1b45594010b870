// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/paddyschmidt/gofe2/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// constants
const Ztol = 1e-7

// Vert holds vertex data
type Vert struct {
	Id  int       `json:"id"`  // id
	Tag int       `json:"tag"` // tag
	C   []float64 `json:"c"`   // coordinates (size==3)
}

// Cell holds cell data
type Cell struct {
	Id    int    `json:"id"`    // id
	Tag   int    `json:"tag"`   // tag
	Type  string `json:"type"`  // geometry type (string); e.g. "hex8"
	Verts []int  `json:"verts"` // vertices
}

// Mesh holds a mesh for FE analyses
type Mesh struct {

	// from JSON
	Verts []*Vert `json:"verts"` // vertices
	Cells []*Cell `json:"cells"` // cells

	// derived
	FnamePath  string  `json:"-"` // complete filename path
	Ndim       int     `json:"-"` // space dimension
	Xmin, Xmax float64 `json:"-"` // min and max x-coordinate
	Ymin, Ymax float64 `json:"-"` // min and max y-coordinate
	Zmin, Zmax float64 `json:"-"` // min and max z-coordinate

	// derived: maps
	VertTag2verts map[int][]*Vert `json:"-"` // vertex tag => set of vertices
	CellTag2cells map[int][]*Cell `json:"-"` // cell tag => set of cells
}

// ReadMsh reads a mesh for FE analyses
func ReadMsh(dir, fn string) (o *Mesh, err error) {

	// read file
	fnamepath := filepath.Join(dir, fn)
	b, err := io.ReadFile(fnamepath)
	if err != nil {
		return nil, chk.Err("cannot read mesh file %q:\n%v", fnamepath, err)
	}

	// decode
	o = new(Mesh)
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal mesh file %q:\n%v", fnamepath, err)
	}
	o.FnamePath = fnamepath

	// derived data
	err = o.Init()
	if err != nil {
		return nil, chk.Err("mesh file %q is invalid:\n%v", fnamepath, err)
	}
	return
}

// Init checks the mesh and computes derived data
func (o *Mesh) Init() (err error) {

	// check
	if len(o.Verts) < 2 {
		return chk.Err("at least 2 vertices are required in mesh")
	}
	if len(o.Cells) < 1 {
		return chk.Err("at least 1 cell is required in mesh")
	}

	// vertex related derived data
	o.Ndim = 3
	o.VertTag2verts = make(map[int][]*Vert)
	for i, v := range o.Verts {

		// check vertex
		if v.Id != i {
			return chk.Err("vertices ids must coincide with order in \"verts\" list. %d != %d", v.Id, i)
		}
		if len(v.C) != 3 {
			return chk.Err("vertex %d must have 3 coordinates. %d is incorrect", v.Id, len(v.C))
		}

		// tags
		if v.Tag < 0 {
			verts := o.VertTag2verts[v.Tag]
			o.VertTag2verts[v.Tag] = append(verts, v)
		}

		// limits
		if i == 0 {
			o.Xmin, o.Xmax = v.C[0], v.C[0]
			o.Ymin, o.Ymax = v.C[1], v.C[1]
			o.Zmin, o.Zmax = v.C[2], v.C[2]
			continue
		}
		o.Xmin = utl.Min(o.Xmin, v.C[0])
		o.Xmax = utl.Max(o.Xmax, v.C[0])
		o.Ymin = utl.Min(o.Ymin, v.C[1])
		o.Ymax = utl.Max(o.Ymax, v.C[1])
		o.Zmin = utl.Min(o.Zmin, v.C[2])
		o.Zmax = utl.Max(o.Zmax, v.C[2])
	}
	if o.Zmax-o.Zmin < Ztol {
		return chk.Err("mesh must be three-dimensional")
	}

	// cell related derived data
	o.CellTag2cells = make(map[int][]*Cell)
	for i, c := range o.Cells {

		// check id and tag
		if c.Id != i {
			return chk.Err("cells ids must coincide with order in \"cells\" list. %d != %d", c.Id, i)
		}
		if c.Tag >= 0 {
			return chk.Err("cells tags must be negative. %d is incorrect", c.Tag)
		}

		// check geometry
		nverts := shp.GetNverts(c.Type)
		if nverts < 0 {
			return chk.Err("cell %d has unavailable geometry type %q", c.Id, c.Type)
		}
		if len(c.Verts) != nverts {
			return chk.Err("cell %d of type %q must have %d vertices. %d is incorrect", c.Id, c.Type, nverts, len(c.Verts))
		}
		for _, v := range c.Verts {
			if v < 0 || v >= len(o.Verts) {
				return chk.Err("cell %d refers to non-existent vertex %d", c.Id, v)
			}
		}

		// tag => cells
		cells := o.CellTag2cells[c.Tag]
		o.CellTag2cells[c.Tag] = append(cells, c)
	}
	return
}

// Clone returns a deep copy of mesh
func (o *Mesh) Clone() (m *Mesh) {
	m = new(Mesh)
	m.FnamePath = o.FnamePath
	m.Verts = make([]*Vert, len(o.Verts))
	for i, v := range o.Verts {
		m.Verts[i] = &Vert{Id: v.Id, Tag: v.Tag, C: append([]float64(nil), v.C...)}
	}
	m.Cells = make([]*Cell, len(o.Cells))
	for i, c := range o.Cells {
		m.Cells[i] = &Cell{Id: c.Id, Tag: c.Tag, Type: c.Type, Verts: append([]int(nil), c.Verts...)}
	}
	err := m.Init()
	if err != nil {
		chk.Panic("cannot clone mesh:\n%v", err)
	}
	return
}

// NewCubeMesh generates a structured mesh of n×n×n hex8 cells over the cube [0,L]³
//  incl -- if n is odd and incl is true, the central cell gets tag -2; all other cells have tag -1
func NewCubeMesh(n int, L float64, incl bool) (o *Mesh) {
	if n < 1 {
		chk.Panic("number of divisions must be at least 1. n=%d is incorrect", n)
	}
	o = new(Mesh)
	h := L / float64(n)
	np := n + 1
	vid := func(i, j, k int) int { return i + j*np + k*np*np }
	for k := 0; k < np; k++ {
		for j := 0; j < np; j++ {
			for i := 0; i < np; i++ {
				x := []float64{float64(i) * h, float64(j) * h, float64(k) * h}
				o.Verts = append(o.Verts, &Vert{Id: vid(i, j, k), Tag: 0, C: x})
			}
		}
	}
	centre := n / 2
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				tag := -1
				if incl && n%2 == 1 && i == centre && j == centre && k == centre {
					tag = -2
				}
				verts := []int{
					vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k),
					vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j+1, k+1), vid(i, j+1, k+1),
				}
				o.Cells = append(o.Cells, &Cell{Id: len(o.Cells), Tag: tag, Type: "hex8", Verts: verts})
			}
		}
	}
	err := o.Init()
	if err != nil {
		chk.Panic("cannot generate cube mesh:\n%v", err)
	}
	return
}

// String returns a JSON representation of *Vert
func (o *Vert) String() string {
	l := io.Sf("{\"id\":%4d, \"tag\":%6d, \"c\":[", o.Id, o.Tag)
	for i, x := range o.C {
		if i > 0 {
			l += ", "
		}
		l += io.Sf("%23.15e", x)
	}
	l += "] }"
	return l
}

// String returns a JSON representation of *Cell
func (o *Cell) String() string {
	l := io.Sf("{\"id\":%d, \"tag\":%d, \"type\":%q, \"verts\":[", o.Id, o.Tag, o.Type)
	for i, x := range o.Verts {
		if i > 0 {
			l += ", "
		}
		l += io.Sf("%d", x)
	}
	l += "] }"
	return l
}

// String returns a JSON representation of *Mesh
func (o Mesh) String() string {
	l := "{\n  \"verts\" : [\n"
	for i, x := range o.Verts {
		if i > 0 {
			l += ",\n"
		}
		l += io.Sf("    %v", x)
	}
	l += "\n  ],\n  \"cells\" : [\n"
	for i, x := range o.Cells {
		if i > 0 {
			l += ",\n"
		}
		l += io.Sf("    %v", x)
	}
	l += "\n  ]\n}"
	return l
}
