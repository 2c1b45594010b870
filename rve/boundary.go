// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"math"
	"sort"

	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/shp"

	"github.com/cpmech/gosl/io"
)

// BoundaryNodeSet holds the ids of vertices on the exterior surface of the RVE
type BoundaryNodeSet struct {
	Ids   []int        // sorted vertex ids
	isbry map[int]bool // vertex id => is on boundary
}

// FindBoundary returns the set of vertices on faces that belong to exactly one cell
func FindBoundary(msh *inp.Mesh) (o *BoundaryNodeSet) {

	// count faces
	type face struct {
		verts []int
		count int
	}
	faces := make(map[string]*face)
	var keys []string
	for _, cell := range msh.Cells {
		for idxface := 0; ; idxface++ {
			lverts := shp.GetFaceLocalVerts(cell.Type, idxface)
			if lverts == nil {
				break
			}
			verts := make([]int, len(lverts))
			for i, l := range lverts {
				verts[i] = cell.Verts[l]
			}
			sorted := append([]int(nil), verts...)
			sort.Ints(sorted)
			key := io.Sf("%v", sorted)
			if f, ok := faces[key]; ok {
				f.count++
				continue
			}
			faces[key] = &face{verts, 1}
			keys = append(keys, key)
		}
	}

	// vertices on exterior faces
	o = &BoundaryNodeSet{isbry: make(map[int]bool)}
	for _, key := range keys {
		f := faces[key]
		if f.count != 1 {
			continue
		}
		for _, v := range f.verts {
			if !o.isbry[v] {
				o.isbry[v] = true
				o.Ids = append(o.Ids, v)
			}
		}
	}
	sort.Ints(o.Ids)
	return
}

// Has tells whether vertex vid is on the boundary
func (o *BoundaryNodeSet) Has(vid int) bool { return o.isbry[vid] }

// Len returns the number of boundary vertices
func (o *BoundaryNodeSet) Len() int { return len(o.Ids) }

// Copy returns an independent copy of this set
func (o *BoundaryNodeSet) Copy() *BoundaryNodeSet {
	p := &BoundaryNodeSet{Ids: append([]int(nil), o.Ids...), isbry: make(map[int]bool, len(o.Ids))}
	for _, v := range p.Ids {
		p.isbry[v] = true
	}
	return p
}

// box holds the bounding box of the RVE
type box struct {
	min, max []float64
	tol      float64
}

func newBox(msh *inp.Mesh, tol float64) *box {
	return &box{
		min: []float64{msh.Xmin, msh.Ymin, msh.Zmin},
		max: []float64{msh.Xmax, msh.Ymax, msh.Zmax},
		tol: tol,
	}
}

// faces returns which bounding faces contain X: -1 => min face, +1 => max face, 0 => none
func (o *box) faces(X []float64) (side []int, n int) {
	side = make([]int, 3)
	for i := 0; i < 3; i++ {
		switch {
		case math.Abs(X[i]-o.min[i]) < o.tol:
			side[i] = -1
			n++
		case math.Abs(X[i]-o.max[i]) < o.tol:
			side[i] = +1
			n++
		}
	}
	return
}
