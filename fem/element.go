// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/msolid"

	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// Elem defines what elements must calculate
type Elem interface {

	// information and initialisation
	Id() int                        // returns the cell Id
	SetEqs(eqs [][]int) (err error) // set equations

	// called for each iteration
	AddToRhs(fb []float64, sol *Solution) (err error)               // adds -R to global residual vector fb
	AddToKb(Kb *mat.Dense, sol *Solution, firstIt bool) (err error) // adds element K to global Jacobian matrix Kb
	Update(sol *Solution) (err error)                               // perform (tangent) update

	// reading and writing of element data
	Encode(enc Encoder) (err error) // encodes internal variables
	Decode(dec Decoder) (err error) // decodes internal variables
}

// ElemIntvars defines elements with internal variables
type ElemIntvars interface {
	SetIniIvs(sol *Solution) (err error) // sets initial ivs
	BackupIvs(aux bool) (err error)      // create copy of internal variables
	RestoreIvs(aux bool) (err error)     // restore internal variables from copies
	Ivs() []*msolid.State                // returns the current internal variables [nip]
	IpVolumes() []float64                // returns the reference volume associated with each ip [nip]
}

// ElemRetainer defines elements that keep the stiffness matrix computed at the last converged state
type ElemRetainer interface {
	Verts() []int                      // returns the vertex ids of element
	RetainK(sol *Solution) (err error) // computes and keeps K at the current state
	RetainedK() [][]float64            // returns the retained K [nu][nu]; nil if not computed yet
}

// BuildCoordsMatrix returns the coordinate matrix of a particular Cell
func BuildCoordsMatrix(cell *inp.Cell, msh *inp.Mesh) (x [][]float64) {
	x = la.MatAlloc(msh.Ndim, len(cell.Verts))
	for i := 0; i < msh.Ndim; i++ {
		for j, v := range cell.Verts {
			x[i][j] = msh.Verts[v].C[i]
		}
	}
	return
}
