// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/paddyschmidt/gofe2/inp"

// Dof holds information about a degree-of-freedom == solution variable
type Dof struct {
	Key string // primary variable key. e.g. "ux"
	Eq  int    // equation number
}

// Node holds node dofs information
type Node struct {
	Dofs []*Dof    // degrees-of-freedom == solution variables
	Vert *inp.Vert // pointer to Vertex
}

// NewNode allocates a new Node
func NewNode(v *inp.Vert) *Node {
	return &Node{Vert: v}
}

// AddDofAndEq adds a new dof to node and returns the next equation number
func (o *Node) AddDofAndEq(ukey string, eqnum int) (nexteq int) {
	for _, dof := range o.Dofs {
		if dof.Key == ukey {
			return eqnum
		}
	}
	o.Dofs = append(o.Dofs, &Dof{ukey, eqnum})
	return eqnum + 1
}

// GetDof returns the Dof structure for given Dof name (ukey)
//  Note: returns nil if not found
func (o *Node) GetDof(ukey string) *Dof {
	for _, dof := range o.Dofs {
		if dof.Key == ukey {
			return dof
		}
	}
	return nil
}

// GetEq returns the equation number for given Dof name (ukey)
//  Note: returns -1 if not found
func (o *Node) GetEq(ukey string) (eq int) {
	for _, dof := range o.Dofs {
		if dof.Key == ukey {
			return dof.Eq
		}
	}
	return -1
}

// X0 returns the reference coordinates of node
func (o *Node) X0() []float64 {
	return o.Vert.C
}

// X returns the current coordinates of node
func (o *Node) X(sol *Solution) (x []float64) {
	x = make([]float64, len(o.Vert.C))
	for i, c := range o.Vert.C {
		x[i] = c + sol.Y[o.Dofs[i].Eq]
	}
	return
}
