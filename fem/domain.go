// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/msolid"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Solution holds the solution data @ nodes.
//
//        / u \
//  yb =  |   |
//        \ λ / (nyb x 1)
//
type Solution struct {
	T  float64   // pseudo-time within the current run: from 0 (committed bcs) to 1 (target bcs)
	Y  []float64 // DOFs (solution variables); i.e. y = u
	ΔY []float64 // total increment (for nonlinear solver)
	L  []float64 // Lagrange multipliers
}

// Domain holds all Nodes and Elements of a nested model in addition to the Solution at nodes
type Domain struct {

	// init: auxiliary variables
	Rve    *inp.Rve  // [from template] input data
	Msh    *inp.Mesh // mesh data
	LinSol LinSol    // linear solver
	Sum    *Summary  // summary of last run

	// nodes and elements
	Nodes    []*Node // nodes
	Elems    []Elem  // elements
	Vid2node []*Node // [nverts] VertexId => node

	// subsets of elements
	ElemIntvars  []ElemIntvars  // elements with internal vars
	ElemRetainer []ElemRetainer // elements keeping K at converged state

	// constraints
	EssenBcs EssentialBcs // constraints (Lagrange multipliers)

	// dimensions
	Ny   int // total number of dofs, except λ
	Nlam int // total number of Lagrange multipliers
	Nyb  int // total number of equations: ny + nλ

	// solution and linear solver
	Sol *Solution  // solution state
	Kb  *mat.Dense // Jacobian == dRdy
	Fb  []float64  // residual == -fb
	Wb  []float64  // workspace

	// for divergence control and failures
	bkpSol *Solution         // backup solution (step)
	iniSol *Solution         // backup solution (run)
	iniIvs [][]*msolid.State // backup internal variables (run)
}

// NewDomain allocates nodes, elements and equation numbers for a nested model.
// Constraints are added afterwards with EssenBcs; then Build must be called.
//  goroutineId -- use > 0 to allocate independent copies of shape structures
func NewDomain(rve *inp.Rve, goroutineId int) (o *Domain, err error) {

	// new domain
	o = new(Domain)
	o.Rve = rve
	o.Msh = rve.Mesh
	o.Sum = new(Summary)
	o.Vid2node = make([]*Node, len(o.Msh.Verts))

	// for each cell
	var eq int // current equation number => total number of equations @ end of loop
	for _, cell := range o.Msh.Cells {

		// new element
		ele, err := NewElemU(cell, rve, goroutineId)
		if err != nil {
			return nil, chk.Err("new element failed:\n%v", err)
		}

		// nodes and equation numbers
		eqs := make([][]int, len(cell.Verts))
		for j, v := range cell.Verts {
			nod := o.Vid2node[v]
			if nod == nil {
				nod = NewNode(o.Msh.Verts[v])
				o.Vid2node[v] = nod
				o.Nodes = append(o.Nodes, nod)
			}
			for _, ukey := range []string{"ux", "uy", "uz"} {
				eq = nod.AddDofAndEq(ukey, eq)
			}
			for _, dof := range nod.Dofs {
				eqs[j] = append(eqs[j], dof.Eq)
			}
		}
		err = ele.SetEqs(eqs)
		if err != nil {
			return nil, chk.Err("cannot set element equations:\n%v", err)
		}
		o.Elems = append(o.Elems, ele)
		o.add_element_to_subsets(ele)
	}
	o.Ny = eq

	// constraints
	o.EssenBcs.Init()
	return
}

// Build allocates the solution and linear system structures after all constraints are set and
// initialises internal variables
func (o *Domain) Build() (err error) {

	// size of arrays
	o.Nlam = o.EssenBcs.Build()
	o.Nyb = o.Ny + o.Nlam

	// solution
	o.Sol = new(Solution)
	o.Sol.Y = make([]float64, o.Ny)
	o.Sol.ΔY = make([]float64, o.Ny)
	o.Sol.L = make([]float64, o.Nlam)

	// linear system and linear solver
	o.Kb = mat.NewDense(o.Nyb, o.Nyb, nil)
	o.Fb = make([]float64, o.Nyb)
	o.Wb = make([]float64, o.Nyb)
	o.LinSol.Init(o.Kb, o.Fb, o.Wb)

	// internal variables
	for _, e := range o.ElemIntvars {
		err = e.SetIniIvs(o.Sol)
		if err != nil {
			return chk.Err("cannot set initial internal variables:\n%v", err)
		}
	}

	// stiffness at initial state
	return o.retain()
}

// Volume0 returns the reference volume of the nested model
func (o *Domain) Volume0() (V0 float64) {
	for _, e := range o.ElemIntvars {
		for _, dv := range e.IpVolumes() {
			V0 += dv
		}
	}
	return
}

// NodeX0 returns the reference coordinates of node; nil if vertex has no node
func (o *Domain) NodeX0(vid int) []float64 {
	if n := o.Vid2node[vid]; n != nil {
		return n.X0()
	}
	return nil
}

// NodeX returns the current coordinates of node; nil if vertex has no node
func (o *Domain) NodeX(vid int) []float64 {
	if n := o.Vid2node[vid]; n != nil {
		return n.X(o.Sol)
	}
	return nil
}

// NodeU returns the displacements of node; nil if vertex has no node
func (o *Domain) NodeU(vid int) (u []float64) {
	n := o.Vid2node[vid]
	if n == nil {
		return nil
	}
	u = make([]float64, len(n.Dofs))
	for i, dof := range n.Dofs {
		u[i] = o.Sol.Y[dof.Eq]
	}
	return
}

// Reactions returns the reaction forces at nodes with affine constraints: vertex id => f
func (o *Domain) Reactions() (res map[int][]float64) {
	res = make(map[int][]float64)
	for _, g := range o.EssenBcs.Affine {
		for vid, f := range g.Forces(o.Sol) {
			res[vid] = f
		}
	}
	return
}

// SlaveForces returns the forces on slave nodes of periodic constraints: vertex id => f
func (o *Domain) SlaveForces() (res map[int][]float64) {
	res = make(map[int][]float64)
	for _, g := range o.EssenBcs.Periodic {
		for vid, f := range g.SlaveForces(o.Sol) {
			res[vid] = f
		}
	}
	return
}

// RetainedK calls fcn for each element with the vertex ids and the stiffness matrix computed at
// the last converged state
func (o *Domain) RetainedK(fcn func(verts []int, K [][]float64) error) (err error) {
	for _, e := range o.ElemRetainer {
		K := e.RetainedK()
		if K == nil {
			return chk.Err("stiffness matrix has not been retained yet")
		}
		err = fcn(e.Verts(), K)
		if err != nil {
			return
		}
	}
	return
}

// EachIp calls fcn for each integration point of all elements with its state and reference volume
func (o *Domain) EachIp(fcn func(s *msolid.State, dV0 float64)) {
	for _, e := range o.ElemIntvars {
		dvs := e.IpVolumes()
		for idx, s := range e.Ivs() {
			fcn(s, dvs[idx])
		}
	}
}

// auxiliary functions //////////////////////////////////////////////////////////////////////////////

// add_element_to_subsets adds an Elem to many subsets as it fits
func (o *Domain) add_element_to_subsets(ele Elem) {
	if e, ok := ele.(ElemIntvars); ok {
		o.ElemIntvars = append(o.ElemIntvars, e)
	}
	if e, ok := ele.(ElemRetainer); ok {
		o.ElemRetainer = append(o.ElemRetainer, e)
	}
}

// retain computes and keeps the element stiffness matrices at the current state
func (o *Domain) retain() (err error) {
	for _, e := range o.ElemRetainer {
		err = e.RetainK(o.Sol)
		if err != nil {
			return
		}
	}
	return
}

// backup saves a copy of solution (step level)
func (o *Domain) backup() {
	if o.bkpSol == nil {
		o.bkpSol = o.newSolution()
	}
	o.bkpSol.copyFrom(o.Sol)
	for _, e := range o.ElemIntvars {
		e.BackupIvs(true)
	}
}

// restore restores solution (step level)
func (o *Domain) restore() {
	o.Sol.copyFrom(o.bkpSol)
	for _, e := range o.ElemIntvars {
		e.RestoreIvs(true)
	}
}

// save saves a copy of solution and internal variables (run level)
func (o *Domain) save() {
	if o.iniSol == nil {
		o.iniSol = o.newSolution()
		o.iniIvs = make([][]*msolid.State, len(o.ElemIntvars))
		for i, e := range o.ElemIntvars {
			for _, s := range e.Ivs() {
				o.iniIvs[i] = append(o.iniIvs[i], s.GetCopy())
			}
		}
	}
	o.iniSol.copyFrom(o.Sol)
	for i, e := range o.ElemIntvars {
		for j, s := range e.Ivs() {
			o.iniIvs[i][j].Set(s)
		}
	}
}

// load restores solution and internal variables (run level)
func (o *Domain) load() {
	o.Sol.copyFrom(o.iniSol)
	for i, e := range o.ElemIntvars {
		for j, s := range e.Ivs() {
			s.Set(o.iniIvs[i][j])
		}
	}
}

// newSolution allocates a solution with the sizes of this domain
func (o *Domain) newSolution() *Solution {
	return &Solution{
		Y:  make([]float64, o.Ny),
		ΔY: make([]float64, o.Ny),
		L:  make([]float64, o.Nlam),
	}
}

// copyFrom copies values from another solution
func (o *Solution) copyFrom(other *Solution) {
	o.T = other.T
	copy(o.Y, other.Y)
	copy(o.ΔY, other.ΔY)
	copy(o.L, other.L)
}
