// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// EssentialBc holds information about essential bounday conditions such as constrained nodes.
// Lagrange multipliers are used to implement both single- and multi-point constraints.
//  In general, essential bcs / constraints are defined by means of:
//
//      A・y = c
//
//  The resulting Kb matrix will then have the following form:
//      _       _
//     |  K  At  | / δy \   / -R - At*λ \
//     |         | |    | = |           |
//     |_ A   0 _| \ δλ /   \  c - A*y  /
//         Kb       δyb          fb
//
//  The value c is ramped in pseudo-time t ∈ [0,1] from C0 (committed) to C1 (target):
//      c(t) = C0 + t・(C1 - C0)
//
type EssentialBc struct {
	Key   string    // key such as 'ux', 'uy', 'uz' or 'pbc'
	Eqs   []int     // equations numbers
	ValsA []float64 // values for matrix A
	C0    float64   // committed value of c
	C1    float64   // target value of c
	Idx   int       // index of Lagrange multiplier
}

// Value returns c at pseudo-time t
func (o *EssentialBc) Value(t float64) float64 {
	return o.C0 + t*(o.C1-o.C0)
}

// AffineBc prescribes u = (F - I)・X0 at a set of nodes
type AffineBc struct {
	Nodes  []*Node        // prescribed nodes
	Fmacro [][]float64    // macroscopic deformation gradient
	rows   []*EssentialBc // [nnodes*3] constraints
}

// PeriodicBc constrains pairs of nodes on opposite faces such that
//  u_slave - u_master = (F - I)・(X0_slave - X0_master)
type PeriodicBc struct {
	Axis    int            // normal direction of the pair of faces: 0, 1 or 2
	Slaves  []*Node        // nodes on the positive face
	Masters []*Node        // matching nodes on the negative face
	Fmacro  [][]float64    // macroscopic deformation gradient
	rows    []*EssentialBc // [npairs*3] constraints
}

// EssentialBcs implements a structure to record the definition of essential bcs / constraints.
// Each constraint will have a unique Lagrange multiplier index.
type EssentialBcs struct {
	Bcs      []*EssentialBc // active essential bcs / constraints
	Affine   []*AffineBc    // groups of affine constraints
	Periodic []*PeriodicBc  // groups of periodic constraints
	used     map[int]bool   // equations already constrained
}

// Init initialises this structure
func (o *EssentialBcs) Init() {
	o.Bcs = make([]*EssentialBc, 0)
	o.Affine = make([]*AffineBc, 0)
	o.Periodic = make([]*PeriodicBc, 0)
	o.used = make(map[int]bool)
}

// Build returns the number of Lagrange multipliers
func (o *EssentialBcs) Build() (nλ int) {
	for i, bc := range o.Bcs {
		bc.Idx = i
	}
	return len(o.Bcs)
}

// AddAffine adds a group of affine constraints; one per Dof of each node
func (o *EssentialBcs) AddAffine(nodes []*Node) (g *AffineBc, err error) {
	g = &AffineBc{Nodes: nodes, Fmacro: identity()}
	for _, nod := range nodes {
		for _, key := range []string{"ux", "uy", "uz"} {
			eq := nod.GetEq(key)
			if eq < 0 {
				return nil, chk.Err("node %d does not have %q", nod.Vert.Id, key)
			}
			bc, err := o.set_eqs(key, []int{eq}, []float64{1})
			if err != nil {
				return nil, err
			}
			g.rows = append(g.rows, bc)
		}
	}
	o.Affine = append(o.Affine, g)
	return
}

// AddPeriodic adds a group of periodic constraints; one per Dof of each pair of nodes
func (o *EssentialBcs) AddPeriodic(axis int, slaves, masters []*Node) (g *PeriodicBc, err error) {
	if len(slaves) != len(masters) {
		return nil, chk.Err("number of slaves and masters must be equal. %d != %d", len(slaves), len(masters))
	}
	g = &PeriodicBc{Axis: axis, Slaves: slaves, Masters: masters, Fmacro: identity()}
	for k, s := range slaves {
		m := masters[k]
		for _, key := range []string{"ux", "uy", "uz"} {
			eqs, eqm := s.GetEq(key), m.GetEq(key)
			if eqs < 0 || eqm < 0 {
				return nil, chk.Err("nodes %d and %d must have %q", s.Vert.Id, m.Vert.Id, key)
			}
			bc, err := o.set_eqs("pbc", []int{eqs, eqm}, []float64{1, -1})
			if err != nil {
				return nil, err
			}
			g.rows = append(g.rows, bc)
		}
	}
	o.Periodic = append(o.Periodic, g)
	return
}

// AddToRhs adds the essential bcs / constraints terms to the augmented fb vector
func (o *EssentialBcs) AddToRhs(fb []float64, sol *Solution, t float64) {
	ny := len(sol.Y)
	for i, bc := range o.Bcs {
		λ := sol.L[i]
		fb[ny+i] = bc.Value(t)
		for j, eq := range bc.Eqs {
			fb[eq] -= bc.ValsA[j] * λ           // fb -= At * λ
			fb[ny+i] -= bc.ValsA[j] * sol.Y[eq] // fb -= A * y
		}
	}
}

// AddToKb puts A and tr(A) into Kb
func (o *EssentialBcs) AddToKb(Kb *mat.Dense, ny int) {
	for i, bc := range o.Bcs {
		for j, eq := range bc.Eqs {
			Kb.Set(ny+i, eq, bc.ValsA[j])
			Kb.Set(eq, ny+i, bc.ValsA[j])
		}
	}
}

// Commit sets the committed values equal to the targets; i.e. after a converged solution
func (o *EssentialBcs) Commit() {
	for _, bc := range o.Bcs {
		bc.C0 = bc.C1
	}
}

// List returns a simple list logging bcs at pseudo-time t
func (o *EssentialBcs) List(t float64) (l string) {
	l = "\n==================================================================\n"
	l += io.Sf("%8s%8s%25s%25s\n", "eq", "key", "committed", io.Sf("value @ t=%g", t))
	l += "------------------------------------------------------------------\n"
	for _, bc := range o.Bcs {
		l += io.Sf("%8d%8s%25.13f%25.13f\n", bc.Eqs[0], bc.Key, bc.C0, bc.Value(t))
	}
	l += "==================================================================\n"
	return
}

// SetF sets the target values of constraints for a new macroscopic deformation gradient
func (o *AffineBc) SetF(F [][]float64) {
	la.MatCopy(o.Fmacro, 1, F)
	for k, nod := range o.Nodes {
		X := nod.X0()
		for i := 0; i < 3; i++ {
			o.rows[i+k*3].C1 = affine(F, X, i)
		}
	}
}

// Forces returns the reaction forces at prescribed nodes: vertex id => f
//  Note: f = -λ
func (o *AffineBc) Forces(sol *Solution) (res map[int][]float64) {
	res = make(map[int][]float64)
	for k, nod := range o.Nodes {
		f := make([]float64, 3)
		for i := 0; i < 3; i++ {
			f[i] = -sol.L[o.rows[i+k*3].Idx]
		}
		res[nod.Vert.Id] = f
	}
	return
}

// SetF sets the target values of constraints for a new macroscopic deformation gradient
func (o *PeriodicBc) SetF(F [][]float64) {
	la.MatCopy(o.Fmacro, 1, F)
	ΔX := make([]float64, 3)
	for k, s := range o.Slaves {
		Xs, Xm := s.X0(), o.Masters[k].X0()
		for j := 0; j < 3; j++ {
			ΔX[j] = Xs[j] - Xm[j]
		}
		for i := 0; i < 3; i++ {
			o.rows[i+k*3].C1 = affine(F, ΔX, i)
		}
	}
}

// SlaveForces returns the constraint forces on slave nodes: vertex id => f
//  Note: f = -λ; the force on the master node is -f
func (o *PeriodicBc) SlaveForces(sol *Solution) (res map[int][]float64) {
	res = make(map[int][]float64)
	for k, s := range o.Slaves {
		f := make([]float64, 3)
		for i := 0; i < 3; i++ {
			f[i] = -sol.L[o.rows[i+k*3].Idx]
		}
		res[s.Vert.Id] = f
	}
	return
}

// auxiliary /////////////////////////////////////////////////////////////////////////////////////////

// set_eqs adds a new constraint
//  Note: the first equation (prescribed or slave) cannot be constrained twice
func (o *EssentialBcs) set_eqs(key string, eqs []int, valsA []float64) (bc *EssentialBc, err error) {
	if o.used[eqs[0]] {
		return nil, chk.Err("equation %d is already constrained", eqs[0])
	}
	o.used[eqs[0]] = true
	bc = &EssentialBc{Key: key, Eqs: eqs, ValsA: valsA, Idx: len(o.Bcs)}
	o.Bcs = append(o.Bcs, bc)
	return
}

// affine returns the i-th component of (F - I)・X
func affine(F [][]float64, X []float64, i int) (res float64) {
	for j := 0; j < 3; j++ {
		res += F[i][j] * X[j]
	}
	return res - X[i]
}

// identity returns a new 3x3 identity matrix
func identity() (I [][]float64) {
	I = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		I[i][i] = 1
	}
	return
}
