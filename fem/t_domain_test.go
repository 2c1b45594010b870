// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/msolid"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// testRve returns an RVE with n×n×n cells over the unit cube
func testRve(tst *testing.T, n int, model string, nmaxit, nsteps int, dvgctrl bool) *inp.Rve {
	msh := inp.NewCubeMesh(n, 1, false)
	b := []byte(io.Sf(`{
  "desc" : "unit cube",
  "mesh" : %v,
  "mats" : [ { "name":"m", "model":%q, "prms":[ {"n":"E", "v":1000}, {"n":"nu", "v":0.3} ] } ],
  "elemsdata" : [ { "tag":-1, "mat":"m" } ],
  "solver" : { "nmaxit":%d, "nsteps":%d, "dvgctrl":%v }
}`, msh, model, nmaxit, nsteps, dvgctrl))
	rve, err := inp.ParseRve(b, ".")
	if err != nil {
		tst.Fatalf("cannot parse RVE:\n%v", err)
	}
	return rve
}

// onBoundary tells whether x is on the surface of the unit cube
func onBoundary(x []float64) bool {
	for _, c := range x {
		if math.Abs(c) < 1e-10 || math.Abs(c-1) < 1e-10 {
			return true
		}
	}
	return false
}

// newAffineDomain returns a built domain with affine constraints on all boundary nodes
func newAffineDomain(tst *testing.T, rve *inp.Rve) (d *Domain, g *AffineBc) {
	d, err := NewDomain(rve, 0)
	if err != nil {
		tst.Fatalf("NewDomain failed:\n%v", err)
	}
	var nodes []*Node
	for _, nod := range d.Nodes {
		if onBoundary(nod.X0()) {
			nodes = append(nodes, nod)
		}
	}
	g, err = d.EssenBcs.AddAffine(nodes)
	if err != nil {
		tst.Fatalf("AddAffine failed:\n%v", err)
	}
	err = d.Build()
	if err != nil {
		tst.Fatalf("Build failed:\n%v", err)
	}
	return
}

// checkAffine checks that all nodes are displaced with u = (F - I)・X
func checkAffine(tst *testing.T, d *Domain, F [][]float64, tol float64) {
	for _, nod := range d.Nodes {
		X := nod.X0()
		ucor := make([]float64, 3)
		for i := 0; i < 3; i++ {
			ucor[i] = affine(F, X, i)
		}
		chk.Vector(tst, io.Sf("u%d", nod.Vert.Id), tol, d.NodeU(nod.Vert.Id), ucor)
	}
}

func Test_domain01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain01. single cell. affine constraints on all nodes")

	rve := testRve(tst, 1, "neo-hooke", 20, 2, false)
	d, g := newAffineDomain(tst, rve)
	chk.IntAssert(len(d.Nodes), 8)
	chk.IntAssert(d.Ny, 24)
	chk.IntAssert(d.Nlam, 24)
	chk.IntAssert(d.Nyb, 48)
	chk.Scalar(tst, "V0", 1e-15, d.Volume0(), 1)

	// apply deformation
	F := [][]float64{
		{1.05, 0.02, 0},
		{0, 0.98, 0},
		{0, 0.01, 1},
	}
	g.SetF(F)
	err := d.Run(nil)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	io.Pforan("summary: %v\n", d.Sum)
	chk.Scalar(tst, "T", 1e-17, d.Sol.T, 1)
	chk.IntAssert(d.Sum.Nruns, 1)
	chk.IntAssert(d.Sum.Nsteps, 2)
	checkAffine(tst, d, F, 1e-13)

	// stresses are uniform and given by the model
	mdl, ldm, err := GetAndInitSolidModel(rve, "m", 3)
	if err != nil {
		tst.Errorf("GetAndInitSolidModel failed:\n%v", err)
		return
	}
	s, _ := mdl.InitIntVars(make([]float64, 6))
	err = ldm.Update(s, F, nil)
	if err != nil {
		tst.Errorf("Update failed:\n%v", err)
		return
	}
	d.EachIp(func(sip *msolid.State, dV0 float64) {
		chk.Matrix(tst, "F @ ip", 1e-13, sip.F, F)
		chk.Matrix(tst, "P @ ip", 1e-9, sip.P, s.P)
	})

	// reactions are in equilibrium and Σ f⊗X / V0 = P
	R := d.Reactions()
	chk.IntAssert(len(R), 8)
	sum := make([]float64, 3)
	Pavg := la.MatAlloc(3, 3)
	for vid, f := range R {
		X := d.NodeX0(vid)
		for i := 0; i < 3; i++ {
			sum[i] += f[i]
			for j := 0; j < 3; j++ {
				Pavg[i][j] += f[i] * X[j]
			}
		}
	}
	chk.Vector(tst, "Σf", 1e-9, sum, nil)
	chk.Matrix(tst, "Pavg", 1e-9, Pavg, s.P)
}

func Test_domain02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain02. 2x2x2 cells. interior node follows affine field")

	rve := testRve(tst, 2, "neo-hooke", 20, 1, false)
	d, g := newAffineDomain(tst, rve)
	chk.IntAssert(len(d.Nodes), 27)
	chk.IntAssert(d.Nlam, 26*3)

	F := [][]float64{
		{1.1, 0, 0},
		{0, 0.95, 0.03},
		{0, 0, 0.97},
	}
	g.SetF(F)
	err := d.Run(nil)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	checkAffine(tst, d, F, 1e-10)

	// second run from committed state
	F[0][0] = 1.15
	g.SetF(F)
	err = d.Run(nil)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	checkAffine(tst, d, F, 1e-10)
	chk.IntAssert(d.Sum.Nruns, 2)
	for _, bc := range d.EssenBcs.Bcs {
		chk.Scalar(tst, "C0-C1", 1e-17, bc.C0-bc.C1, 0)
	}
}

func Test_domain03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain03. periodic constraints on 2x2x2 cells")

	rve := testRve(tst, 2, "neo-hooke", 20, 1, false)
	d, err := NewDomain(rve, 0)
	if err != nil {
		tst.Errorf("NewDomain failed:\n%v", err)
		return
	}

	// count faces touched by node
	nfaces := func(X []float64) (n int) {
		for _, c := range X {
			if math.Abs(c) < 1e-10 || math.Abs(c-1) < 1e-10 {
				n++
			}
		}
		return
	}

	// edges and corners are affine
	var corners []*Node
	for _, nod := range d.Nodes {
		if nfaces(nod.X0()) > 1 {
			corners = append(corners, nod)
		}
	}
	chk.IntAssert(len(corners), 20)
	ga, err := d.EssenBcs.AddAffine(corners)
	if err != nil {
		tst.Errorf("AddAffine failed:\n%v", err)
		return
	}

	// face centres are periodic
	var groups []*PeriodicBc
	for axis := 0; axis < 3; axis++ {
		var slaves, masters []*Node
		for _, s := range d.Nodes {
			Xs := s.X0()
			if nfaces(Xs) != 1 || math.Abs(Xs[axis]-1) > 1e-10 {
				continue
			}
			for _, m := range d.Nodes {
				Xm := m.X0()
				if math.Abs(Xm[axis]) > 1e-10 {
					continue
				}
				match := true
				for j := 0; j < 3; j++ {
					if j != axis && math.Abs(Xm[j]-Xs[j]) > 1e-10 {
						match = false
					}
				}
				if match {
					slaves = append(slaves, s)
					masters = append(masters, m)
				}
			}
		}
		chk.IntAssert(len(slaves), 1)
		gp, err := d.EssenBcs.AddPeriodic(axis, slaves, masters)
		if err != nil {
			tst.Errorf("AddPeriodic failed:\n%v", err)
			return
		}
		groups = append(groups, gp)
	}
	err = d.Build()
	if err != nil {
		tst.Errorf("Build failed:\n%v", err)
		return
	}
	chk.IntAssert(d.Nlam, (20+3)*3)

	// homogeneous material => affine field
	F := [][]float64{
		{1.02, 0.05, 0},
		{0, 1, 0},
		{0.01, 0, 0.99},
	}
	ga.SetF(F)
	for _, gp := range groups {
		gp.SetF(F)
	}
	err = d.Run(nil)
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	checkAffine(tst, d, F, 1e-10)
	chk.IntAssert(len(d.SlaveForces()), 3)
}

func Test_domain04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain04. encode and decode converged state")

	for _, enctype := range []string{"gob", "json"} {

		rve := testRve(tst, 2, "neo-hooke", 20, 1, false)
		rve.EncType = enctype
		d, g := newAffineDomain(tst, rve)
		F := [][]float64{
			{1.04, 0.01, 0},
			{0, 1, 0},
			{0, 0, 1.02},
		}
		g.SetF(F)
		err := d.Run(nil)
		if err != nil {
			tst.Errorf("Run failed:\n%v", err)
			return
		}
		b, err := d.EncodeBytes()
		if err != nil {
			tst.Errorf("EncodeBytes failed:\n%v", err)
			return
		}

		// restore into a fresh domain
		e, _ := newAffineDomain(tst, rve)
		err = e.DecodeBytes(b)
		if err != nil {
			tst.Errorf("DecodeBytes failed:\n%v", err)
			return
		}
		chk.Vector(tst, enctype+": Y", 1e-15, e.Sol.Y, d.Sol.Y)
		chk.Vector(tst, enctype+": L", 1e-15, e.Sol.L, d.Sol.L)
		chk.Matrix(tst, enctype+": Fmacro", 1e-15, e.EssenBcs.Affine[0].Fmacro, F)
		for i, bc := range e.EssenBcs.Bcs {
			chk.Scalar(tst, "C0", 1e-15, bc.C0, d.EssenBcs.Bcs[i].C0)
		}
		for i, ele := range e.ElemIntvars {
			for j, s := range ele.Ivs() {
				chk.Matrix(tst, "P", 1e-15, s.P, d.ElemIntvars[i].Ivs()[j].P)
			}
		}

		// mismatched snapshot
		r1 := testRve(tst, 1, "neo-hooke", 20, 1, false)
		r1.EncType = enctype
		f, _ := newAffineDomain(tst, r1)
		err = f.DecodeBytes(b)
		if err == nil {
			tst.Errorf("DecodeBytes should have failed")
			return
		}
		io.Pforan("%v\n", err)
	}
}

func Test_domain05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain05. retained stiffness")

	rve := testRve(tst, 1, "lin-elast", 20, 1, false)
	d, _ := newAffineDomain(tst, rve)

	// rigid translations produce no forces; K is symmetric
	err := d.RetainedK(func(verts []int, K [][]float64) error {
		chk.IntAssert(len(verts), 8)
		nu := len(K)
		for r := 0; r < nu; r++ {
			for k := 0; k < 3; k++ {
				sum := 0.0
				for n := 0; n < 8; n++ {
					sum += K[r][k+n*3]
				}
				chk.Scalar(tst, "K・1", 1e-10, sum, 0)
			}
			for c := 0; c < nu; c++ {
				chk.Scalar(tst, "K-Kᵀ", 1e-10, K[r][c]-K[c][r], 0)
			}
		}
		return nil
	})
	if err != nil {
		tst.Errorf("RetainedK failed:\n%v", err)
	}
}

func Test_domain06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("domain06. failed run restores previous state")

	rve := testRve(tst, 1, "neo-hooke", 1, 1, false)
	d, g := newAffineDomain(tst, rve)
	F := [][]float64{
		{1.3, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	g.SetF(F)
	err := d.Run(nil)
	if err == nil {
		tst.Errorf("Run should have failed")
		return
	}
	io.Pforan("%v\n", err)
	chk.Vector(tst, "Y", 1e-17, d.Sol.Y, nil)
	chk.Vector(tst, "L", 1e-17, d.Sol.L, nil)
	for _, bc := range d.EssenBcs.Bcs {
		chk.Scalar(tst, "C0", 1e-17, bc.C0, 0)
	}
	d.EachIp(func(s *msolid.State, dV0 float64) {
		chk.Matrix(tst, "F", 1e-17, s.F, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	})
}

func Test_essenbcs01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("essenbcs01. constraints")

	rve := testRve(tst, 1, "lin-elast", 20, 1, false)
	d, err := NewDomain(rve, 0)
	if err != nil {
		tst.Errorf("NewDomain failed:\n%v", err)
		return
	}
	_, err = d.EssenBcs.AddAffine(d.Nodes[:2])
	if err != nil {
		tst.Errorf("AddAffine failed:\n%v", err)
		return
	}
	_, err = d.EssenBcs.AddAffine(d.Nodes[1:3])
	if err == nil {
		tst.Errorf("constraining node twice should have failed")
		return
	}
	_, err = d.EssenBcs.AddPeriodic(0, d.Nodes[2:4], d.Nodes[4:5])
	if err == nil {
		tst.Errorf("AddPeriodic with different number of slaves and masters should have failed")
		return
	}

	// ramp of values
	bc := &EssentialBc{C0: 1, C1: 3}
	chk.Scalar(tst, "c(0)", 1e-17, bc.Value(0), 1)
	chk.Scalar(tst, "c(0.5)", 1e-17, bc.Value(0.5), 2)
	chk.Scalar(tst, "c(1)", 1e-17, bc.Value(1), 3)
	io.Pforan("%v\n", d.EssenBcs.List(0.5))
}
