// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"bytes"
	"context"
	"errors"
	goio "io"
	"strings"
	"testing"

	"github.com/paddyschmidt/gofe2/ana"
	"github.com/paddyschmidt/gofe2/fem"
	"github.com/paddyschmidt/gofe2/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// bufCloser is an in-memory output
type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (o *bufCloser) Close() error {
	o.closed = true
	return nil
}

// uniaxial returns a path with stretch 1 + s t along x
func uniaxial(s float64) PathFunc {
	return func(idx int, t float64) [][]float64 {
		F := identity()
		F[0][0] += s * t
		return F
	}
}

// newMaterials returns n materials of a homogeneous neo-hooke cube
func newMaterials(tst *testing.T, tpl *Template, n int) (mats []*Material) {
	for i := 0; i < n; i++ {
		m, err := NewMaterial(tpl, i, 0, nil, 1e-6)
		if err != nil {
			tst.Fatalf("NewMaterial failed:\n%v", err)
		}
		mats = append(mats, m)
	}
	return
}

func Test_driver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver01. uniaxial path")

	var sol ana.NeoHooke
	sol.Init(matrixPrms)

	tpl := testTemplate(tst, 2, false, "neo-hooke", "", nil)
	drv := &Driver{Mats: newMaterials(tst, tpl, 3), Workers: 2, Nincs: 4, MaxCuts: 2}

	// probe on the second point
	out := new(bufCloser)
	drv.Mats[1].Probe = NewProbe(inp.ProbeConfig{Eid: 1, Ip: 0}, "", nil)
	drv.Mats[1].Probe.Open = func(path string) (goio.WriteCloser, error) { return out, nil }

	path := uniaxial(0.1)
	var ts []float64
	err := drv.Run(context.Background(), path, func(inc int, t float64, σ [][][]float64) error {
		ts = append(ts, t)
		for i := range σ {
			chk.Matrix(tst, io.Sf("σ%d @ t=%g", i, t), 1e-8, σ[i], sol.Stress(path(i, t)))
		}
		return nil
	})
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	chk.Vector(tst, "t", 1e-15, ts, []float64{0.25, 0.5, 0.75, 1})
	chk.IntAssert(drv.Ncuts, 0)

	// committed state
	for _, m := range drv.Mats {
		chk.Matrix(tst, "Fprev", 1e-15, m.Pt.Fprev, path(0, 1))
	}

	// tangents of last state
	Fs := [][][]float64{path(0, 1), path(1, 1), path(2, 1)}
	cs, err := drv.Tangents(Fs)
	if err != nil {
		tst.Errorf("Tangents failed:\n%v", err)
		return
	}
	chk.IntAssert(len(cs), 3)

	// probe: init + 4 increments
	chk.IntAssert(drv.Mats[1].Probe.Nsnapshots(), 5)
	if !out.closed {
		tst.Errorf("probe output must be closed at the end")
	}
	txt := out.String()
	io.Pforan("%s\n", txt)
	chk.IntAssert(strings.Count(txt, "# snapshot"), 5)
	chk.IntAssert(strings.Count(txt, "event MAJOR"), 4)
	if drv.Mats[0].Probe != nil {
		tst.Errorf("only one probe is expected")
	}
}

func Test_driver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver02. cutbacks")

	var buf bytes.Buffer
	diag := NewDiag(&buf, "")
	tpl := testTemplate(tst, 1, false, "neo-hooke", "", diag)
	drv := &Driver{Mats: newMaterials(tst, tpl, 2), Nincs: 8, MaxCuts: 3, Diag: diag}

	// det(F) reaches zero at t = 0.5
	ninc := 0
	err := drv.Run(context.Background(), uniaxial(-2), func(inc int, t float64, σ [][][]float64) error {
		ninc++
		return nil
	})
	if err == nil {
		tst.Errorf("Run should have failed")
		return
	}
	io.Pforan("%v\n", err)
	io.Pforan("%s\n", buf.String())
	chk.IntAssert(drv.Ncuts, 3)
	chk.IntAssert(diag.Nwarnings(), 3)
	if ninc < 1 {
		tst.Errorf("at least the first increment must have been committed")
	}

	// errors other than convergence failures stop immediately
	drv = &Driver{Mats: newMaterials(tst, tpl, 1), Nincs: 1, MaxCuts: 3}
	_, err = drv.Stress(context.Background(), [][][]float64{identity(), identity()})
	if err == nil {
		tst.Errorf("Stress with wrong number of deformation gradients should have failed")
	}
	myerr := errors.New("stop")
	err = drv.Run(context.Background(), uniaxial(0.01), func(inc int, t float64, σ [][][]float64) error {
		return myerr
	})
	if !errors.Is(err, myerr) {
		tst.Errorf("callback error expected. got %v", err)
	}
	chk.IntAssert(drv.Ncuts, 0)
}

func Test_driver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver03. convergence error")

	tpl := testTemplate(tst, 1, false, "neo-hooke", "", nil)
	m := newMaterials(tst, tpl, 1)[0]
	m.Eid = 7
	m.Ip = 2
	F := identity()
	F[2][2] = -1
	_, err := m.Stress(F)
	var mce *MultiscaleConvergenceError
	if !errors.As(err, &mce) {
		tst.Errorf("MultiscaleConvergenceError expected. got %v", err)
		return
	}
	io.Pforan("%v\n", err)
	chk.IntAssert(mce.Eid, 7)
	chk.IntAssert(mce.Ip, 2)
}

// hookWriter calls fcn on every write
type hookWriter struct{ fcn func() }

func (o *hookWriter) Write(p []byte) (int, error) {
	if o.fcn != nil {
		o.fcn()
	}
	return len(p), nil
}

func Test_driver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver04. nested solver failures")

	var sol ana.NeoHooke
	sol.Init(matrixPrms)

	// one iteration is not enough for the nested problem
	var buf bytes.Buffer
	diag := NewDiag(&buf, "")
	tpl := testTemplate(tst, 2, false, "neo-hooke", "", diag)
	tpl.Rve.Solver.NmaxIt = 1
	m := newMaterials(tst, tpl, 1)[0]
	m.Eid, m.Ip = 4, 1
	inst := m.Inst

	F := identity()
	F[0][0] = 1.05
	err := inst.ApplyMacroDeformation(F)
	if err != nil {
		tst.Errorf("ApplyMacroDeformation failed:\n%v", err)
		return
	}
	res := inst.Solve()
	io.Pforan("reason = %v\n", res.Reason)
	if res.Converged {
		tst.Errorf("Solve with one iteration must fail")
		return
	}
	if !strings.Contains(res.Reason, "max number of iterations") {
		tst.Errorf("reason is incorrect: %q", res.Reason)
	}
	if diag.Silent() {
		tst.Errorf("nested messages must be restored after a failed solve")
	}
	if inst.Converged() {
		tst.Errorf("instance cannot be converged after a failed solve")
	}
	_, err = inst.AveragedCauchyStress(F, det(F))
	var ce *ContractError
	if !errors.As(err, &ce) {
		tst.Errorf("ContractError expected. got %v", err)
	}
	for _, v := range inst.Dom.Msh.Verts {
		chk.Vector(tst, io.Sf("u%d", v.Id), 1e-15, inst.Dom.NodeU(v.Id), []float64{0, 0, 0})
	}

	// through the material
	_, err = m.Stress(F)
	var mce *MultiscaleConvergenceError
	if !errors.As(err, &mce) {
		tst.Errorf("MultiscaleConvergenceError expected. got %v", err)
		return
	}
	io.Pforan("%v\n", err)
	chk.IntAssert(mce.Eid, 4)
	chk.IntAssert(mce.Ip, 1)
	if mce.Reason == "" {
		tst.Errorf("reason must be given")
	}
	if diag.Silent() {
		tst.Errorf("nested messages must be restored after a failed solve")
	}

	// the undeformed state needs no iterations
	σ, err := m.Stress(identity())
	if err != nil {
		tst.Errorf("Stress failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "σ(I)", 1e-15, σ, la.MatAlloc(3, 3))

	// same instance with a larger budget
	inst.Dom.Rve.Solver.NmaxIt = 20
	σ, err = m.Stress(F)
	if err != nil {
		tst.Errorf("Stress failed:\n%v", err)
		return
	}
	chk.Matrix(tst, "σ", 1e-8, σ, sol.Stress(F))
	if diag.Silent() {
		tst.Errorf("nested messages must be restored after a solve")
	}
	chk.IntAssert(diag.Nwarnings(), 0)
}

func Test_driver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("driver05. cutbacks on nested failures")

	var sol ana.NeoHooke
	sol.Init(matrixPrms)
	path := uniaxial(0.1)
	ctx := context.Background()

	// all points fail: stop after MaxCuts
	var buf bytes.Buffer
	diag := NewDiag(&buf, "")
	tpl := testTemplate(tst, 1, false, "neo-hooke", "", diag)
	tpl.Rve.Solver.NmaxIt = 1
	drv := &Driver{Mats: newMaterials(tst, tpl, 2), Nincs: 2, MaxCuts: 2, Diag: diag}
	ninc := 0
	err := drv.Run(ctx, path, func(inc int, t float64, σ [][][]float64) error {
		ninc++
		return nil
	})
	if err == nil {
		tst.Errorf("Run should have failed")
		return
	}
	io.Pforan("%v\n", err)
	if !strings.Contains(err.Error(), "max number of cutbacks") {
		tst.Errorf("error is incorrect: %v", err)
	}
	chk.IntAssert(ninc, 0)
	chk.IntAssert(drv.Ncuts, 2)
	chk.IntAssert(diag.Nwarnings(), 2)
	if diag.Silent() {
		tst.Errorf("nested messages must be restored after failures")
	}
	for _, m := range drv.Mats {
		chk.Matrix(tst, "Fprev", 1e-15, m.Pt.Fprev, identity())
		if m.Inst.Converged() {
			tst.Errorf("failed trial cannot be converged")
		}
	}

	// the second point fails once; the first one has converged at the rejected trial
	var hook hookWriter
	diag = NewDiag(&hook, "")
	tpl = testTemplate(tst, 2, false, "neo-hooke", "", diag)
	mats := newMaterials(tst, tpl, 2)
	mats[1].Inst.Dom.Rve.Solver.NmaxIt = 1
	hook.fcn = func() {
		mats[1].Inst.Dom.Rve.Solver.NmaxIt = 20
	}
	drv = &Driver{Mats: mats, Workers: 1, Nincs: 2, MaxCuts: 2, Diag: diag}
	var ts []float64
	err = drv.Run(ctx, path, func(inc int, t float64, σ [][][]float64) error {
		ts = append(ts, t)
		for i := range σ {
			chk.Matrix(tst, io.Sf("σ%d @ t=%g", i, t), 1e-8, σ[i], sol.Stress(path(i, t)))
		}
		return nil
	})
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	chk.IntAssert(drv.Ncuts, 1)
	chk.Vector(tst, "t", 1e-15, ts, []float64{0.25, 0.5, 0.75, 1})
	for i, m := range mats {
		chk.Matrix(tst, io.Sf("Fprev%d", i), 1e-15, m.Pt.Fprev, path(i, 1))
	}
}

func Test_probe01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("probe01. probe configuration and failures")

	// no probe
	if NewProbe(inp.ProbeConfig{Eid: -1}, "/tmp", nil) != nil {
		tst.Errorf("probe with negative element id must be nil")
	}
	var none *Probe
	none.Notify(EvInit, nil)
	if !none.Disabled() {
		tst.Errorf("nil probe is disabled")
	}

	// paths
	p := NewProbe(inp.ProbeConfig{Eid: 3, Ip: 1}, "/tmp/gofe2", nil)
	chk.String(tst, p.Path, "/tmp/gofe2/rve.out")
	p = NewProbe(inp.ProbeConfig{Eid: 3, Ip: 1, File: "/abs/p.out"}, "/tmp/gofe2", nil)
	chk.String(tst, p.Path, "/abs/p.out")
	if !p.Matches(3, 1) || p.Matches(3, 0) {
		tst.Errorf("Matches is incorrect")
	}
	chk.String(tst, EvMinor.String(), "MINOR")
	chk.String(tst, Event(9).String(), "Event(9)")

	// failing output
	var buf bytes.Buffer
	diag := NewDiag(&buf, "")
	tpl := testTemplate(tst, 1, false, "neo-hooke", "", diag)
	m := newMaterials(tst, tpl, 1)[0]
	m.Eid = 3
	m.Ip = 1
	m.Probe = p
	nopen := 0
	p.Open = func(path string) (goio.WriteCloser, error) {
		nopen++
		return nil, errors.New("disk full")
	}
	p.Diag = diag
	p.Notify(EvInit, m)
	p.Notify(EvMajor, m)
	p.Notify(EvSolved, m)
	chk.IntAssert(nopen, 1)
	chk.IntAssert(diag.Nwarnings(), 1)
	chk.IntAssert(p.Nsnapshots(), 0)
	if !p.Disabled() {
		tst.Errorf("probe must be disabled after a failure")
	}
	io.Pforan("%s\n", buf.String())
	if !strings.Contains(buf.String(), "disk full") {
		tst.Errorf("warning must contain the cause")
	}

	// the analysis goes on
	_, err := m.Stress(identity())
	if err != nil {
		tst.Errorf("Stress failed:\n%v", err)
	}

	// debug mode writes minor iterations
	out := new(bufCloser)
	q := &Probe{Eid: 3, Ip: 1, Debug: true, Open: func(string) (goio.WriteCloser, error) { return out, nil }}
	m.Probe = q
	_, err = m.Stress(identity())
	if err != nil {
		tst.Errorf("Stress failed:\n%v", err)
	}
	chk.IntAssert(q.Nsnapshots(), 1)
	if !strings.Contains(out.String(), "event MINOR") {
		tst.Errorf("minor snapshot is missing")
	}
}

func Test_encode01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("encode01. material state")

	F := [][]float64{{1.04, 0.01, 0}, {0, 0.98, 0}, {0, 0, 1.01}}
	tpl := testTemplate(tst, 2, false, "neo-hooke", "!type:periodic", nil)
	mats := newMaterials(tst, tpl, 2)
	σ, err := mats[0].Stress(F)
	if err != nil {
		tst.Errorf("Stress failed:\n%v", err)
		return
	}
	mats[0].Update()

	for _, enctype := range []string{"gob", "json"} {
		var buf bytes.Buffer
		err = mats[0].Encode(fem.GetEncoder(&buf, enctype))
		if err != nil {
			tst.Errorf("Encode failed:\n%v", err)
			return
		}
		m := newMaterials(tst, tpl, 1)[0]
		err = m.Decode(fem.GetDecoder(&buf, enctype))
		if err != nil {
			tst.Errorf("Decode failed:\n%v", err)
			return
		}
		if !m.Inst.Converged() {
			tst.Errorf("decoded state must be converged")
		}
		σd, err := m.Inst.AveragedCauchyStress(F, det(F))
		if err != nil {
			tst.Errorf("AveragedCauchyStress failed:\n%v", err)
			return
		}
		chk.Matrix(tst, "σ "+enctype, 1e-12, σd, σ)
		chk.Matrix(tst, "Fprev "+enctype, 1e-15, m.Pt.Fprev, F)
		chk.Scalar(tst, "ComMacroEnergy "+enctype, 1e-12, m.Pt.ComMacroEnergy, mats[0].Pt.ComMacroEnergy)
	}

	// cannot encode unconverged state
	var buf bytes.Buffer
	err = mats[1].Encode(fem.GetEncoder(&buf, "gob"))
	var ce *ContractError
	if !errors.As(err, &ce) {
		tst.Errorf("ContractError expected. got %v", err)
	}
}
