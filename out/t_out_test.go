// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/paddyschmidt/gofe2/rve"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// runHistory runs a uniaxial path on two macro points and records the history
func runHistory(tst *testing.T) (h *History, mats []*rve.Material) {
	tpl, err := rve.LoadTemplate("../rve/data/cube1.rve", nil)
	if err != nil {
		tst.Fatalf("LoadTemplate failed:\n%v", err)
	}
	for i := 0; i < 2; i++ {
		m, err := rve.NewMaterial(tpl, i, 0, nil, 1e-2)
		if err != nil {
			tst.Fatalf("NewMaterial failed:\n%v", err)
		}
		mats = append(mats, m)
	}
	h = NewHistory(mats)
	drv := &rve.Driver{Mats: mats, Nincs: 3, MaxCuts: 2}
	path := func(idx int, t float64) [][]float64 {
		return [][]float64{{1 + 0.01*float64(idx+1)*t, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	err = drv.Run(context.Background(), path, func(inc int, t float64, σ [][][]float64) error {
		return h.Record(t, σ, mats)
	})
	if err != nil {
		tst.Fatalf("Run failed:\n%v", err)
	}
	return
}

func Test_history01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("history01. record and table")

	h, mats := runHistory(tst)
	chk.Vector(tst, "T", 1e-15, h.T, []float64{1.0 / 3.0, 2.0 / 3.0, 1})
	chk.Vector(tst, "Fxx0", 1e-15, h.Get("Fxx", 0, -1), []float64{1 + 0.01/3.0, 1 + 0.02/3.0, 1.01})
	chk.Vector(tst, "Fxx1", 1e-15, h.Get("Fxx", 1, 2), []float64{1.02})
	chk.Scalar(tst, "s1", 1e-12, h.Last("s1", 1), h.Last("sxx", 1))
	chk.Scalar(tst, "Wmac", 1e-15, h.Last("Wmac", 0), mats[0].Pt.MacroEnergy)
	if h.Last("sxx", 1) <= h.Last("sxx", 0) {
		tst.Errorf("point 1 is stretched more than point 0")
	}

	var buf bytes.Buffer
	err := h.WriteTable(&buf, "sxx", "J")
	if err != nil {
		tst.Errorf("WriteTable failed:\n%v", err)
		return
	}
	txt := buf.String()
	io.Pforan("%s\n", txt)
	chk.IntAssert(strings.Count(txt, "# element"), 2)
	chk.IntAssert(strings.Count(txt, "\n"), 2*(2+3))

	// wrong number of points
	err = h.Record(1, nil, mats)
	if err == nil {
		tst.Errorf("Record with wrong number of stresses should have failed")
	}
}

func Test_plot01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("plot01. stress path")

	h, _ := runHistory(tst)
	p := NewPlotter(h)

	p.Splot("stress path")
	p.PlotAll("Fxx", "sxx")
	chk.IntAssert(len(p.Csplot.Data), 2)
	chk.String(tst, p.Csplot.Xlbl, "$F_{xx}$")
	chk.String(tst, p.Csplot.Ylbl, `$\sigma_{xx}$`)

	p.Splot("energy")
	p.Plot("t", "dW", 0, plt.Fmt{C: "r", M: "o"})
	p.SplotConfig("", "[kPa]", 1, 1e3)
	chk.String(tst, p.Csplot.Ylbl, `$\langle P:F \rangle - \bar{P}:\bar{F}$ [kPa]`)
	chk.IntAssert(len(p.Splots), 2)

	chk.String(tst, GetTexLabel("unknown", ""), "unknown")
	chk.Vector(tst, "scaled", 1e-15, scaled([]float64{1, 2}, 2), []float64{2, 4})

	//p.Draw("/tmp/gofe2", "stresspath.png", true, nil)
	p.Draw("", "", false, nil)
}

func Test_vtu01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("vtu01. RVE state as VTU")

	_, mats := runHistory(tst)
	var buf bytes.Buffer
	err := WriteVtu(&buf, mats[1].Inst)
	if err != nil {
		tst.Errorf("WriteVtu failed:\n%v", err)
		return
	}
	txt := buf.String()
	if !strings.Contains(txt, `<Piece NumberOfPoints="8" NumberOfCells="1">`) {
		tst.Errorf("header is incorrect")
	}
	if !strings.Contains(txt, "\n0 1 2 3 4 5 6 7 \n") {
		tst.Errorf("connectivity is incorrect")
	}
	if !strings.Contains(txt, "\n1 1 1 1 1 1 1 1 \n") {
		tst.Errorf("boundary flags are incorrect")
	}
	chk.IntAssert(strings.Count(txt, "<DataArray"), 7)
	chk.IntAssert(iabs(-3), 3)
}
