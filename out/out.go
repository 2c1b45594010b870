// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements post-processing of macro points: histories of committed increments,
// tables and plots of stress paths
package out

import (
	goio "io"
	"sort"

	"github.com/paddyschmidt/gofe2/ana"
	"github.com/paddyschmidt/gofe2/rve"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Keys holds all keys recorded by History
//  s??     -- components of averaged Cauchy stress
//  s1      -- max principal stress
//  F??, J  -- macroscopic deformation
//  Wmac    -- macro energy P:F
//  Wmic    -- micro energy <P:F>
//  dW      -- Wmic - Wmac
var Keys = []string{"sxx", "syy", "szz", "sxy", "syz", "sxz", "s1", "Fxx", "Fyy", "Fzz", "J", "Wmac", "Wmic", "dW"}

// History holds the results of macro points at committed increments
type History struct {
	T    []float64              // pseudo-times
	Npts int                    // number of macro points
	Res  map[string][][]float64 // [key][ipt][idxT] results
	Eids []int                  // element ids of points
	Ips  []int                  // integration point indices of points
}

// NewHistory allocates a new history for the given macro points
func NewHistory(mats []*rve.Material) (o *History) {
	o = &History{Npts: len(mats), Res: make(map[string][][]float64)}
	for _, key := range Keys {
		o.Res[key] = make([][]float64, o.Npts)
	}
	for _, m := range mats {
		o.Eids = append(o.Eids, m.Eid)
		o.Ips = append(o.Ips, m.Ip)
	}
	return
}

// Record appends the results of a committed increment
//  σ -- [npts][3][3] averaged Cauchy stresses
func (o *History) Record(t float64, σ [][][]float64, mats []*rve.Material) (err error) {
	if len(σ) != o.Npts || len(mats) != o.Npts {
		return chk.Err("number of points must be %d. len(σ)=%d, len(mats)=%d", o.Npts, len(σ), len(mats))
	}
	o.T = append(o.T, t)
	for i, m := range mats {
		s := σ[i]
		pt := &m.Pt
		vals := map[string]float64{
			"sxx": s[0][0], "syy": s[1][1], "szz": s[2][2],
			"sxy": s[0][1], "syz": s[1][2], "sxz": s[0][2],
			"s1": ana.PrincipalMax(s),
			"Fxx": pt.F[0][0], "Fyy": pt.F[1][1], "Fzz": pt.F[2][2],
			"J":    pt.J,
			"Wmac": pt.MacroEnergy,
			"Wmic": pt.MicroEnergy,
			"dW":   pt.EnergyDiff,
		}
		for key, v := range vals {
			o.Res[key][i] = append(o.Res[key][i], v)
		}
	}
	return
}

// Get returns the results of key for point ipt
//  idxT -- index of time; use -1 for all times
func (o *History) Get(key string, ipt, idxT int) []float64 {
	res, ok := o.Res[key]
	if !ok {
		chk.Panic("cannot find results with key %q. available keys are %v", key, o.keys())
	}
	if ipt < 0 || ipt >= o.Npts {
		chk.Panic("point index %d is out of range [0, %d)", ipt, o.Npts)
	}
	if idxT < 0 {
		return res[ipt]
	}
	return res[ipt][idxT : idxT+1]
}

// Last returns the last recorded value of key for point ipt
func (o *History) Last(key string, ipt int) float64 {
	vals := o.Get(key, ipt, -1)
	if len(vals) == 0 {
		chk.Panic("history is empty")
	}
	return vals[len(vals)-1]
}

// WriteTable writes one block per point with one row per time
func (o *History) WriteTable(w goio.Writer, keys ...string) (err error) {
	if len(keys) == 0 {
		keys = Keys
	}
	for ipt := 0; ipt < o.Npts; ipt++ {
		l := io.Sf("# element %d ip %d\n%6s%14s", o.Eids[ipt], o.Ips[ipt], "inc", "t")
		for _, key := range keys {
			l += io.Sf("%23s", key)
		}
		l += "\n"
		for idx, t := range o.T {
			l += io.Sf("%6d%14.6f", idx+1, t)
			for _, key := range keys {
				l += io.Sf("%23.15e", o.Get(key, ipt, idx)[0])
			}
			l += "\n"
		}
		if _, err = goio.WriteString(w, l); err != nil {
			return
		}
	}
	return
}

func (o *History) keys() (keys []string) {
	for key := range o.Res {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return
}
