// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"context"
	"errors"

	"github.com/cpmech/gosl/chk"
	"golang.org/x/sync/errgroup"
)

// PathFunc returns the macroscopic deformation gradient of point idx at pseudo-time t ∈ [0,1]
type PathFunc func(idx int, t float64) [][]float64

// IncrementFunc is called after each committed increment with the stresses of all points
type IncrementFunc func(inc int, t float64, σ [][][]float64) error

// Driver evaluates a set of independent macro points along a deformation path.
// It stands in for the macroscopic solver: each increment is a trial that is cut back on
// convergence failures of any point.
type Driver struct {
	Mats    []*Material // one material (RVE instance) per macro point
	Workers int         // max number of goroutines; 0 means one per point
	Nincs   int         // number of increments
	MaxCuts int         // max number of cutbacks in a run
	Diag    *Diag       // diagnostic channel

	Ncuts int // total number of cutbacks
}

// Stress evaluates the stress of all points in parallel. Points are independent; the first error
// is returned.
func (o *Driver) Stress(ctx context.Context, Fs [][][]float64) (σ [][][]float64, err error) {
	if len(Fs) != len(o.Mats) {
		return nil, chk.Err("number of deformation gradients must be equal to the number of points. %d != %d", len(Fs), len(o.Mats))
	}
	σ = make([][][]float64, len(o.Mats))
	g, ctx := errgroup.WithContext(ctx)
	if o.Workers > 0 {
		g.SetLimit(o.Workers)
	}
	for i, m := range o.Mats {
		g.Go(func() (e error) {
			if e = ctx.Err(); e != nil {
				return
			}
			σ[i], e = m.Stress(Fs[i])
			return
		})
	}
	err = g.Wait()
	return
}

// Tangents returns the tangent moduli of all points; Stress must have been called before
func (o *Driver) Tangents(Fs [][][]float64) (c [][][][][]float64, err error) {
	c = make([][][][][]float64, len(o.Mats))
	for i, m := range o.Mats {
		c[i], err = m.Tangent(Fs[i])
		if err != nil {
			return nil, err
		}
	}
	return
}

// Run follows the path from t=0 to t=1 with Nincs increments. The increment is halved when any
// point fails with a *MultiscaleConvergenceError, up to MaxCuts times; other errors stop the run.
//
//  Note: after a cutback, the points that converged at the rejected trial keep their nested
//        constraints at that trial state and the retry ramps from there. The macro point data
//        (Fprev and committed energies) are not touched. This is exact for the path-independent
//        (hyperelastic) phase models available in msolid.
func (o *Driver) Run(ctx context.Context, path PathFunc, onInc IncrementFunc) (err error) {

	// start
	for _, m := range o.Mats {
		m.Probe.Notify(EvInit, m)
	}
	defer func() {
		for _, m := range o.Mats {
			m.Probe.Notify(EvSolved, m)
		}
	}()

	// increments
	nincs := o.Nincs
	if nincs < 1 {
		nincs = 1
	}
	Fs := make([][][]float64, len(o.Mats))
	t, Δt := 0.0, 1.0/float64(nincs)
	inc, ncuts := 0, 0
	for t < 1-1e-12 {
		if t+Δt > 1 {
			Δt = 1 - t
		}
		for i := range o.Mats {
			Fs[i] = path(i, t+Δt)
		}
		σ, e := o.Stress(ctx, Fs)
		if e != nil {
			var mce *MultiscaleConvergenceError
			if !errors.As(e, &mce) {
				return e
			}
			if ncuts >= o.MaxCuts {
				return chk.Err("max number of cutbacks (%d) reached @ t=%g:\n%v", o.MaxCuts, t+Δt, e)
			}
			o.Diag.Warnf("cutback @ t=%g: %v", t+Δt, e)
			Δt /= 2
			ncuts++
			o.Ncuts++
			continue
		}

		// commit
		t += Δt
		inc++
		for _, m := range o.Mats {
			m.Update()
		}
		if onInc != nil {
			err = onInc(inc, t, σ)
			if err != nil {
				return
			}
		}
	}
	return
}
