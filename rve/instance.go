// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"github.com/paddyschmidt/gofe2/fem"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Result holds the outcome of a nested solve
type Result struct {
	Converged bool   // solve converged
	Reason    string // why it failed; empty if converged
}

// Err converts a failed result into a *MultiscaleConvergenceError; nil if converged
func (o Result) Err(eid, ip int) error {
	if o.Converged {
		return nil
	}
	return &MultiscaleConvergenceError{eid, ip, o.Reason}
}

// Instance is an independent nested finite element model owned by one macro integration point
type Instance struct {
	Id       int              // instance id
	V0       float64          // reference volume (from template)
	Xc       []float64        // centroid of reference volume (from template)
	Boundary *BoundaryNodeSet // vertices on the exterior surface (copy)
	Coupling Coupling         // coupling fixed at instantiation
	Dom      *fem.Domain      // nested model
	Diag     *Diag            // diagnostic channel; may be nil
	F        [][]float64      // macroscopic deformation gradient last applied

	// constraint groups
	affine   []*fem.AffineBc
	periodic []*fem.PeriodicBc

	// generation counters to check the order of calls
	genApplied int64       // incremented by ApplyMacroDeformation
	genSolved  int64       // genApplied of last converged solve
	genStress  int64       // genApplied of last stress evaluation
	Fstress    [][]float64 // deformation gradient of last stress evaluation
}

// ApplyMacroDeformation sets the target values of the boundary constraints for a new macroscopic
// deformation gradient. It must be called before each Solve with a new F.
func (o *Instance) ApplyMacroDeformation(F [][]float64) (err error) {
	if !is3x3(F) {
		return chk.Err("deformation gradient must be 3x3")
	}
	for _, g := range o.affine {
		g.SetF(F)
	}
	for _, g := range o.periodic {
		g.SetF(F)
	}
	la.MatCopy(o.F, 1, F)
	o.genApplied++
	return
}

// Solve runs the nested model to convergence under the applied boundary state.
// Nested diagnostics are suppressed during the call.
func (o *Instance) Solve() (res Result) {
	restore := o.Diag.Suppress()
	defer restore()
	err := o.Dom.Run(o.Diag)
	if err != nil {
		return Result{Reason: err.Error()}
	}
	o.genSolved = o.genApplied
	return Result{Converged: true}
}

// Converged tells whether the last applied deformation has been solved
func (o *Instance) Converged() bool {
	return o.genApplied > 0 && o.genSolved == o.genApplied
}

// Encode writes the instance state: applied F and nested model state
func (o *Instance) Encode(enc fem.Encoder) (err error) {
	if !o.Converged() {
		return contractErr("instance %d: cannot encode state that has not converged", o.Id)
	}
	err = enc.Encode(o.F)
	if err != nil {
		return chk.Err("cannot encode F:\n%v", err)
	}
	return o.Dom.Encode(enc)
}

// Decode reads the instance state written by Encode; the state is regarded as converged
func (o *Instance) Decode(dec fem.Decoder) (err error) {
	var F [][]float64
	err = dec.Decode(&F)
	if err != nil {
		return chk.Err("cannot decode F:\n%v", err)
	}
	if len(F) != 3 {
		return chk.Err("decoded F must be 3x3")
	}
	err = o.Dom.Decode(dec)
	if err != nil {
		return
	}
	la.MatCopy(o.F, 1, F)
	o.genApplied++
	o.genSolved = o.genApplied
	return
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// is3x3 tells whether a is a 3x3 matrix
func is3x3(a [][]float64) bool {
	return len(a) == 3 && len(a[0]) == 3 && len(a[1]) == 3 && len(a[2]) == 3
}

// identity returns a new 3x3 identity matrix
func identity() (I [][]float64) {
	I = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		I[i][i] = 1
	}
	return
}
