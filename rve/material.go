// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"github.com/paddyschmidt/gofe2/fem"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// MacroPoint holds the data of a macroscopic integration point computed by an RVE
type MacroPoint struct {
	F     [][]float64 // current (trial) deformation gradient
	Fprev [][]float64 // deformation gradient at the last committed increment
	J     float64     // det(F)

	// energies of current state
	MacroEnergy float64 // P:F with averaged P
	MicroEnergy float64 // volume average of P:F over the RVE
	EnergyDiff  float64 // MicroEnergy - MacroEnergy

	// energies of last committed increment
	IncMacroEnergy float64 // change of macro energy during the increment
	IncMicroEnergy float64 // change of micro energy during the increment
	IncEnergyDiff  float64 // IncMicroEnergy - IncMacroEnergy

	// committed energies
	ComMacroEnergy float64
	ComMicroEnergy float64
}

// Init sets F = Fprev = I and zeroes energies
func (o *MacroPoint) Init() {
	*o = MacroPoint{F: identity(), Fprev: identity(), J: 1}
}

// Update commits the current state: Fprev ← F and records the energies of the increment
func (o *MacroPoint) Update() {
	la.MatCopy(o.Fprev, 1, o.F)
	o.IncMacroEnergy = o.MacroEnergy - o.ComMacroEnergy
	o.IncMicroEnergy = o.MicroEnergy - o.ComMicroEnergy
	o.IncEnergyDiff = o.IncMicroEnergy - o.IncMacroEnergy
	o.ComMacroEnergy = o.MacroEnergy
	o.ComMicroEnergy = o.MicroEnergy
}

// Material computes the stress and tangent at one macroscopic integration point with its own RVE
type Material struct {
	Eid   int        // macro element id
	Ip    int        // macro integration point index
	HmTol float64    // tolerance of Hill-Mandel energy consistency; warnings only
	Pt    MacroPoint // macro point data
	Inst  *Instance  // nested model
	Probe *Probe     // probe attached to this point; may be nil
}

// NewMaterial instantiates an RVE for the macro point (eid, ip)
//  c -- coupling; nil means the coupling of the template
func NewMaterial(tpl *Template, eid, ip int, c Coupling, hmtol float64) (o *Material, err error) {
	if c == nil {
		c = tpl.Coupling
	}
	o = &Material{Eid: eid, Ip: ip, HmTol: hmtol}
	o.Inst, err = tpl.InstantiateWith(c)
	if err != nil {
		return nil, err
	}
	o.Pt.Init()
	return
}

// Stress computes the averaged Cauchy stress for the macroscopic deformation gradient F.
// A *MultiscaleConvergenceError is returned if the RVE does not converge.
func (o *Material) Stress(F [][]float64) (σ [][]float64, err error) {

	// deformation
	if !is3x3(F) {
		return nil, chk.Err("deformation gradient must be 3x3")
	}
	J := det(F)
	if J <= 0 {
		return nil, &MultiscaleConvergenceError{o.Eid, o.Ip, chk.Err("det(F) = %g is not positive", J).Error()}
	}
	la.MatCopy(o.Pt.F, 1, F)
	o.Pt.J = J

	// solve
	err = o.Inst.ApplyMacroDeformation(F)
	if err != nil {
		return
	}
	res := o.Inst.Solve()
	o.Probe.Notify(EvMinor, o)
	if err = res.Err(o.Eid, o.Ip); err != nil {
		return
	}

	// average
	σ, err = o.Inst.AveragedCauchyStress(F, J)
	if err != nil {
		return
	}
	P, err := o.Inst.AveragedStressPK1(F)
	if err != nil {
		return
	}

	// energies
	o.Pt.MacroEnergy = MacroEnergy(P, F)
	o.Pt.MicroEnergy = o.Inst.MicroEnergy()
	o.Pt.EnergyDiff = o.Pt.MicroEnergy - o.Pt.MacroEnergy
	if !HillMandelOk(o.Pt.MacroEnergy, o.Pt.MicroEnergy, o.HmTol) {
		o.Inst.Diag.Warnf("Hill-Mandel condition violated @ element %d, ip %d: macro=%g micro=%g diff=%g",
			o.Eid, o.Ip, o.Pt.MacroEnergy, o.Pt.MicroEnergy, o.Pt.EnergyDiff)
	}
	return
}

// Tangent returns the averaged tangent modulus for F; Stress(F) must have been called before
func (o *Material) Tangent(F [][]float64) (c [][][][]float64, err error) {
	if !is3x3(F) {
		return nil, chk.Err("deformation gradient must be 3x3")
	}
	return o.Inst.AveragedTangent(F, det(F))
}

// Update commits the current state of the macro point
func (o *Material) Update() {
	o.Pt.Update()
	o.Probe.Notify(EvMajor, o)
}

// Encode writes the macro point data and the state of the RVE
func (o *Material) Encode(enc fem.Encoder) (err error) {
	err = enc.Encode(o.Pt)
	if err != nil {
		return chk.Err("cannot encode macro point:\n%v", err)
	}
	return o.Inst.Encode(enc)
}

// Decode reads the data written by Encode
func (o *Material) Decode(dec fem.Decoder) (err error) {
	var pt MacroPoint
	err = dec.Decode(&pt)
	if err != nil {
		return chk.Err("cannot decode macro point:\n%v", err)
	}
	if len(pt.F) != 3 || len(pt.Fprev) != 3 {
		return chk.Err("decoded macro point is invalid")
	}
	err = o.Inst.Decode(dec)
	if err != nil {
		return
	}
	o.Pt = pt
	return
}
