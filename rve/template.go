// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"sync/atomic"

	"github.com/paddyschmidt/gofe2/fem"
	"github.com/paddyschmidt/gofe2/inp"

	"github.com/cpmech/gosl/chk"
)

// Template is the read-only description of an RVE from which instances are cloned
type Template struct {
	Rve      *inp.Rve         // input data
	Boundary *BoundaryNodeSet // vertices on the exterior surface
	Coupling Coupling         // coupling given in the input data
	V0       float64          // reference volume
	Xc       []float64        // centroid of reference volume
	Diag     *Diag            // diagnostic channel of instances; may be nil

	ninst int64 // number of instances created so far
}

// LoadTemplate reads an RVE template from file
func LoadTemplate(path string, diag *Diag) (o *Template, err error) {
	rve, err := inp.ReadRve(path)
	if err != nil {
		return nil, &ModelLoadError{path, err}
	}
	o, err = NewTemplate(rve, diag)
	if err != nil {
		if e, ok := err.(*ModelLoadError); ok {
			e.Path = path
		}
	}
	return
}

// NewTemplate creates a template from RVE data and computes the boundary node set, the reference
// volume and the centroid
func NewTemplate(rve *inp.Rve, diag *Diag) (o *Template, err error) {

	// data
	o = &Template{Rve: rve, Diag: diag}
	o.Coupling, err = ParseCoupling(rve.Coupling)
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	// boundary
	o.Boundary = FindBoundary(rve.Mesh)
	if o.Boundary.Len() == 0 {
		return nil, &ModelLoadError{Err: chk.Err("mesh has no boundary vertices")}
	}

	// volume and centroid
	d, err := fem.NewDomain(rve, 0)
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}
	o.Xc = make([]float64, 3)
	for _, e := range d.Elems {
		eu, ok := e.(*fem.ElemU)
		if !ok {
			continue
		}
		for idx, x := range eu.Ipoints() {
			dv := eu.DV0[idx]
			o.V0 += dv
			for i := 0; i < 3; i++ {
				o.Xc[i] += x[i] * dv
			}
		}
	}
	if o.V0 <= 0 {
		return nil, &ModelLoadError{Err: chk.Err("RVE volume must be positive. V0=%g is incorrect", o.V0)}
	}
	for i := 0; i < 3; i++ {
		o.Xc[i] /= o.V0
	}
	return
}

// Instantiate creates a new instance with the coupling given in the input data
func (o *Template) Instantiate() (*Instance, error) {
	return o.InstantiateWith(o.Coupling)
}

// InstantiateWith creates a new instance with a deep copy of the template geometry, its own
// nested solver state and the constraints of the given coupling
func (o *Template) InstantiateWith(c Coupling) (inst *Instance, err error) {
	if c == nil {
		return nil, contractErr("coupling must be given")
	}
	id := int(atomic.AddInt64(&o.ninst, 1))
	rve := o.Rve.Clone()
	inst = &Instance{
		Id:       id,
		V0:       o.V0,
		Xc:       append([]float64(nil), o.Xc...),
		Boundary: o.Boundary.Copy(),
		Coupling: c,
		Diag:     o.Diag,
	}
	inst.Dom, err = fem.NewDomain(rve, id)
	if err != nil {
		return nil, chk.Err("cannot allocate nested model:\n%v", err)
	}
	err = c.install(inst)
	if err != nil {
		if _, ok := err.(*ContractError); ok {
			return nil, err
		}
		return nil, contractErr("cannot install %s coupling: %v", c.Name(), err)
	}
	err = inst.Dom.Build()
	if err != nil {
		return nil, chk.Err("cannot build nested model:\n%v", err)
	}
	inst.F = identity()
	return
}

// Ninstances returns the number of instances created so far
func (o *Template) Ninstances() int {
	return int(atomic.LoadInt64(&o.ninst))
}
