// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"math"
	"strconv"

	"github.com/paddyschmidt/gofe2/fem"
	"github.com/paddyschmidt/gofe2/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Coupling defines how the macroscopic deformation is imposed on the RVE boundary.
// The available couplings are Displacement and Periodic.
type Coupling interface {
	Name() string                // name of coupling; e.g. "displacement"
	install(inst *Instance) error // adds constraints to the nested model of inst
}

// Displacement prescribes u = (F - I)・X0 at all boundary nodes
type Displacement struct{}

// Periodic prescribes u = (F - I)・X0 at edges and corners of the bounding box and
//  u_slave - u_master = (F - I)・(X0_slave - X0_master)
// for pairs of nodes on opposite faces
type Periodic struct {
	Tol float64 // tolerance to compare coordinates
}

// ParseCoupling parses a keycode string; e.g. "!type:periodic !tol:1e-7".
// An empty string selects the Displacement coupling.
func ParseCoupling(keycode string) (c Coupling, err error) {
	typ, _ := io.Keycode(keycode, "type")
	switch typ {
	case "", "displacement":
		return Displacement{}, nil
	case "periodic":
		p := Periodic{Tol: inp.Ztol}
		if stol, found := io.Keycode(keycode, "tol"); found {
			p.Tol, err = strconv.ParseFloat(stol, 64)
			if err != nil || p.Tol <= 0 {
				return nil, chk.Err("invalid tolerance %q in coupling %q", stol, keycode)
			}
		}
		return p, nil
	}
	return nil, chk.Err("coupling type %q is not available", typ)
}

// Name returns "displacement"
func (o Displacement) Name() string { return "displacement" }

// Name returns "periodic"
func (o Periodic) Name() string { return "periodic" }

func (o Displacement) install(inst *Instance) (err error) {
	nodes := make([]*fem.Node, 0, inst.Boundary.Len())
	for _, vid := range inst.Boundary.Ids {
		nod := inst.Dom.Vid2node[vid]
		if nod == nil {
			return contractErr("boundary vertex %d has no node", vid)
		}
		nodes = append(nodes, nod)
	}
	g, err := inst.Dom.EssenBcs.AddAffine(nodes)
	if err != nil {
		return
	}
	inst.affine = append(inst.affine, g)
	return
}

func (o Periodic) install(inst *Instance) (err error) {

	// classify boundary nodes
	bx := newBox(inst.Dom.Msh, o.Tol)
	var corners []*fem.Node
	var plus, minus [3][]*fem.Node
	for _, vid := range inst.Boundary.Ids {
		nod := inst.Dom.Vid2node[vid]
		if nod == nil {
			return contractErr("boundary vertex %d has no node", vid)
		}
		side, n := bx.faces(nod.X0())
		switch {
		case n == 0:
			return contractErr("periodic coupling requires a box-shaped RVE: boundary vertex %d is not on the bounding box", vid)
		case n > 1:
			corners = append(corners, nod)
		default:
			for a := 0; a < 3; a++ {
				if side[a] > 0 {
					plus[a] = append(plus[a], nod)
				}
				if side[a] < 0 {
					minus[a] = append(minus[a], nod)
				}
			}
		}
	}

	// edges and corners
	g, err := inst.Dom.EssenBcs.AddAffine(corners)
	if err != nil {
		return
	}
	inst.affine = append(inst.affine, g)

	// pairs of face nodes
	for a := 0; a < 3; a++ {
		used := make(map[int]bool)
		masters := make([]*fem.Node, len(plus[a]))
		for k, s := range plus[a] {
			Xs := s.X0()
			for _, m := range minus[a] {
				if used[m.Vert.Id] {
					continue
				}
				Xm := m.X0()
				match := true
				for j := 0; j < 3; j++ {
					if j != a && math.Abs(Xs[j]-Xm[j]) > o.Tol {
						match = false
						break
					}
				}
				if match {
					masters[k] = m
					used[m.Vert.Id] = true
					break
				}
			}
			if masters[k] == nil {
				return contractErr("periodic coupling: slave vertex %d on face %d has no master", s.Vert.Id, a)
			}
		}
		if len(used) != len(minus[a]) {
			return contractErr("periodic coupling: %d vertices on face -%d have no slave", len(minus[a])-len(used), a)
		}
		gp, err := inst.Dom.EssenBcs.AddPeriodic(a, plus[a], masters)
		if err != nil {
			return err
		}
		inst.periodic = append(inst.periodic, gp)
	}
	return
}
