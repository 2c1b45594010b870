// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msolid implements models for solids based on continuum mechanics
/*
 *            |
 *  ============================================
 *            |
 *            | P = P(F)
 *    Large   | σ = P・Fᵀ / J
 *            | A = ∂P/∂F  (first elasticity tensor)
 *            |
 */
package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Model defines the interface for solid models
type Model interface {
	Init(ndim int, pstress bool, prms fun.Prms) error // initialises model
	InitIntVars(σ []float64) (*State, error)          // initialises AND allocates internal (secondary) variables
	GetPrms() fun.Prms                                // gets (an example) of parameters
}

// Large defines solid models for large deformation analyses
type Large interface {
	Update(s *State, F, FΔ [][]float64) error              // updates stresses for new deformation F and increment FΔ
	CalcA(A [][][][]float64, s *State, firstIt bool) error // computes the first elasticity tensor A = ∂P/∂F
}

// New returns new solid model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'msolid' database", name)
	}
	return allocator(), nil
}

// allocators holds all available solid models; modelname => allocator
var allocators = map[string]func() Model{}
