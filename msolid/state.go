// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import "github.com/cpmech/gosl/la"

// State holds all continuum mechanics data, including for updating the state
type State struct {

	// essential
	Sig []float64 // σ: current Cauchy stress tensor (Mandel basis) [nsig]

	// for large deformations
	F [][]float64 // deformation gradient [3][3]
	P [][]float64 // first Piola-Kirchhoff stress tensor [3][3]
}

// NewState allocates state structure
//  Note: F is set to the identity
func NewState(nsig int) *State {
	var state State
	state.Sig = make([]float64, nsig)
	state.F = la.MatAlloc(3, 3)
	state.P = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		state.F[i][i] = 1
	}
	return &state
}

// Set copies states
//  Note: 1) this and other states must have been pre-allocated with the same sizes
//        2) this method does not check for errors
func (o *State) Set(other *State) {
	copy(o.Sig, other.Sig)
	la.MatCopy(o.F, 1, other.F)
	la.MatCopy(o.P, 1, other.P)
}

// GetCopy returns a copy of this state
func (o *State) GetCopy() *State {
	other := NewState(len(o.Sig))
	other.Set(o)
	return other
}

// PdotF returns the double contraction P:F
func (o *State) PdotF() (res float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res += o.P[i][j] * o.F[i][j]
		}
	}
	return
}
