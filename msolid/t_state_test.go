// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_state01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("state01")

	state0 := NewState(6)
	io.Pforan("state0 = %+v\n", state0)
	chk.Vector(tst, "sig", 1.0e-17, state0.Sig, []float64{0, 0, 0, 0, 0, 0})
	chk.Matrix(tst, "F", 1.0e-17, state0.F, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	chk.Scalar(tst, "P:F", 1.0e-17, state0.PdotF(), 0)

	state0.Sig[0] = 10.0
	state0.Sig[3] = 13.0
	state0.F[0][1] = 0.5
	state0.P[0][0] = 2.0
	state0.P[0][1] = 3.0

	state1 := NewState(6)
	state1.Set(state0)
	io.Pforan("state1 = %+v\n", state1)
	chk.Vector(tst, "sig", 1.0e-17, state1.Sig, []float64{10, 0, 0, 13, 0, 0})
	chk.Scalar(tst, "P:F", 1.0e-17, state1.PdotF(), 3.5)

	state2 := state1.GetCopy()
	state1.F[0][1] = 0
	io.Pforan("state2 = %+v\n", state2)
	chk.Matrix(tst, "F", 1.0e-17, state2.F, [][]float64{{1, 0.5, 0}, {0, 1, 0}, {0, 0, 1}})
	chk.Scalar(tst, "P:F", 1.0e-17, state2.PdotF(), 3.5)
}
