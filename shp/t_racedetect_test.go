// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_race01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("race01")

	nchan := 4
	done := make(chan float64, nchan)

	shapes := make([]*Shape, nchan)
	for i := 0; i < nchan; i++ {
		shapes[i] = Get("hex8", i+1)
	}

	for i := 0; i < nchan; i++ {
		go func(shape *Shape, L float64) {
			x := [][]float64{
				{0, L, L, 0, 0, L, L, 0},
				{0, 0, L, L, 0, 0, L, L},
				{0, 0, 0, 0, L, L, L, L},
			}
			shape.CalcAtIp(x, Ipoint{0.5, 0.5, 0.5, 1}, true)
			done <- shape.J / (L * L * L / 8.0)
		}(shapes[i], float64(i+1))
	}

	for i := 0; i < nchan; i++ {
		chk.Scalar(tst, "J/J0", 1e-15, <-done, 1)
	}
}
