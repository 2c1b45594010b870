// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_shape01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape01")

	r := []float64{0.1, -0.2, 0.3}

	verb := chk.Verbose
	for name, shape := range factory {

		io.Pfyel("--------------------------------- %-6s---------------------------------\n", name)

		// check S
		CheckShape(tst, shape, 1e-15, verb)

		// check Sf
		CheckShapeFace(tst, shape, 1e-15, verb)

		// check dSdR
		CheckDSdR(tst, shape, r, 1e-13, verb)

		io.PfGreen("OK\n")
	}
}

func Test_shape02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape02")

	// box with lengths 3 x 2 x 0.5
	dx, dy, dz := 3.0, 2.0, 0.5
	xmat := [][]float64{
		{10, 13, 13, 10, 10, 13, 13, 10},
		{8, 8, 10, 10, 8, 8, 10, 10},
		{1, 1, 1, 1, 1.5, 1.5, 1.5, 1.5},
	}

	shape := Get("hex8", 1)
	ips, err := GetIps("hex8", 0)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	chk.IntAssert(len(ips), 8)

	// volume and gradients
	vol := 0.0
	for _, ip := range ips {
		err = shape.CalcAtIp(xmat, ip, true)
		if err != nil {
			tst.Errorf("CalcAtIp failed:\n%v", err)
			return
		}
		chk.Scalar(tst, "J", 1e-15, shape.J, dx*dy*dz/8.0)
		vol += shape.J * ip[3]

		// sum_m G[m][j] * x[i][m] == δij
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				res := 0.0
				for m := 0; m < shape.Nverts; m++ {
					res += shape.G[m][j] * xmat[i][m]
				}
				δ := 0.0
				if i == j {
					δ = 1
				}
				chk.Scalar(tst, io.Sf("dxdx%d%d", i, j), 1e-14, res, δ)
			}
		}
	}
	chk.Scalar(tst, "vol", 1e-14, vol, dx*dy*dz)

	// centre
	y := shape.IpRealCoords(xmat, Ipoint{0, 0, 0, 0})
	chk.Vector(tst, "centre", 1e-15, y, []float64{11.5, 9, 1.25})

	// face normals: area-weighted outward normals
	ipsf, err := GetIps("qua4", 0)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	areas := []float64{dy * dz, dy * dz, dx * dz, dx * dz, dx * dy, dx * dy}
	normals := [][]float64{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}
	for idxface := range shape.FaceLocalVerts {
		nvec := []float64{0, 0, 0}
		for _, ipf := range ipsf {
			err = shape.CalcAtFaceIp(xmat, ipf, idxface)
			if err != nil {
				tst.Errorf("%v\n", err)
				return
			}
			for i := 0; i < 3; i++ {
				nvec[i] += shape.Fnvec[i] * ipf[3]
			}
		}
		for i := 0; i < 3; i++ {
			normals[idxface][i] *= areas[idxface]
		}
		chk.Vector(tst, io.Sf("face%d", idxface), 1e-14, nvec, normals[idxface])
	}
}

func Test_shape03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape03")

	_, err := GetIps("hex8", 5)
	if err == nil {
		tst.Errorf("nip=5 should have failed\n")
		return
	}
	if GetNverts("tri3") != -1 {
		tst.Errorf("tri3 should not be available\n")
		return
	}
	chk.Ints(tst, "face 1", GetFaceLocalVerts("hex8", 1), []int{1, 2, 6, 5})
	if GetFaceLocalVerts("hex8", 6) != nil {
		tst.Errorf("face 6 should not exist\n")
	}
}
