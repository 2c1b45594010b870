// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// register shapes
func init() {

	// hex8
	hex8 := new(Shape)
	hex8.Type = "hex8"
	hex8.Func = Hex8
	hex8.FaceFunc = Qua4
	hex8.FaceType = "qua4"
	hex8.Gndim = 3
	hex8.Nverts = 8
	hex8.VtkCode = 12
	hex8.FaceNvertsMax = 4
	hex8.FaceLocalVerts = [][]int{{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 1, 5, 4}, {2, 3, 7, 6}, {0, 3, 2, 1}, {4, 5, 6, 7}}
	hex8.NatCoords = [][]float64{
		{-1, 1, 1, -1, -1, 1, 1, -1},
		{-1, -1, 1, 1, -1, -1, 1, 1},
		{-1, -1, -1, -1, 1, 1, 1, 1},
	}
	hex8.init_scratchpad()
	factory["hex8"] = hex8
}

// Hex8 calculates the shape functions (S) and derivatives of shape functions (dSdR) of hex8
// elements at {r,s,t} natural coordinates. The derivatives are calculated only if derivs==true.
//
//              4________________7
//            ,'|              ,'|
//          ,'  |            ,'  |
//        ,'    |          ,'    |
//      ,'      |        ,'      |
//    5'===============6'        |
//    |         |      |         |
//    |         |      |         |
//    |         0_____ | ________3
//    |       ,'       |       ,'
//    |     ,'         |     ,'
//    |   ,'           |   ,'
//    | ,'             | ,'
//    1________________2'
//
func Hex8(S []float64, dSdR [][]float64, R []float64, derivs bool, idxface int) {

	r, s, t := R[0], R[1], R[2]
	S[0] = (1.0 - r - s + r*s - t + s*t + r*t - r*s*t) / 8.0
	S[1] = (1.0 + r - s - r*s - t + s*t - r*t + r*s*t) / 8.0
	S[2] = (1.0 + r + s + r*s - t - s*t - r*t - r*s*t) / 8.0
	S[3] = (1.0 - r + s - r*s - t - s*t + r*t + r*s*t) / 8.0
	S[4] = (1.0 - r - s + r*s + t - s*t - r*t + r*s*t) / 8.0
	S[5] = (1.0 + r - s - r*s + t - s*t + r*t - r*s*t) / 8.0
	S[6] = (1.0 + r + s + r*s + t + s*t + r*t + r*s*t) / 8.0
	S[7] = (1.0 - r + s - r*s + t + s*t - r*t - r*s*t) / 8.0

	if !derivs {
		return
	}

	dSdR[0][0] = (-1.0 + s + t - s*t) / 8.0
	dSdR[0][1] = (-1.0 + r + t - r*t) / 8.0
	dSdR[0][2] = (-1.0 + r + s - r*s) / 8.0

	dSdR[1][0] = (+1.0 - s - t + s*t) / 8.0
	dSdR[1][1] = (-1.0 - r + t + r*t) / 8.0
	dSdR[1][2] = (-1.0 - r + s + r*s) / 8.0

	dSdR[2][0] = (+1.0 + s - t - s*t) / 8.0
	dSdR[2][1] = (+1.0 + r - t - r*t) / 8.0
	dSdR[2][2] = (-1.0 - r - s - r*s) / 8.0

	dSdR[3][0] = (-1.0 - s + t + s*t) / 8.0
	dSdR[3][1] = (+1.0 - r - t + r*t) / 8.0
	dSdR[3][2] = (-1.0 + r - s + r*s) / 8.0

	dSdR[4][0] = (-1.0 + s - t + s*t) / 8.0
	dSdR[4][1] = (-1.0 + r - t + r*t) / 8.0
	dSdR[4][2] = (+1.0 - r - s + r*s) / 8.0

	dSdR[5][0] = (+1.0 - s + t - s*t) / 8.0
	dSdR[5][1] = (-1.0 - r - t - r*t) / 8.0
	dSdR[5][2] = (+1.0 + r - s - r*s) / 8.0

	dSdR[6][0] = (+1.0 + s + t + s*t) / 8.0
	dSdR[6][1] = (+1.0 + r + t + r*t) / 8.0
	dSdR[6][2] = (+1.0 + r + s + r*s) / 8.0

	dSdR[7][0] = (-1.0 - s - t - s*t) / 8.0
	dSdR[7][1] = (+1.0 - r + t - r*t) / 8.0
	dSdR[7][2] = (+1.0 - r + s - r*s) / 8.0
}

// Qua4 calculates the shape functions (S) and derivatives of shape functions (dSdR) of qua4
// elements at {r,s} natural coordinates. It is used for the faces of hex8 cells.
//
//      3-----------2
//      |     s     |
//      |     |     |
//      |     +--r  |
//      |           |
//      |           |
//      0-----------1
//
func Qua4(S []float64, dSdR [][]float64, R []float64, derivs bool, idxface int) {

	r, s := R[0], R[1]
	S[0] = (1.0 - r - s + r*s) / 4.0
	S[1] = (1.0 + r - s - r*s) / 4.0
	S[2] = (1.0 + r + s + r*s) / 4.0
	S[3] = (1.0 - r + s - r*s) / 4.0

	if !derivs {
		return
	}

	dSdR[0][0] = 0.25 * (-1.0 + s)
	dSdR[1][0] = 0.25 * (+1.0 - s)
	dSdR[2][0] = 0.25 * (+1.0 + s)
	dSdR[3][0] = 0.25 * (-1.0 - s)

	dSdR[0][1] = 0.25 * (-1.0 + r)
	dSdR[1][1] = 0.25 * (-1.0 - r)
	dSdR[2][1] = 0.25 * (+1.0 + r)
	dSdR[3][1] = 0.25 * (+1.0 - r)
}
