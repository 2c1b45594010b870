// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// ipsfactory holds integration points; geometry type => number of points => points
var ipsfactory = make(map[string]map[int][]Ipoint)

// GetIps returns the integration points of a geometry type
//  nip -- number of integration points; use 0 for default
func GetIps(geoType string, nip int) (ips []Ipoint, err error) {
	db, ok := ipsfactory[geoType]
	if !ok {
		return nil, chk.Err("cannot find integration points for geometry type %q", geoType)
	}
	if nip == 0 {
		nip = defaultNip[geoType]
	}
	ips, ok = db[nip]
	if !ok {
		return nil, chk.Err("number of integration points nip=%d is not available for %q", nip, geoType)
	}
	return
}

// defaultNip holds the default number of integration points
var defaultNip = map[string]int{"qua4": 4, "hex8": 8}

func init() {

	// Gauss-Legendre 1D: 2 and 3 points
	a := 1.0 / math.Sqrt(3.0)
	g2r := []float64{-a, a}
	g2w := []float64{1, 1}
	b := math.Sqrt(3.0 / 5.0)
	g3r := []float64{-b, 0, b}
	g3w := []float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}

	// tensor products
	qua := func(r, w []float64) (ips []Ipoint) {
		for j := range r {
			for i := range r {
				ips = append(ips, Ipoint{r[i], r[j], 0, w[i] * w[j]})
			}
		}
		return
	}
	hex := func(r, w []float64) (ips []Ipoint) {
		for k := range r {
			for j := range r {
				for i := range r {
					ips = append(ips, Ipoint{r[i], r[j], r[k], w[i] * w[j] * w[k]})
				}
			}
		}
		return
	}

	ipsfactory["qua4"] = map[int][]Ipoint{4: qua(g2r, g2w), 9: qua(g3r, g3w)}
	ipsfactory["hex8"] = map[int][]Ipoint{8: hex(g2r, g2w), 27: hex(g3r, g3w)}
}
