// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/msolid"

	"github.com/cpmech/gosl/chk"
)

// GetAndInitSolidModel allocates and initialises a solid model from material name
//  Note: a new model is allocated for each call because models hold scratchpad data
func GetAndInitSolidModel(rve *inp.Rve, matname string, ndim int) (mdl msolid.Model, ldm msolid.Large, err error) {

	// material data
	matdata := rve.GetMat(matname)
	if matdata == nil {
		err = chk.Err("materials database failed on getting %q (solid) material\n", matname)
		return
	}

	// allocate model
	mdl, err = msolid.New(matdata.Model)
	if err != nil {
		return
	}
	err = mdl.Init(ndim, false, matdata.Prms)
	if err != nil {
		err = chk.Err("solid model initialisation failed:\n%v", err)
		return
	}

	// model specialisation
	var ok bool
	ldm, ok = mdl.(msolid.Large)
	if !ok {
		err = chk.Err("model %q cannot be used in large deformation analyses", matdata.Model)
	}
	return
}
