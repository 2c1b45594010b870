// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from RVE (.rve) JSON files and run configuration files
package inp

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// SolverData holds data for the nested nonlinear solver
type SolverData struct {

	// nonlinear solver
	NmaxIt  int     `json:"nmaxit"`  // number of max iterations
	Atol    float64 `json:"atol"`    // absolute tolerance
	Rtol    float64 `json:"rtol"`    // relative tolerance
	FbTol   float64 `json:"fbtol"`   // tolerance for convergence on fb
	FbMin   float64 `json:"fbmin"`   // minimum value of fb
	DvgCtrl bool    `json:"dvgctrl"` // use divergence control
	NdvgMax int     `json:"ndvgmax"` // max number of continued divergence
	CteTg   bool    `json:"ctetg"`   // use constant tangent (modified Newton) during iterations
	ShowR   bool    `json:"showr"`   // show residual

	// pseudo-time stepping from previous to new boundary state
	Nsteps int     `json:"nsteps"` // number of pseudo-time steps
	DtMin  float64 `json:"dtmin"`  // minimum pseudo-time step after cutbacks

	// constants
	Eps float64 `json:"eps"` // smallest number satisfying 1.0 + ϵ > 1.0

	// derived
	Itol float64 `json:"-"` // iterations tolerance
}

// MatData holds material data
type MatData struct {
	Name  string   `json:"name"`  // name of material
	Model string   `json:"model"` // name of model; e.g. "neo-hooke", "lin-elast"
	Prms  fun.Prms `json:"prms"`  // parameters
}

// ElemData holds element data
type ElemData struct {
	Tag int    `json:"tag"` // tag of cells
	Mat string `json:"mat"` // material name
	Nip int    `json:"nip"` // number of integration points; 0 => use default
}

// Rve holds the description of a representative volume element
type Rve struct {

	// input data
	Desc      string      `json:"desc"`      // description
	Encoder   string      `json:"encoder"`   // encoder name for snapshots; "gob" or "json"
	Mshfile   string      `json:"mshfile"`   // file path of file with mesh data (if Mesh is not given)
	Mesh      *Mesh       `json:"mesh"`      // mesh given inline
	Mats      []*MatData  `json:"mats"`      // materials
	ElemsData []*ElemData `json:"elemsdata"` // elements data
	Coupling  string      `json:"coupling"`  // boundary coupling (keycode); e.g. "!type:periodic !tol:1e-7"
	Solver    SolverData  `json:"solver"`    // nested solver data

	// derived
	FnamePath string           `json:"-"` // complete filename path
	Key       string           `json:"-"` // filename key; e.g. cube.rve => cube
	EncType   string           `json:"-"` // encoder type
	etag2data map[int]*ElemData // maps cell tag to element data
	name2mat  map[string]*MatData
}

// ReadRve reads a RVE description from file
func ReadRve(fnamepath string) (o *Rve, err error) {
	fnamepath = os.ExpandEnv(fnamepath)
	b, err := io.ReadFile(fnamepath)
	if err != nil {
		return nil, chk.Err("cannot read RVE file %q:\n%v", fnamepath, err)
	}
	o, err = ParseRve(b, filepath.Dir(fnamepath))
	if err != nil {
		return nil, chk.Err("RVE file %q is invalid:\n%v", fnamepath, err)
	}
	o.FnamePath = fnamepath
	o.Key = io.FnKey(filepath.Base(fnamepath))
	return
}

// ParseRve decodes a RVE description
//  dir -- directory where the mesh file (if any) is located
func ParseRve(b []byte, dir string) (o *Rve, err error) {

	// set default values
	o = new(Rve)
	o.Solver.SetDefault()

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal RVE data:\n%v", err)
	}

	// encoder type
	o.EncType = o.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// mesh
	if o.Mesh == nil {
		if o.Mshfile == "" {
			return nil, chk.Err("either \"mesh\" or \"mshfile\" must be given")
		}
		o.Mesh, err = ReadMsh(dir, o.Mshfile)
		if err != nil {
			return
		}
	} else {
		err = o.Mesh.Init()
		if err != nil {
			return nil, chk.Err("inline mesh is invalid:\n%v", err)
		}
	}

	// materials
	if len(o.Mats) == 0 {
		return nil, chk.Err("at least one material must be given")
	}
	o.name2mat = make(map[string]*MatData)
	for _, m := range o.Mats {
		if _, ok := o.name2mat[m.Name]; ok {
			return nil, chk.Err("material %q is defined more than once", m.Name)
		}
		o.name2mat[m.Name] = m
	}

	// elements data
	o.etag2data = make(map[int]*ElemData)
	for _, ed := range o.ElemsData {
		if _, ok := o.name2mat[ed.Mat]; !ok {
			return nil, chk.Err("cannot find material %q for cells with tag %d", ed.Mat, ed.Tag)
		}
		o.etag2data[ed.Tag] = ed
	}
	for tag := range o.Mesh.CellTag2cells {
		if _, ok := o.etag2data[tag]; !ok {
			return nil, chk.Err("cannot find element data for cells with tag %d", tag)
		}
	}

	// set solver constants
	err = o.Solver.PostProcess()
	return
}

// Etag2data returns the ElemData corresponding to element tag
//  Note: returns nil if not found
func (o *Rve) Etag2data(etag int) *ElemData {
	return o.etag2data[etag]
}

// GetMat returns material data by name
//  Note: returns nil if not found
func (o *Rve) GetMat(name string) *MatData {
	return o.name2mat[name]
}

// Clone returns a copy of RVE data with an independent mesh
//  Note: materials and elements data are shared since they are read-only
func (o *Rve) Clone() (r *Rve) {
	r = new(Rve)
	*r = *o
	r.Mesh = o.Mesh.Clone()
	return
}

// SetDefault set defaults values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 20
	o.Atol = 1e-8
	o.Rtol = 1e-8
	o.FbTol = 1e-10
	o.FbMin = 1e-12
	o.NdvgMax = 20
	o.Nsteps = 1
	o.DtMin = 1e-3
	o.Eps = 1e-16
}

// PostProcess checks values and computes derived data
func (o *SolverData) PostProcess() (err error) {
	if o.NmaxIt < 1 {
		return chk.Err("nmaxit must be positive. %d is incorrect", o.NmaxIt)
	}
	if o.Rtol <= 0 || o.Atol <= 0 {
		return chk.Err("atol and rtol must be positive. atol=%g and rtol=%g are incorrect", o.Atol, o.Rtol)
	}
	if o.Nsteps < 1 {
		o.Nsteps = 1
	}
	o.Itol = utl.Max(10.0*o.Eps/o.Rtol, utl.Min(0.01, math.Sqrt(o.Rtol)))
	return
}
