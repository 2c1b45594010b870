// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/paddyschmidt/gofe2/inp"

	"github.com/cpmech/gemlab"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

// genData holds the parameters of a structured cube RVE
type genData struct {
	N        int     // number of divisions along each direction
	L        float64 // side length
	Incl     bool    // stiff centre inclusion (n must be odd)
	Model    string  // material model
	E, Nu    float64 // matrix parameters
	Ratio    float64 // inclusion stiffness / matrix stiffness
	Periodic bool    // periodic coupling
	Builtin  bool    // use the built-in generator instead of gemlab
	Nparts   int     // number of partitions given to gemlab
}

func newGenCmd() *cobra.Command {
	var d genData
	cmd := &cobra.Command{
		Use:   "gen <name>",
		Short: "Generate a structured cube RVE template (<name>.rve and <name>.msh)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io.Verbose = true
			return generate(args[0], &d)
		},
	}
	cmd.Flags().IntVarP(&d.N, "ndiv", "n", 3, "Number of divisions along each direction")
	cmd.Flags().Float64VarP(&d.L, "length", "l", 1, "Side length")
	cmd.Flags().BoolVar(&d.Incl, "inclusion", false, "Stiff centre inclusion (odd ndiv only)")
	cmd.Flags().StringVar(&d.Model, "model", "neo-hooke", "Material model: neo-hooke or lin-elast")
	cmd.Flags().Float64Var(&d.E, "E", 1000, "Young's modulus of matrix")
	cmd.Flags().Float64Var(&d.Nu, "nu", 0.3, "Poisson's coefficient of matrix")
	cmd.Flags().Float64Var(&d.Ratio, "ratio", 10, "Inclusion to matrix stiffness ratio")
	cmd.Flags().BoolVar(&d.Periodic, "periodic", false, "Use periodic coupling")
	cmd.Flags().BoolVar(&d.Builtin, "builtin", false, "Use the built-in mesh generator")
	cmd.Flags().IntVar(&d.Nparts, "nparts", 1, "Number of partitions (gemlab)")
	return cmd
}

// generate writes <name>.msh and <name>.rve
func generate(name string, d *genData) (err error) {

	// check
	if d.N < 1 {
		return chk.Err("number of divisions must be positive. %d is incorrect", d.N)
	}
	if d.L <= 0 {
		return chk.Err("side length must be positive. %g is incorrect", d.L)
	}
	if d.Incl && d.N%2 == 0 {
		return chk.Err("inclusion requires an odd number of divisions. %d is incorrect", d.N)
	}
	name = strings.TrimSuffix(name, ".rve")
	dir, key := filepath.Dir(name), filepath.Base(name)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return chk.Err("cannot create directory %q:\n%v", dir, err)
	}

	// mesh
	var msh *inp.Mesh
	if d.Builtin {
		msh = inp.NewCubeMesh(d.N, d.L, d.Incl)
	} else {
		msh, err = genMesh(name, d)
		if err != nil {
			return
		}
	}
	err = os.WriteFile(name+".msh", []byte(msh.String()), 0644)
	if err != nil {
		return chk.Err("cannot write mesh file:\n%v", err)
	}

	// template
	var solver inp.SolverData
	solver.SetDefault()
	rve := inp.Rve{
		Desc:    io.Sf("structured %d×%d×%d cube RVE", d.N, d.N, d.N),
		Encoder: "gob",
		Mshfile: key + ".msh",
		Mats: []*inp.MatData{
			{Name: "matrix", Model: d.Model, Prms: fun.Prms{&fun.Prm{N: "E", V: d.E}, &fun.Prm{N: "nu", V: d.Nu}}},
		},
		ElemsData: []*inp.ElemData{{Tag: -1, Mat: "matrix"}},
		Solver:    solver,
	}
	if d.Incl {
		rve.Desc += " with centre inclusion"
		rve.Mats = append(rve.Mats, &inp.MatData{Name: "inclusion", Model: d.Model,
			Prms: fun.Prms{&fun.Prm{N: "E", V: d.E * d.Ratio}, &fun.Prm{N: "nu", V: d.Nu}}})
		rve.ElemsData = append(rve.ElemsData, &inp.ElemData{Tag: -2, Mat: "inclusion"})
	}
	if d.Periodic {
		rve.Coupling = "!type:periodic"
	}
	b, err := json.MarshalIndent(&rve, "", "  ")
	if err != nil {
		return chk.Err("cannot marshal RVE template:\n%v", err)
	}
	err = os.WriteFile(name+".rve", b, 0644)
	if err != nil {
		return chk.Err("cannot write RVE template:\n%v", err)
	}

	// check by reading back
	_, err = inp.ReadRve(name + ".rve")
	if err != nil {
		return chk.Err("generated RVE template is invalid:\n%v", err)
	}
	io.Pf("file <%s.msh> written\nfile <%s.rve> written\n", name, name)
	return
}

// genMesh generates a structured hex8 mesh with gemlab; the centre cell is retagged as inclusion
func genMesh(name string, d *genData) (msh *inp.Mesh, err error) {
	L := d.L
	var gd gemlab.InData
	gd.Nparts = d.Nparts
	gd.Sregs = &gemlab.Sregs{
		Tags: []int{-1},
		Nxs:  []int{d.N},
		Nys:  []int{d.N},
		Nzs:  []int{d.N},
		Points: [][]float64{
			{0, 0, 0}, {L, 0, 0}, {L, L, 0}, {0, L, 0},
			{0, 0, L}, {L, 0, L}, {L, L, L}, {0, L, L},
		},
		Conn:  [][]int{{0, 1, 2, 3, 4, 5, 6, 7}},
		Btags: [][]int{{-10, -11, -20, -21, -30, -31}},
	}
	err = gemlab.Generate(name, &gd)
	if err != nil {
		return nil, chk.Err("gemlab failed:\n%v", err)
	}
	b, err := io.ReadFile(name + ".msh")
	if err != nil {
		return nil, chk.Err("cannot read generated mesh:\n%v", err)
	}
	msh = new(inp.Mesh)
	err = json.Unmarshal(b, msh)
	if err != nil {
		return nil, chk.Err("cannot unmarshal generated mesh:\n%v", err)
	}
	for _, c := range msh.Cells {
		if c.Type == "" && len(c.Verts) == 8 {
			c.Type = "hex8"
		}
	}

	// retag centre cell
	if d.Incl {
		h := L / float64(d.N)
		lo, hi := L/2-h/2, L/2+h/2
		for _, c := range msh.Cells {
			xc := make([]float64, 3)
			for _, vid := range c.Verts {
				for i := 0; i < 3; i++ {
					xc[i] += msh.Verts[vid].C[i] / float64(len(c.Verts))
				}
			}
			inside := true
			for i := 0; i < 3; i++ {
				if xc[i] < lo || xc[i] > hi {
					inside = false
				}
			}
			if inside {
				c.Tag = -2
			}
		}
	}
	err = msh.Init()
	return
}
