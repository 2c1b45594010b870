// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/paddyschmidt/gofe2/ana"
	"github.com/paddyschmidt/gofe2/ckpt"
	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/out"
	"github.com/paddyschmidt/gofe2/rve"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "gofe2",
		Short: "FE² homogenisation of representative volume elements",
		Long: `gofe2 drives representative volume elements (RVEs) attached to macroscopic
integration points: each point owns an independent nested finite element model
whose averaged stress and tangent are computed for a given deformation gradient.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show messages")

	rootCmd.AddCommand(
		newRunCmd(),
		newInfoCmd(),
		newRestoreCmd(),
		newGenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		io.Verbose = true
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <template.rve>",
		Short: "Show summary of RVE template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			io.Verbose = true
			tpl, err := rve.LoadTemplate(args[0], nil)
			if err != nil {
				return err
			}
			msh := tpl.Rve.Mesh
			io.Pf("%s\n", tpl.Rve.Desc)
			io.Pf("%-16s = %d\n", "vertices", len(msh.Verts))
			io.Pf("%-16s = %d\n", "cells", len(msh.Cells))
			io.Pf("%-16s = %d\n", "boundary nodes", tpl.Boundary.Len())
			io.Pf("%-16s = %g\n", "V0", tpl.V0)
			io.Pf("%-16s = %v\n", "Xc", tpl.Xc)
			io.Pf("%-16s = %s\n", "coupling", tpl.Coupling.Name())
			io.Pf("%-16s = [%g, %g] × [%g, %g] × [%g, %g]\n", "box", msh.Xmin, msh.Xmax, msh.Ymin, msh.Ymax, msh.Zmin, msh.Zmax)
			for _, mat := range tpl.Rve.Mats {
				io.Pf("%-16s = %s (%s) %v\n", "material", mat.Name, mat.Model, mat.Prms)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a deformation path over a set of macro points",
		Long: `run evaluates npoints macro points in parallel along the path
F(t) = I + t (Fmax - I) (1 + spread (idx/(npoints-1) - 1/2)), t ∈ [0,1].
Increments are cut back when any RVE fails to converge.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			fn, _ := cmd.Flags().GetString("config")
			cfg, err := inp.LoadRunConfig(fn)
			if err != nil {
				return err
			}
			if tplfn, _ := cmd.Flags().GetString("rve"); tplfn != "" {
				cfg.Rve = tplfn
			}
			cfg.Verbose = cfg.Verbose || verbose
			io.Verbose = cfg.Verbose
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Run configuration file (YAML)")
	cmd.Flags().String("rve", "", "RVE template; overrides the configuration")
	return cmd
}

// run executes a host analysis
func run(ctx context.Context, cfg *inp.RunConfig) (err error) {

	// template and diagnostics
	if cfg.Rve == "" {
		return chk.Err("RVE template must be given")
	}
	err = os.MkdirAll(cfg.Dirout, 0777)
	if err != nil {
		return chk.Err("cannot create output directory:\n%v", err)
	}
	diag := rve.NewDiag(os.Stderr, "gofe2: ")
	tpl, err := rve.LoadTemplate(cfg.Rve, diag)
	if err != nil {
		return
	}
	var coupling rve.Coupling
	if cfg.Periodic != nil {
		coupling = rve.Displacement{}
		if *cfg.Periodic {
			coupling = rve.Periodic{Tol: inp.Ztol}
		}
	}

	// macro points
	mats := make([]*rve.Material, cfg.Npoints)
	for i := range mats {
		mats[i], err = rve.NewMaterial(tpl, i, 0, coupling, cfg.HmTol)
		if err != nil {
			return
		}
		mats[i].Probe = rve.NewProbe(cfg.Probe, cfg.Dirout, diag)
	}
	io.Pf("> %d points with %s coupling\n", len(mats), mats[0].Inst.Coupling.Name())

	// checkpoints
	var store *ckpt.Store
	if cfg.Checkpoint != "" {
		store, err = ckpt.Open(cfg.Checkpoint)
		if err != nil {
			return
		}
		defer store.Close()
	}

	// path
	path := func(idx int, t float64) [][]float64 {
		s := 1.0
		if cfg.Npoints > 1 {
			s += cfg.Spread * (float64(idx)/float64(cfg.Npoints-1) - 0.5)
		}
		F := make([][]float64, 3)
		for i := 0; i < 3; i++ {
			F[i] = make([]float64, 3)
			for j := 0; j < 3; j++ {
				δ := 0.0
				if i == j {
					δ = 1
				}
				F[i][j] = δ + t*s*(cfg.Fmax[i][j]-δ)
			}
		}
		return F
	}

	// run
	hist := out.NewHistory(mats)
	drv := &rve.Driver{Mats: mats, Workers: cfg.Workers, Nincs: cfg.Nincs, MaxCuts: cfg.MaxCuts, Diag: diag}
	err = drv.Run(ctx, path, func(inc int, t float64, σ [][][]float64) error {
		io.Pf("> increment %3d: t = %g\n", inc, t)
		if e := hist.Record(t, σ, mats); e != nil {
			return e
		}
		if store != nil {
			return store.SaveStep(ctx, inc, t, mats, tpl.Rve.EncType)
		}
		return nil
	})
	if err != nil {
		var mce *rve.MultiscaleConvergenceError
		if errors.As(err, &mce) {
			io.PfRed("RVE of element %d, ip %d does not converge\n", mce.Eid, mce.Ip)
		}
		return
	}
	io.Pf("> %d cutbacks; %d warnings\n", drv.Ncuts, diag.Nwarnings())

	// tangents
	Fs := make([][][]float64, len(mats))
	for i, m := range mats {
		Fs[i] = m.Pt.F
	}
	cs, err := drv.Tangents(Fs)
	if err != nil {
		return
	}
	for i, c := range cs {
		io.Pf("> point %d: c_xxxx = %g  c_xxyy = %g  c_xyxy = %g\n", i, c[0][0][0][0], c[0][0][1][1], c[0][1][0][1])
	}

	// comparison with homogeneous solution
	compare(tpl, hist, path)

	// results
	f, err := os.Create(filepath.Join(cfg.Dirout, "history.txt"))
	if err != nil {
		return chk.Err("cannot create history file:\n%v", err)
	}
	defer f.Close()
	err = hist.WriteTable(f)
	if err != nil {
		return chk.Err("cannot write history file:\n%v", err)
	}
	if cfg.Plot {
		p := out.NewPlotter(hist)
		p.Splot("stress path")
		p.PlotAll("Fxx", "sxx")
		p.Splot("Hill-Mandel")
		p.PlotAll("t", "dW")
		p.Draw(cfg.Dirout, "stresspath.png", false, nil)
	}
	return
}

// compare prints the max principal stress of the homogeneous solution if the RVE has one material
func compare(tpl *rve.Template, hist *out.History, path rve.PathFunc) {
	if len(tpl.Rve.Mats) != 1 {
		return
	}
	mat := tpl.Rve.Mats[0]
	var stress func(F [][]float64) [][]float64
	switch mat.Model {
	case "lin-elast":
		var sol ana.Hooke
		sol.Init(mat.Prms)
		stress = sol.Stress
	case "neo-hooke":
		var sol ana.NeoHooke
		sol.Init(mat.Prms)
		stress = sol.Stress
	default:
		return
	}
	for ipt := 0; ipt < hist.Npts; ipt++ {
		σ := stress(path(ipt, 1))
		s1 := hist.Last("s1", ipt)
		io.Pf("> point %d: σ1 = %g (homogeneous: %g)\n", ipt, s1, ana.PrincipalMax(σ))
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <checkpoint.db> <template.rve>",
		Short: "Read macro points back from a checkpoint and show their stresses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			io.Verbose = true
			ctx := cmd.Context()
			npts, _ := cmd.Flags().GetInt("npoints")
			step, _ := cmd.Flags().GetInt("step")
			store, err := ckpt.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()
			if step < 0 {
				var t float64
				step, t, err = store.LatestStep(ctx)
				if err != nil {
					return err
				}
				io.Pf("> latest step %d @ t = %g\n", step, t)
			}
			if npts < 1 {
				npts, err = store.Npoints(ctx, step)
				if err != nil {
					return err
				}
			}
			tpl, err := rve.LoadTemplate(args[1], nil)
			if err != nil {
				return err
			}
			var coupling rve.Coupling
			if periodic, _ := cmd.Flags().GetBool("periodic"); periodic {
				coupling = rve.Periodic{Tol: inp.Ztol}
			}
			mats := make([]*rve.Material, npts)
			for i := range mats {
				mats[i], err = rve.NewMaterial(tpl, i, 0, coupling, 1)
				if err != nil {
					return err
				}
			}
			err = store.LoadStep(ctx, step, mats)
			if err != nil {
				return err
			}
			dirvtu, _ := cmd.Flags().GetString("vtu")
			for _, m := range mats {
				σ, err := m.Inst.AveragedCauchyStress(m.Pt.F, m.Pt.J)
				if err != nil {
					return err
				}
				io.Pf("> element %d ip %d: F = %v\n  σ = %v\n", m.Eid, m.Ip, m.Pt.F, σ)
				if dirvtu != "" {
					err = writeVtu(dirvtu, step, m)
					if err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("npoints", 0, "Number of points; 0 means all points of the step")
	cmd.Flags().Int("step", -1, "Step to restore; negative means the latest")
	cmd.Flags().Bool("periodic", false, "Points were run with periodic coupling")
	cmd.Flags().String("vtu", "", "Directory to write the restored RVEs as VTU files")
	return cmd
}

// writeVtu writes the RVE of m to dir/rve-s<step>-e<eid>-ip<ip>.vtu
func writeVtu(dir string, step int, m *rve.Material) (err error) {
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return chk.Err("cannot create directory %q:\n%v", dir, err)
	}
	fn := filepath.Join(dir, io.Sf("rve-s%d-e%d-ip%d.vtu", step, m.Eid, m.Ip))
	f, err := os.Create(fn)
	if err != nil {
		return chk.Err("cannot create VTU file:\n%v", err)
	}
	defer f.Close()
	err = out.WriteVtu(f, m.Inst)
	if err != nil {
		return
	}
	io.Pf("file <%s> written\n", fn)
	return
}
