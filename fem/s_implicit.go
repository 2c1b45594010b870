// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// Run solves the nested problem using an implicit procedure (with Newton-Raphson method).
// The constraint values are ramped in pseudo-time from the committed to the target values.
// On success, the targets are committed and the element stiffness matrices are retained.
// On failure, the solution and internal variables are restored to the state before the call.
func (o *Domain) Run(lg Logger) (err error) {

	// logger
	if lg == nil {
		lg = nopLogger{}
	}

	// solver data
	sd := o.Rve.Solver
	nsteps := sd.Nsteps
	if nsteps < 1 {
		nsteps = 1
	}

	// save state to recover from failures
	o.save()
	o.Sum.Nruns += 1
	o.Sum.Resids = utl.DblSlist{}
	defer func() {
		if err != nil {
			o.load()
		}
	}()

	// auxiliary
	md := 1.0    // time step multiplier if divergence control is on
	ndiverg := 0 // number of steps diverging

	// pseudo-time loop
	t := 0.0
	o.Sol.T = t
	var Δt float64
	for t < 1 {

		// check for continued divergence
		if ndiverg >= sd.NdvgMax {
			return chk.Err("continuous divergence after %d steps reached", ndiverg)
		}

		// time increment
		Δt = md / float64(nsteps)
		if t+Δt >= 1-1e-10 {
			Δt = 1 - t
		}
		if Δt < sd.DtMin && md < 1 {
			return chk.Err("Δt increment is too small: %g < %g", Δt, sd.DtMin)
		}

		// backup solution
		o.backup()

		// time update
		t += Δt
		o.Sol.T = t

		// run iterations
		diverging, e := o.run_iterations(t, lg)
		if e != nil || diverging {
			if !sd.DvgCtrl {
				if e == nil {
					e = chk.Err("iterations diverging")
				}
				return chk.Err("nested problem failed @ t=%g:\n%v", t, e)
			}
			lg.Printf(". . . iterations diverging or failed (%2d) @ t=%g . . . %v", ndiverg+1, t, e)
			o.restore()
			t -= Δt
			o.Sol.T = t
			md *= 0.5
			ndiverg += 1
			o.Sum.Ncuts += 1
			continue
		}
		ndiverg = 0
		md = 1.0
		o.Sum.Nsteps += 1
	}
	o.Sol.T = 1

	// success
	o.EssenBcs.Commit()
	return o.retain()
}

// run_iterations solves the nonlinear problem at pseudo-time t
func (o *Domain) run_iterations(t float64, lg Logger) (diverging bool, err error) {

	// zero accumulated increments
	la.VecFill(o.Sol.ΔY, 0)

	// auxiliary variables
	sd := o.Rve.Solver
	var it int
	var largFb, largFb0, Lδu float64
	var prevFb, prevLδu float64

	// message
	if sd.ShowR {
		lg.Printf("%13s%4s%23s%23s", "t", "it", "largFb", "Lδu")
		defer func() {
			lg.Printf("%13.6e%4d%23.15e%23.15e", t, it, largFb, Lδu)
		}()
	}

	// iterations
	for it = 0; it < sd.NmaxIt; it++ {
		o.Sum.Niters += 1

		// assemble right-hand side vector (fb) with negative of residuals
		la.VecFill(o.Fb, 0)
		for _, e := range o.Elems {
			err = e.AddToRhs(o.Fb, o.Sol)
			if err != nil {
				return
			}
		}

		// essential boundary conditioins; e.g. constraints
		o.EssenBcs.AddToRhs(o.Fb, o.Sol, t)

		// find largest absolute component of fb
		largFb = la.VecLargest(o.Fb, 1)
		if math.IsNaN(largFb) || math.IsInf(largFb, 0) {
			return false, chk.Err("residual is not finite")
		}

		// save residual
		o.Sum.Resids.Append(it == 0, largFb)

		// check largFb value
		if it == 0 {
			// store largest absolute component of fb
			largFb0 = largFb
			// nothing to do; e.g. constraints already satisfied and no forces
			if largFb < sd.FbMin {
				break
			}
		} else {
			// check convergence on Lf0
			if largFb < sd.FbTol*largFb0 { // converged on fb
				break
			}
			// check convergence on fb_min
			if largFb < sd.FbMin { // converged with smallest value of fb
				break
			}
		}

		// check divergence on fb
		if it > 1 && sd.DvgCtrl {
			if largFb > prevFb {
				diverging = true
				return
			}
		}
		prevFb = largFb

		// assemble Jacobian matrix
		do_asm_fact := (it == 0 || !sd.CteTg)
		if do_asm_fact {

			// assemble element matrices
			o.Kb.Zero()
			for _, e := range o.Elems {
				err = e.AddToKb(o.Kb, o.Sol, it == 0)
				if err != nil {
					return
				}
			}

			// join A and tr(A) matrices into Kb
			o.EssenBcs.AddToKb(o.Kb, o.Ny)

			// perform factorisation
			err = o.LinSol.Fact()
			if err != nil {
				return false, chk.Err("factorisation failed:\n%v", err)
			}
		}

		// solve for wb := δyb
		err = o.LinSol.Solve()
		if err != nil {
			return
		}

		// update primary variables (y)
		for i := 0; i < o.Ny; i++ {
			o.Sol.Y[i] += o.Wb[i]  // y += δy
			o.Sol.ΔY[i] += o.Wb[i] // ΔY += δy
		}

		// update Lagrange multipliers (λ)
		for i := 0; i < o.Nlam; i++ {
			o.Sol.L[i] += o.Wb[o.Ny+i] // λ += δλ
		}

		// backup / restore
		if it == 0 {
			// create backup copy of all secondary variables
			for _, e := range o.ElemIntvars {
				e.BackupIvs(false)
			}
		} else {
			// recover last converged state from backup copy
			for _, e := range o.ElemIntvars {
				e.RestoreIvs(false)
			}
		}

		// update secondary variables
		for _, e := range o.Elems {
			err = e.Update(o.Sol)
			if err != nil {
				return
			}
		}

		// compute RMS norm of δu and check convegence on δu
		Lδu = la.VecRmsErr(o.Wb[:o.Ny], sd.Atol, sd.Rtol, o.Sol.Y[:o.Ny])

		// message
		if sd.ShowR {
			lg.Printf("%13.6e%4d%23.15e%23.15e", t, it, largFb, Lδu)
		}

		// stop if converged on δu
		if Lδu < sd.Itol {
			break
		}

		// check divergence on Lδu
		if it > 1 && sd.DvgCtrl {
			if Lδu > prevLδu {
				diverging = true
				return
			}
		}
		prevLδu = Lδu
	}

	// check if iterations diverged
	if it == sd.NmaxIt {
		return false, chk.Err("max number of iterations reached: it = %d", it)
	}
	return
}
