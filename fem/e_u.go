// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/paddyschmidt/gofe2/inp"
	"github.com/paddyschmidt/gofe2/msolid"
	"github.com/paddyschmidt/gofe2/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// ElemU represents a solid element with displacements u as primary variables.
// A total Lagrangian formulation is used: all integrals are computed over the reference volume.
//
//  f_int[m,i] = ∫ P_iJ G0_mJ dV0
//  K[m,i][n,k] = ∫ G0_mJ A_iJkL G0_nL dV0
//
type ElemU struct {

	// basic data
	Cell *inp.Cell   // the cell structure
	X    [][]float64 // matrix of reference nodal coordinates [ndim][nnode]
	Shp  *shp.Shape  // shape structure
	Nu   int         // total number of unknowns
	Ndim int         // space dimension

	// integration points
	IpsElem []shp.Ipoint  // integration points of element
	G0      [][][]float64 // [nip][nverts][ndim] derivatives of shape functions w.r.t reference coordinates
	DV0     []float64     // [nip] reference volume associated with each ip: det(dXdR)・w

	// material model and internal variables
	Model    msolid.Model // material model
	MdlLarge msolid.Large // model specialisation for large deformations

	// internal variables
	States    []*msolid.State // [nip] states
	StatesBkp []*msolid.State // [nip] backup states
	StatesAux []*msolid.State // [nip] auxiliary backup states

	// problem variables
	Umap []int // assembly map (location array/element equations)

	// stiffness retained at the last converged state
	Kret [][]float64 // [nu][nu]

	// scratchpad. computed @ each ip
	F [][]float64     // [ndim][ndim] deformation gradient
	A [][][][]float64 // first elasticity tensor
	K [][]float64     // [nu][nu] consistent tangent (stiffness) matrix
}

// NewElemU allocates a new solid element
//  goroutineId -- use > 0 to get an independent copy of the shape structure
func NewElemU(cell *inp.Cell, rve *inp.Rve, goroutineId int) (o *ElemU, err error) {

	// basic data
	o = new(ElemU)
	o.Cell = cell
	o.X = BuildCoordsMatrix(cell, rve.Mesh)
	o.Shp = shp.Get(cell.Type, goroutineId)
	if o.Shp == nil {
		return nil, chk.Err("cannot find shape type %q of cell %d", cell.Type, cell.Id)
	}
	o.Ndim = len(o.X)
	o.Nu = o.Ndim * o.Shp.Nverts

	// element data
	edat := rve.Etag2data(cell.Tag)
	if edat == nil {
		return nil, chk.Err("cannot get data for element {tag=%d, id=%d}", cell.Tag, cell.Id)
	}

	// integration points
	o.IpsElem, err = shp.GetIps(cell.Type, edat.Nip)
	if err != nil {
		return nil, chk.Err("cannot allocate integration points of solid element with nip=%d:\n%v", edat.Nip, err)
	}
	nip := len(o.IpsElem)

	// reference configuration
	o.G0 = make([][][]float64, nip)
	o.DV0 = make([]float64, nip)
	for idx, ip := range o.IpsElem {
		err = o.Shp.CalcAtIp(o.X, ip, true)
		if err != nil {
			return nil, chk.Err("ElemU: eid=%d: cannot compute shape functions at ip %d:\n%v", cell.Id, idx, err)
		}
		if o.Shp.J <= 0 {
			return nil, chk.Err("ElemU: eid=%d: Jacobian is non-positive = %g", cell.Id, o.Shp.J)
		}
		o.G0[idx] = la.MatClone(o.Shp.G)
		o.DV0[idx] = o.Shp.J * ip[3]
	}

	// model
	o.Model, o.MdlLarge, err = GetAndInitSolidModel(rve, edat.Mat, o.Ndim)
	if err != nil {
		return nil, chk.Err("cannot get model for solid element {tag=%d id=%d material=%q}:\n%v", cell.Tag, cell.Id, edat.Mat, err)
	}

	// scratchpad
	o.F = la.MatAlloc(o.Ndim, o.Ndim)
	o.A = msolid.Alloc4()
	o.K = la.MatAlloc(o.Nu, o.Nu)
	return
}

// Id returns the cell Id
func (o ElemU) Id() int { return o.Cell.Id }

// Verts returns the vertex ids of element
func (o ElemU) Verts() []int { return o.Cell.Verts }

// SetEqs set equations
func (o *ElemU) SetEqs(eqs [][]int) (err error) {
	if len(eqs) != o.Shp.Nverts {
		return chk.Err("ElemU: eid=%d: number of nodes in eqs must be %d. %d is incorrect", o.Id(), o.Shp.Nverts, len(eqs))
	}
	o.Umap = make([]int, o.Nu)
	for m := 0; m < o.Shp.Nverts; m++ {
		for i := 0; i < o.Ndim; i++ {
			r := i + m*o.Ndim
			o.Umap[r] = eqs[m][i]
		}
	}
	return
}

// AddToRhs adds -R to global residual vector fb
func (o *ElemU) AddToRhs(fb []float64, sol *Solution) (err error) {
	nverts := o.Shp.Nverts
	for idx := range o.IpsElem {
		coef := o.DV0[idx]
		G := o.G0[idx]
		P := o.States[idx].P
		for m := 0; m < nverts; m++ {
			for i := 0; i < o.Ndim; i++ {
				r := o.Umap[i+m*o.Ndim]
				for j := 0; j < o.Ndim; j++ {
					fb[r] -= coef * P[i][j] * G[m][j] // -fi
				}
			}
		}
	}
	return
}

// AddToKb adds element K to global Jacobian matrix Kb
func (o *ElemU) AddToKb(Kb *mat.Dense, sol *Solution, firstIt bool) (err error) {
	err = o.calcK(o.K, firstIt)
	if err != nil {
		return
	}
	for i, I := range o.Umap {
		for j, J := range o.Umap {
			Kb.Set(I, J, Kb.At(I, J)+o.K[i][j])
		}
	}
	return
}

// Update perform (tangent) update
func (o *ElemU) Update(sol *Solution) (err error) {
	for idx := range o.IpsElem {
		o.calcF(o.F, idx, sol)
		err = o.MdlLarge.Update(o.States[idx], o.F, nil)
		if err != nil {
			return chk.Err("Update failed (eid=%d, ip=%d)\nF=%v\n%v", o.Id(), idx, o.F, err)
		}
	}
	return
}

// RetainK computes and keeps K at the current state
func (o *ElemU) RetainK(sol *Solution) (err error) {
	if o.Kret == nil {
		o.Kret = la.MatAlloc(o.Nu, o.Nu)
	}
	return o.calcK(o.Kret, false)
}

// RetainedK returns the stiffness matrix computed at the last converged state
func (o ElemU) RetainedK() [][]float64 { return o.Kret }

// internal variables ///////////////////////////////////////////////////////////////////////////////

// Ipoints returns the real coordinates of integration points [nip][ndim]
func (o ElemU) Ipoints() (coords [][]float64) {
	coords = la.MatAlloc(len(o.IpsElem), o.Ndim)
	for idx, ip := range o.IpsElem {
		coords[idx] = o.Shp.IpRealCoords(o.X, ip)
	}
	return
}

// IpVolumes returns the reference volume associated with each ip
func (o ElemU) IpVolumes() []float64 { return o.DV0 }

// Ivs returns the current internal variables
func (o ElemU) Ivs() []*msolid.State { return o.States }

// SetIniIvs sets initial ivs
func (o *ElemU) SetIniIvs(sol *Solution) (err error) {
	nip := len(o.IpsElem)
	o.States = make([]*msolid.State, nip)
	o.StatesBkp = make([]*msolid.State, nip)
	o.StatesAux = make([]*msolid.State, nip)
	σ := make([]float64, 2*o.Ndim)
	for i := 0; i < nip; i++ {
		o.States[i], err = o.Model.InitIntVars(σ)
		if err != nil {
			return
		}
		o.StatesBkp[i] = o.States[i].GetCopy()
		o.StatesAux[i] = o.States[i].GetCopy()
	}
	return
}

// BackupIvs create copy of internal variables
func (o *ElemU) BackupIvs(aux bool) (err error) {
	if aux {
		for i, s := range o.StatesAux {
			s.Set(o.States[i])
		}
		return
	}
	for i, s := range o.StatesBkp {
		s.Set(o.States[i])
	}
	return
}

// RestoreIvs restore internal variables from copies
func (o *ElemU) RestoreIvs(aux bool) (err error) {
	if aux {
		for i, s := range o.States {
			s.Set(o.StatesAux[i])
		}
		return
	}
	for i, s := range o.States {
		s.Set(o.StatesBkp[i])
	}
	return
}

// writer ///////////////////////////////////////////////////////////////////////////////////////////

// Encode encodes internal variables
func (o ElemU) Encode(enc Encoder) (err error) {
	return enc.Encode(o.States)
}

// Decode decodes internal variables
func (o *ElemU) Decode(dec Decoder) (err error) {
	var states []*msolid.State
	err = dec.Decode(&states)
	if err != nil {
		return
	}
	if len(states) != len(o.States) {
		return chk.Err("ElemU: eid=%d: number of decoded states is incorrect. %d != %d", o.Id(), len(states), len(o.States))
	}
	for i, s := range o.States {
		s.Set(states[i])
	}
	return o.BackupIvs(false)
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// calcF computes the deformation gradient at integration point idx
//  F_iJ = δ_iJ + Σ_m u[m,i]・G0_mJ
func (o *ElemU) calcF(F [][]float64, idx int, sol *Solution) {
	G := o.G0[idx]
	for i := 0; i < o.Ndim; i++ {
		for j := 0; j < o.Ndim; j++ {
			F[i][j] = 0
			if i == j {
				F[i][j] = 1
			}
			for m := 0; m < o.Shp.Nverts; m++ {
				F[i][j] += sol.Y[o.Umap[i+m*o.Ndim]] * G[m][j]
			}
		}
	}
}

// calcK computes the element stiffness matrix using the current states
func (o *ElemU) calcK(K [][]float64, firstIt bool) (err error) {
	la.MatFill(K, 0)
	nverts := o.Shp.Nverts
	for idx := range o.IpsElem {

		// first elasticity tensor
		err = o.MdlLarge.CalcA(o.A, o.States[idx], firstIt)
		if err != nil {
			return chk.Err("CalcA failed (eid=%d, ip=%d)\n%v", o.Id(), idx, err)
		}

		// K[m,i][n,k] += G0_mJ A_iJkL G0_nL dV0
		coef := o.DV0[idx]
		G := o.G0[idx]
		for m := 0; m < nverts; m++ {
			for i := 0; i < o.Ndim; i++ {
				r := i + m*o.Ndim
				for n := 0; n < nverts; n++ {
					for k := 0; k < o.Ndim; k++ {
						c := k + n*o.Ndim
						for J := 0; J < o.Ndim; J++ {
							for L := 0; L < o.Ndim; L++ {
								K[r][c] += coef * G[m][J] * o.A[i][J][k][L] * G[n][L]
							}
						}
					}
				}
			}
		}
	}
	return
}
