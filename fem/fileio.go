// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// bcsData holds the values of constraints that go to snapshots
type bcsData struct {
	C0 []float64 // committed values
	C1 []float64 // target values
}

// Encode writes the converged state of domain: solution, constraints and internal variables
func (o *Domain) Encode(enc Encoder) (err error) {

	// encode Sol
	err = enc.Encode(o.Sol.Y)
	if err != nil {
		return chk.Err("cannot encode Domain.Sol.Y\n%v", err)
	}
	err = enc.Encode(o.Sol.L)
	if err != nil {
		return chk.Err("cannot encode Domain.Sol.L\n%v", err)
	}

	// encode constraints
	var bcs bcsData
	for _, bc := range o.EssenBcs.Bcs {
		bcs.C0 = append(bcs.C0, bc.C0)
		bcs.C1 = append(bcs.C1, bc.C1)
	}
	err = enc.Encode(bcs)
	if err != nil {
		return chk.Err("cannot encode constraints\n%v", err)
	}
	for _, g := range o.EssenBcs.Affine {
		err = enc.Encode(g.Fmacro)
		if err != nil {
			return chk.Err("cannot encode macroscopic deformation\n%v", err)
		}
	}
	for _, g := range o.EssenBcs.Periodic {
		err = enc.Encode(g.Fmacro)
		if err != nil {
			return chk.Err("cannot encode macroscopic deformation\n%v", err)
		}
	}

	// encode internal variables
	for _, e := range o.Elems {
		err = e.Encode(enc)
		if err != nil {
			return chk.Err("cannot encode element %d:\n%v", e.Id(), err)
		}
	}
	return
}

// Decode performs the inverse operation of Encode. The domain must have been built with the same
// RVE and coupling. The element stiffness matrices are recomputed at the decoded state.
//  Note: internal variables may be partially overwritten if an error is returned
func (o *Domain) Decode(dec Decoder) (err error) {

	// decode Sol
	var y, l []float64
	err = dec.Decode(&y)
	if err != nil {
		return chk.Err("cannot decode Domain.Sol.Y\n%v", err)
	}
	err = dec.Decode(&l)
	if err != nil {
		return chk.Err("cannot decode Domain.Sol.L\n%v", err)
	}
	if len(y) != o.Ny || len(l) != o.Nlam {
		return chk.Err("snapshot does not match domain: ny=%d nλ=%d != %d %d", len(y), len(l), o.Ny, o.Nlam)
	}

	// decode constraints
	var bcs bcsData
	err = dec.Decode(&bcs)
	if err != nil {
		return chk.Err("cannot decode constraints\n%v", err)
	}
	if len(bcs.C0) != len(o.EssenBcs.Bcs) || len(bcs.C1) != len(o.EssenBcs.Bcs) {
		return chk.Err("snapshot does not match domain: number of constraints is incorrect")
	}
	for _, g := range o.EssenBcs.Affine {
		err = dec.Decode(&g.Fmacro)
		if err != nil {
			return chk.Err("cannot decode macroscopic deformation\n%v", err)
		}
	}
	for _, g := range o.EssenBcs.Periodic {
		err = dec.Decode(&g.Fmacro)
		if err != nil {
			return chk.Err("cannot decode macroscopic deformation\n%v", err)
		}
	}

	// decode internal variables
	for _, e := range o.Elems {
		err = e.Decode(dec)
		if err != nil {
			return chk.Err("cannot decode element %d:\n%v", e.Id(), err)
		}
	}

	// set state
	copy(o.Sol.Y, y)
	copy(o.Sol.L, l)
	la.VecFill(o.Sol.ΔY, 0)
	o.Sol.T = 1
	for i, bc := range o.EssenBcs.Bcs {
		bc.C0 = bcs.C0[i]
		bc.C1 = bcs.C1[i]
	}
	return o.retain()
}

// EncodeBytes encodes the converged state of domain using the RVE encoder type
func (o *Domain) EncodeBytes() (b []byte, err error) {
	var buf bytes.Buffer
	err = o.Encode(GetEncoder(&buf, o.Rve.EncType))
	if err != nil {
		return
	}
	return buf.Bytes(), nil
}

// DecodeBytes decodes the converged state of domain using the RVE encoder type
func (o *Domain) DecodeBytes(b []byte) (err error) {
	return o.Decode(GetDecoder(bytes.NewReader(b), o.Rve.EncType))
}
