// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import "github.com/cpmech/gosl/io"

// ModelLoadError reports a malformed or missing RVE template
type ModelLoadError struct {
	Path string // template path; empty if data was given directly
	Err  error  // cause
}

func (o *ModelLoadError) Error() string {
	return io.Sf("cannot load RVE template %q:\n%v", o.Path, o.Err)
}

func (o *ModelLoadError) Unwrap() error { return o.Err }

// MultiscaleConvergenceError reports a nested solve that did not converge.
// The host must treat the macro deformation as inadmissible and cut back.
type MultiscaleConvergenceError struct {
	Eid    int    // macro element id
	Ip     int    // macro integration point index
	Reason string // why the nested solve failed
}

func (o *MultiscaleConvergenceError) Error() string {
	return io.Sf("RVE @ element %d, ip %d did not converge: %s", o.Eid, o.Ip, o.Reason)
}

// ProbeOutputError reports a failure to open or write the probe output
type ProbeOutputError struct {
	Path string // output path
	Op   string // "open", "write" or "close"
	Err  error  // cause
}

func (o *ProbeOutputError) Error() string {
	return io.Sf("probe cannot %s %q: %v", o.Op, o.Path, o.Err)
}

func (o *ProbeOutputError) Unwrap() error { return o.Err }

// ContractError reports a violation of the usage contract of an instance; e.g. tangent before
// stress or a periodic slave node without master
type ContractError struct {
	Msg string
}

func (o *ContractError) Error() string { return "contract violation: " + o.Msg }

func contractErr(msg string, prm ...interface{}) error {
	return &ContractError{io.Sf(msg, prm...)}
}
