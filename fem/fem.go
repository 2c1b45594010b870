// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem contains the elements and the implicit solver of the nested finite element problem
// of a representative volume element. Displacements are the only primary variables and the
// boundary coupling is imposed with Lagrange multipliers.
package fem

// Logger defines the sink of solver messages; e.g. *log.Logger
type Logger interface {
	Printf(format string, v ...interface{})
}

// nopLogger discards all messages
type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{}) {}
