// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	goio "io"
	"log"
	"sync"
)

// Diag is the diagnostic channel of nested solves. Messages of nested solvers are dropped while
// at least one Suppress scope is active; host-side warnings are always written.
//  Note: a nil *Diag discards everything
type Diag struct {
	mu     sync.Mutex
	lg     *log.Logger
	scopes int // number of active Suppress scopes
	nwarn  int // number of warnings written
}

// NewDiag returns a new diagnostic channel writing to w
func NewDiag(w goio.Writer, prefix string) *Diag {
	return &Diag{lg: log.New(w, prefix, 0)}
}

// Printf writes a message of nested solvers unless suppressed
func (o *Diag) Printf(format string, v ...interface{}) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scopes > 0 {
		return
	}
	o.lg.Printf(format, v...)
}

// Warnf writes a host-side warning; never suppressed
func (o *Diag) Warnf(format string, v ...interface{}) {
	if o == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nwarn++
	o.lg.Printf("WARNING: "+format, v...)
}

// Suppress silences nested messages until the returned function is called.
// The restore function may be called more than once.
func (o *Diag) Suppress() (restore func()) {
	if o == nil {
		return func() {}
	}
	o.mu.Lock()
	o.scopes++
	o.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.scopes--
			o.mu.Unlock()
		})
	}
}

// Silent tells whether nested messages are being suppressed
func (o *Diag) Silent() bool {
	if o == nil {
		return true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scopes > 0
}

// Nwarnings returns the number of warnings written so far
func (o *Diag) Nwarnings() int {
	if o == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nwarn
}
