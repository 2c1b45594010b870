// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	goio "io"
	"os"
	"path/filepath"
	"sync"

	"github.com/paddyschmidt/gofe2/inp"

	"github.com/cpmech/gosl/io"
)

// Event holds host lifecycle events observed by probes
type Event int

// events
const (
	EvInit   Event = iota // macro setup: open output and write initial state
	EvMajor               // converged (committed) macro increment
	EvMinor               // macro iteration; written only in debug mode
	EvSolved              // end of analysis: close output
)

var evnames = []string{"INIT", "MAJOR", "MINOR", "SOLVED"}

func (o Event) String() string {
	if o < 0 || int(o) >= len(evnames) {
		return io.Sf("Event(%d)", int(o))
	}
	return evnames[o]
}

// Probe writes the state of the RVE of one macro integration point to its own output file
type Probe struct {
	Eid   int    // macro element id
	Ip    int    // macro integration point index
	Path  string // output file
	Debug bool   // write on minor iterations too
	Diag  *Diag  // where failures are reported

	// Open opens the output; os.Create by default
	Open func(path string) (goio.WriteCloser, error)

	mu       sync.Mutex
	w        goio.WriteCloser
	disabled bool
	nsnap    int
}

// NewProbe returns a probe for the configuration or nil if no probe is requested
//  dirout -- directory for output if cfg.File is a relative path
func NewProbe(cfg inp.ProbeConfig, dirout string, diag *Diag) *Probe {
	if cfg.Eid < 0 {
		return nil
	}
	fn := cfg.File
	if fn == "" {
		fn = "rve.out"
	}
	if !filepath.IsAbs(fn) && dirout != "" {
		fn = filepath.Join(dirout, fn)
	}
	return &Probe{Eid: cfg.Eid, Ip: cfg.Ip, Path: fn, Debug: cfg.Debug, Diag: diag}
}

// Matches tells whether this probe observes the macro point (eid, ip)
func (o *Probe) Matches(eid, ip int) bool {
	return o != nil && o.Eid == eid && o.Ip == ip
}

// Disabled tells whether the probe has been disabled after a failure
func (o *Probe) Disabled() bool {
	if o == nil {
		return true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled
}

// Nsnapshots returns the number of snapshots written so far
func (o *Probe) Nsnapshots() int {
	if o == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nsnap
}

// Notify handles a lifecycle event of material m. Failures are reported once and then the probe
// is disabled.
func (o *Probe) Notify(ev Event, m *Material) {
	if o == nil || m == nil || !o.Matches(m.Eid, m.Ip) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disabled {
		return
	}
	var err error
	switch ev {
	case EvInit:
		err = o.open()
		if err == nil {
			err = o.write(ev, m)
		}
	case EvMajor:
		err = o.write(ev, m)
	case EvMinor:
		if o.Debug {
			err = o.write(ev, m)
		}
	case EvSolved:
		err = o.close()
	}
	if err != nil {
		o.Diag.Warnf("%v; probe disabled", err)
		o.disabled = true
		if o.w != nil {
			o.w.Close()
			o.w = nil
		}
	}
}

// open lazily opens the output
func (o *Probe) open() error {
	if o.w != nil {
		return nil
	}
	open := o.Open
	if open == nil {
		open = func(path string) (goio.WriteCloser, error) {
			err := os.MkdirAll(filepath.Dir(path), 0777)
			if err != nil {
				return nil, err
			}
			return os.Create(path)
		}
	}
	w, err := open(o.Path)
	if err != nil {
		return &ProbeOutputError{o.Path, "open", err}
	}
	o.w = w
	return nil
}

// write writes a snapshot: macro data followed by nodal displacements
func (o *Probe) write(ev Event, m *Material) error {
	err := o.open()
	if err != nil {
		return err
	}
	pt := &m.Pt
	l := io.Sf("# snapshot %d event %v element %d ip %d\n", o.nsnap, ev, m.Eid, m.Ip)
	l += io.Sf("F %v\nJ %g\n", pt.F, pt.J)
	l += io.Sf("energy macro %g micro %g diff %g\n", pt.MacroEnergy, pt.MicroEnergy, pt.EnergyDiff)
	l += io.Sf("%6s%23s%23s%23s\n", "vid", "ux", "uy", "uz")
	d := m.Inst.Dom
	for _, nod := range d.Nodes {
		u := d.NodeU(nod.Vert.Id)
		l += io.Sf("%6d%23.15e%23.15e%23.15e\n", nod.Vert.Id, u[0], u[1], u[2])
	}
	_, err = goio.WriteString(o.w, l)
	if err != nil {
		return &ProbeOutputError{o.Path, "write", err}
	}
	o.nsnap++
	return nil
}

// close closes the output
func (o *Probe) close() error {
	if o.w == nil {
		return nil
	}
	err := o.w.Close()
	o.w = nil
	if err != nil {
		return &ProbeOutputError{o.Path, "close", err}
	}
	return nil
}
