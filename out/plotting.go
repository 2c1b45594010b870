// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
	"github.com/cpmech/gosl/utl"
)

// PltEntity stores all data for a plot entity (X vs Y)
type PltEntity struct {
	Alias string    // alias
	X     []float64 // x-values
	Y     []float64 // y-values
	Xlbl  string    // horizontal axis label (raw; e.g. "t")
	Ylbl  string    // vertical axis label (raw; e.g. "sxx")
	Style plt.Fmt   // style
}

// SplotDat stores all data for one subplot
type SplotDat struct {
	Title  string       // title of subplot
	Topts  string       // title options
	Xscale float64      // x-axis scale
	Yscale float64      // y-axis scale
	Xlbl   string       // x-axis label (formatted; e.g. "$t$")
	Ylbl   string       // y-axis label (formatted; e.g. "$\sigma_{xx}$")
	Data   []*PltEntity // data and styles to be plotted
}

// Plotter collects subplots of histories
type Plotter struct {
	Hist   *History    // results
	Splots []*SplotDat // all subplots
	Csplot *SplotDat   // current subplot
}

// NewPlotter returns a plotter of h
func NewPlotter(h *History) *Plotter {
	return &Plotter{Hist: h}
}

// Splot activates a new subplot window
func (o *Plotter) Splot(splotTitle string) {
	s := &SplotDat{Title: splotTitle}
	o.Splots = append(o.Splots, s)
	o.Csplot = s
}

// SplotConfig configures units and scales of axes
func (o *Plotter) SplotConfig(xunit, yunit string, xscale, yscale float64) {
	if o.Csplot != nil {
		var xlabel, ylabel string
		if len(o.Csplot.Data) > 0 {
			xlabel = o.Csplot.Data[0].Xlbl
			ylabel = o.Csplot.Data[0].Ylbl
		}
		o.Csplot.Xlbl = GetTexLabel(xlabel, xunit)
		o.Csplot.Ylbl = GetTexLabel(ylabel, yunit)
		o.Csplot.Xscale = xscale
		o.Csplot.Yscale = yscale
	}
}

// Plot plots data
//  xHandle -- can be a string, e.g. "t" or a slice, e.g. Fxx = []float64{1, 1.1, 1.2}
//  yHandle -- can be a string, e.g. "sxx" or a slice
//  ipt     -- index of macro point
//  fm      -- formatting codes; e.g. plt.Fmt{C:"blue", L:"label"}
func (o *Plotter) Plot(xHandle, yHandle interface{}, ipt int, fm plt.Fmt) {
	var e PltEntity
	e.Alias = io.Sf("e%d:ip%d", o.Hist.Eids[ipt], o.Hist.Ips[ipt])
	e.Style = fm
	e.X, e.Xlbl = o.get_vals_and_labels(xHandle, ipt)
	e.Y, e.Ylbl = o.get_vals_and_labels(yHandle, ipt)
	if len(e.X) != len(e.Y) {
		chk.Panic("lengths of x- and y-series are different. len(x)=%d, len(y)=%d, x=%v, y=%v", len(e.X), len(e.Y), xHandle, yHandle)
	}
	if o.Csplot == nil {
		o.Splot("")
	}
	o.Csplot.Data = append(o.Csplot.Data, &e)
	o.SplotConfig("", "", 1, 1)
}

// PlotAll plots yHandle versus xHandle for all points in the current subplot
func (o *Plotter) PlotAll(xHandle, yHandle interface{}) {
	for ipt := 0; ipt < o.Hist.Npts; ipt++ {
		o.Plot(xHandle, yHandle, ipt, plt.Fmt{M: "."})
	}
}

// ExtraPlt defines a callback function for extra plt commands
//  Note: i and j are indices as in Subplot
type ExtraPlt func(i, j, nplots int)

// Draw draws or save figure with plot
//  dirout -- directory to save figure
//  fname  -- file name; e.g. myplot.eps or myplot.png. Use "" to skip saving
//  show   -- shows figure
//  extra  -- is called just after Subplot command and before any plotting
func (o *Plotter) Draw(dirout, fname string, show bool, extra ExtraPlt) {
	nplots := len(o.Splots)
	if nplots == 0 {
		return
	}
	plt.Reset()
	if strings.HasSuffix(fname, ".eps") {
		plt.SetForEps(0.75, 500)
	} else {
		plt.SetForPng(0.75, 500, 150)
	}
	nr, nc := utl.BestSquare(nplots)
	var k int
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if k >= nplots {
				break
			}
			plt.Subplot(nr, nc, k+1)
			if extra != nil {
				extra(i+1, j+1, nplots)
			}
			if o.Splots[k].Title != "" {
				plt.Title(o.Splots[k].Title, o.Splots[k].Topts)
			}
			for _, d := range o.Splots[k].Data {
				if d.Style.L == "" {
					d.Style.L = d.Alias
				}
				x, y := scaled(d.X, o.Splots[k].Xscale), scaled(d.Y, o.Splots[k].Yscale)
				plt.Plot(x, y, d.Style.GetArgs("clip_on=0"))
			}
			plt.Gll(o.Splots[k].Xlbl, o.Splots[k].Ylbl, "")
			k += 1
		}
	}
	if fname != "" {
		plt.SaveD(dirout, fname)
	}
	if show {
		plt.Show()
	}
}

// GetTexLabel returns a TeX label for key; e.g. "sxx" => "$\sigma_{xx}$". Unknown keys are
// returned unchanged
func GetTexLabel(key, unit string) (l string) {
	switch {
	case key == "t":
		l = "$t$"
	case key == "s1":
		l = `$\sigma_1$`
	case key == "J":
		l = "$J$"
	case key == "Wmac":
		l = `$\bar{P}:\bar{F}$`
	case key == "Wmic":
		l = `$\langle P:F \rangle$`
	case key == "dW":
		l = `$\langle P:F \rangle - \bar{P}:\bar{F}$`
	case len(key) == 3 && key[0] == 's':
		l = io.Sf(`$\sigma_{%s}$`, key[1:])
	case len(key) == 3 && key[0] == 'F':
		l = io.Sf(`$F_{%s}$`, key[1:])
	default:
		l = key
	}
	if unit != "" {
		l += " " + unit
	}
	return
}

// auxiliary /////////////////////////////////////////////////////////////////////////////////////////

func (o *Plotter) get_vals_and_labels(handle interface{}, ipt int) ([]float64, string) {
	switch hnd := handle.(type) {
	case []float64:
		return hnd, "data"
	case string:
		if hnd == "t" {
			return o.Hist.T, "t"
		}
		return o.Hist.Get(hnd, ipt, -1), hnd
	}
	chk.Panic("cannot get values slice with handle = %v", handle)
	return nil, ""
}

func scaled(v []float64, coef float64) []float64 {
	if coef == 0 || coef == 1 {
		return v
	}
	res := make([]float64, len(v))
	for i, x := range v {
		res[i] = coef * x
	}
	return res
}
