package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/signalsfoundry/laserhazard/model"
)

// Domain of the limit tables.
const (
	MinWavelengthNm  = 180.0
	MaxWavelengthNm  = 1e6
	MinExposureTimeS = 1e-13
	MaxExposureTimeS = 3e4
)

// Region is one of the fixed wavelength regions the limit tables are keyed
// on.
type Region int

const (
	RegionUVC        Region = iota // 180–302.5 nm
	RegionUVB                      // 302.5–315 nm
	RegionUVA                      // 315–400 nm
	RegionVisible                  // 400–700 nm
	RegionNearIR                   // 700–1050 nm
	RegionNearIRLong               // 1050–1400 nm
	RegionIR1400                   // 1400–1500 nm
	RegionIR1500                   // 1500–1800 nm
	RegionIR1800                   // 1800–2600 nm
	RegionFarIR                    // 2600 nm–1 mm
	regionCount
)

type regionSpan struct {
	loNm, hiNm float64
	name       string
}

// Spans are half-open [lo, hi) and contiguous; the last one also includes
// its upper edge.
var regionTable = [regionCount]regionSpan{
	RegionUVC:        {180, 302.5, "uv-c"},
	RegionUVB:        {302.5, 315, "uv-b"},
	RegionUVA:        {315, 400, "uv-a"},
	RegionVisible:    {400, 700, "visible"},
	RegionNearIR:     {700, 1050, "near-ir"},
	RegionNearIRLong: {1050, 1400, "near-ir-long"},
	RegionIR1400:     {1400, 1500, "ir-1400"},
	RegionIR1500:     {1500, 1800, "ir-1500"},
	RegionIR1800:     {1800, 2600, "ir-1800"},
	RegionFarIR:      {2600, 1e6, "far-ir"},
}

// RegionOf returns the region containing wavelengthNm.
func RegionOf(wavelengthNm float64) (Region, bool) {
	for r := Region(0); r < regionCount; r++ {
		span := regionTable[r]
		if wavelengthNm < span.loNm {
			continue
		}
		if wavelengthNm < span.hiNm || (r == regionCount-1 && wavelengthNm == span.hiNm) {
			return r, true
		}
	}
	return 0, false
}

func (r Region) String() string {
	if r < 0 || r >= regionCount {
		return "unknown"
	}
	return regionTable[r].name
}

// Bounds returns the region's wavelength interval in nm.
func (r Region) Bounds() (loNm, hiNm float64) {
	span := regionTable[r]
	return span.loNm, span.hiNm
}

type factorMask uint8

const (
	useC1 factorMask = 1 << iota
	useC2
	useC3
	useC4
	useC6
	useC7
	// useT2Quarter multiplies by T2^-0.25.
	useT2Quarter
)

// term is one closed-form limit: coeff · t^exponent · (selected factors).
type term struct {
	coeff     float64
	exponent  float64
	unit      model.Unit
	factors   factorMask
	mechanism string
	// belowNm restricts the term to wavelengths under it; 0 means no
	// restriction.
	belowNm float64
}

func (tm term) appliesAt(wavelengthNm float64) bool {
	return tm.belowNm == 0 || wavelengthNm < tm.belowNm
}

func (tm term) eval(f model.CorrectionFactorSet, t float64) model.PhysicalQuantity {
	v := tm.coeff
	if tm.exponent != 0 {
		v *= math.Pow(t, tm.exponent)
	}
	if tm.factors&useC1 != 0 {
		v *= f.C1
	}
	if tm.factors&useC2 != 0 {
		v *= f.C2
	}
	if tm.factors&useC3 != 0 {
		v *= f.C3
	}
	if tm.factors&useC4 != 0 {
		v *= f.C4
	}
	if tm.factors&useC6 != 0 {
		v *= f.C6
	}
	if tm.factors&useC7 != 0 {
		v *= f.C7
	}
	if tm.factors&useT2Quarter != 0 {
		v *= math.Pow(f.T2, -0.25)
	}
	return model.Quantity(v, tm.unit)
}

func (tm term) describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g", tm.coeff)
	if tm.exponent != 0 {
		fmt.Fprintf(&b, "·t^%g", tm.exponent)
	}
	for _, n := range []struct {
		mask factorMask
		name string
	}{
		{useC1, "C1"}, {useC2, "C2"}, {useC3, "C3"}, {useC4, "C4"},
		{useC6, "C6"}, {useC7, "C7"}, {useT2Quarter, "T2^-0.25"},
	} {
		if tm.factors&n.mask != 0 {
			b.WriteString("·")
			b.WriteString(n.name)
		}
	}
	b.WriteString(" ")
	b.WriteString(string(tm.unit))
	return b.String()
}

// bound yields the exclusive upper exposure-time edge of a cell. Most are
// fixed; some depend on T1, T2 or C4.
type bound func(f model.CorrectionFactorSet) float64

func until(s float64) bound { return func(model.CorrectionFactorSet) float64 { return s } }

func untilT1(f model.CorrectionFactorSet) float64 { return f.T1 }

func untilT2(f model.CorrectionFactorSet) float64 { return f.T2 }

func untilScaledC4(s float64) bound {
	return func(f model.CorrectionFactorSet) float64 { return s * f.C4 }
}

var forever = until(math.Inf(1))

// cell is one exposure-time interval [previous end, end) of a region. A
// cell with two terms is a dual limit and the more restrictive applies.
type cell struct {
	end   bound
	terms []term
}

// limitTable maps each region to its ordered cells. A nil row means the
// table defines no limit in that region.
type limitTable [regionCount][]cell

// dispatch is the single pass over a table: region first, then the first
// cell whose end lies above t.
type dispatch struct {
	region Region
	cell   cell
	lo, hi float64
}

func (tbl *limitTable) lookup(wavelengthNm, t float64, f model.CorrectionFactorSet) (dispatch, bool) {
	region, ok := RegionOf(wavelengthNm)
	if !ok {
		return dispatch{}, false
	}
	cells := tbl[region]
	lo := 0.0
	for _, c := range cells {
		hi := c.end(f)
		if t < hi {
			return dispatch{region: region, cell: c, lo: lo, hi: hi}, true
		}
		if hi > lo {
			lo = hi
		}
	}
	return dispatch{}, false
}

func (d dispatch) describe(t float64) string {
	loNm, hiNm := d.region.Bounds()
	hi := "∞"
	if !math.IsInf(d.hi, 1) {
		hi = fmt.Sprintf("%.3g", d.hi)
	}
	return fmt.Sprintf("region %s [%g, %g) nm; t=%.3g s in [%.3g, %s) s", d.region, loNm, hiNm, t, d.lo, hi)
}

// limit evaluates the dispatched cell, applying the dual-limit rule when
// the cell has two applicable terms.
func (d dispatch) limit(wavelengthNm, t float64, f model.CorrectionFactorSet) (model.PhysicalQuantity, string, []string) {
	var active []term
	for _, tm := range d.cell.terms {
		if tm.appliesAt(wavelengthNm) {
			active = append(active, tm)
		}
	}
	switch len(active) {
	case 0:
		return model.NotApplicable(), "", []string{"no formula applies at this wavelength"}
	case 1:
		q := active[0].eval(f, t)
		return q, active[0].mechanism, []string{fmt.Sprintf("%s (%s) = %s", active[0].describe(), active[0].mechanism, q)}
	default:
		a, b := active[0], active[1]
		qa, qb := a.eval(f, t), b.eval(f, t)
		trace := []string{
			fmt.Sprintf("%s (%s) = %s", a.describe(), a.mechanism, qa),
			fmt.Sprintf("%s (%s) = %s", b.describe(), b.mechanism, qb),
		}
		q, pickA, note := minimumAfterNormalizing(qa, qb, t)
		trace = append(trace, note)
		if pickA {
			return q, a.mechanism, trace
		}
		return q, b.mechanism, trace
	}
}
