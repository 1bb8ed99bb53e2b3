package domain

import "time"

// FlowUnit names the denominator unit of a flow-rate series. The integrator
// converts sample spacing into this unit, so the caller states the unit
// explicitly instead of the conversion being inferred per call site.
type FlowUnit int

const (
	// LitersPerSecond integrates with Δt in seconds.
	LitersPerSecond FlowUnit = iota
	// LitersPerHour integrates with Δt in hours.
	LitersPerHour
)

func (u FlowUnit) String() string {
	switch u {
	case LitersPerSecond:
		return "l/s"
	case LitersPerHour:
		return "l/h"
	default:
		return "unknown"
	}
}

// deltaT returns the spacing between two timestamps in the unit matching
// the flow rate's denominator.
func (u FlowUnit) deltaT(a, b time.Time) float64 {
	d := b.Sub(a)
	if u == LitersPerHour {
		return d.Hours()
	}
	return d.Seconds()
}

// IntegrateVolume computes the runoff volume in liters over [tBeg, tEnd]
// (inclusive) by the trapezoidal rule. Samples with a missing value are
// excluded before integration, so an interval spanning a removed sample is
// integrated between its retained neighbours. Fewer than two retained
// samples yield zero.
func IntegrateVolume(flow Series, tBeg, tEnd time.Time, unit FlowUnit) float64 {
	window := flow.Window(tBeg, tEnd)

	retained := window[:0]
	for _, s := range window {
		if IsMissing(s.Value) {
			continue
		}
		retained = append(retained, s)
	}

	var volume float64
	for i := 1; i < len(retained); i++ {
		prev, cur := retained[i-1], retained[i]
		volume += (prev.Value + cur.Value) / 2 * unit.deltaT(prev.Time, cur.Time)
	}
	return volume
}
