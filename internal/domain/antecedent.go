package domain

import "time"

// AntecedentTemperature estimates the mean air temperature over the dry
// period preceding an event: the interval from the end of the last rain
// event strictly before tBeg up to (excluding) tBeg. The end of the prior
// rain event is the latest rain sample > 0 before tBeg.
//
// Returns ok=false when no prior rain exists before tBeg — there is no
// antecedent dry period to average over, and the result must stay missing
// rather than collapse to an arbitrary number.
func AntecedentTemperature(rain, temperature Series, tBeg time.Time) (mean float64, ok bool) {
	var tEndPrev time.Time
	for _, s := range rain.Samples {
		if !s.Time.Before(tBeg) {
			continue
		}
		if IsMissing(s.Value) || s.Value <= 0 {
			continue
		}
		if s.Time.After(tEndPrev) {
			tEndPrev = s.Time
		}
	}
	if tEndPrev.IsZero() {
		return Missing(), false
	}

	var sum float64
	var n int
	for _, s := range temperature.Samples {
		if s.Time.Before(tEndPrev) || !s.Time.Before(tBeg) {
			continue
		}
		if IsMissing(s.Value) {
			continue
		}
		sum += s.Value
		n++
	}
	if n == 0 {
		return Missing(), false
	}
	return sum / float64(n), true
}
