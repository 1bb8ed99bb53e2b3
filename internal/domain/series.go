package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Sample is one timestamped measurement. Value is NaN when the measurement
// is missing (unparseable, over range, or never recorded).
type Sample struct {
	Time  time.Time
	Value float64
}

// Series is a named, chronologically ordered sequence of samples.
type Series struct {
	Name    string
	Samples []Sample
}

// Missing returns the missing-value sentinel. All numeric fields in this
// package use NaN for "not measured" so that arithmetic propagates it.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Window returns the samples with tBeg <= t <= tEnd, preserving order.
func (s Series) Window(tBeg, tEnd time.Time) []Sample {
	out := make([]Sample, 0, len(s.Samples))
	for _, sm := range s.Samples {
		if sm.Time.Before(tBeg) || sm.Time.After(tEnd) {
			continue
		}
		out = append(out, sm)
	}
	return out
}

// ParseDecimalComma parses a numeric cell that may use a decimal comma
// ("3,2" -> 3.2). Empty or unparseable text yields missing.
func ParseDecimalComma(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing()
	}
	return v
}
