package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimalComma(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"decimal comma", "3,2", 3.2},
		{"decimal point", "3.2", 3.2},
		{"integer", "42", 42},
		{"padded", " 1,5 ", 1.5},
		{"negative", "-0,7", -0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseDecimalComma(tt.in), 1e-9)
		})
	}

	t.Run("empty and unparseable stay missing", func(t *testing.T) {
		assert.True(t, IsMissing(ParseDecimalComma("")))
		assert.True(t, IsMissing(ParseDecimalComma("n.a.")))
		assert.True(t, IsMissing(ParseDecimalComma("1,2,3")))
	})
}

func TestSeriesWindow(t *testing.T) {
	base := time.Date(2021, 5, 3, 8, 0, 0, 0, testZone)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }
	s := Series{Samples: []Sample{{at(0), 1}, {at(1), 2}, {at(2), 3}, {at(3), 4}}}

	got := s.Window(at(1), at(2))
	assert.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Value)
	assert.Equal(t, 3.0, got[1].Value)

	assert.Empty(t, s.Window(at(10), at(20)))
}
