package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData marks a regression fit attempted with too few or
// degenerate observations. No prediction may be made from such a fit.
var ErrInsufficientData = errors.New("insufficient data for regression")

// maxDesignCondition rejects designs that are numerically singular, e.g. a
// constant predictor column.
const maxDesignCondition = 1e12

// Observation is one training row for the volume model: an event with a
// measured (not regression-derived) volume.
type Observation struct {
	RainDepth      float64
	AntecedentTemp float64
	Volume         float64
}

// VolumeModel is an ordinary least squares fit of
// volume ~ rain depth + antecedent temperature. Coefficients are retained
// so a fit can be reported and reproduced.
type VolumeModel struct {
	Intercept float64
	RainCoef  float64
	TempCoef  float64

	// Training holds the observations the model was fitted on.
	Training []Observation
}

// FitVolumeModel fits the two-predictor OLS model. Observations with any
// missing field are excluded first. Fewer than three usable observations or
// a singular design (e.g. constant predictor) fail with
// ErrInsufficientData; an unchecked numerical result is never returned.
func FitVolumeModel(obs []Observation) (VolumeModel, error) {
	usable := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if IsMissing(o.RainDepth) || IsMissing(o.AntecedentTemp) || IsMissing(o.Volume) {
			continue
		}
		usable = append(usable, o)
	}
	if len(usable) < 3 {
		return VolumeModel{}, fmt.Errorf("%w: %d usable observations, need at least 3", ErrInsufficientData, len(usable))
	}

	n := len(usable)
	x := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i, o := range usable {
		x.Set(i, 0, 1)
		x.Set(i, 1, o.RainDepth)
		x.Set(i, 2, o.AntecedentTemp)
		y.SetVec(i, o.Volume)
	}

	var qr mat.QR
	qr.Factorize(x)
	if cond := qr.Cond(); cond > maxDesignCondition {
		return VolumeModel{}, fmt.Errorf("%w: singular design (condition number %.3g)", ErrInsufficientData, cond)
	}

	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, y); err != nil {
		return VolumeModel{}, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}

	return VolumeModel{
		Intercept: coef.At(0, 0),
		RainCoef:  coef.At(1, 0),
		TempCoef:  coef.At(2, 0),
		Training:  usable,
	}, nil
}

// Predict evaluates the fitted model for a rain depth and antecedent
// temperature. Missing inputs propagate to a missing prediction.
func (m VolumeModel) Predict(rainDepth, antecedentTemp float64) float64 {
	return m.Intercept + m.RainCoef*rainDepth + m.TempCoef*antecedentTemp
}
