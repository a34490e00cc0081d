package models

type Label string

const (
	LabelFake Label = "fake"
	LabelReal Label = "real"
)

// ModelPrediction is a classifier's top label with its softmax probability.
type ModelPrediction struct {
	Label      Label
	Confidence float64 // [0,1]
}

// PredictionOption holds a prediction or nothing.
type PredictionOption struct {
	value ModelPrediction
	ok    bool
}

func SomePrediction(p ModelPrediction) PredictionOption {
	return PredictionOption{value: p, ok: true}
}

func NoPrediction() PredictionOption {
	return PredictionOption{}
}

func (o PredictionOption) Get() (ModelPrediction, bool) {
	return o.value, o.ok
}

func (o PredictionOption) IsSome() bool { return o.ok }

// View renders the option for API clients.
func (o PredictionOption) View() AIPrediction {
	p, ok := o.Get()
	if !ok {
		return AIPrediction{Available: false, Prediction: "N/A", Confidence: 0}
	}
	label := "Likely Real"
	if p.Label == LabelFake {
		label = "Likely Fake"
	}
	return AIPrediction{
		Available:  true,
		Prediction: label,
		Confidence: roundPct(p.Confidence),
	}
}

func roundPct(c float64) float64 {
	v := c * 1000
	if v < 0 {
		return 0
	}
	return float64(int64(v+0.5)) / 10
}
