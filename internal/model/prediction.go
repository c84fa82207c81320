package model

// PredictionLabel is the coarse resolution-likelihood bucket.
type PredictionLabel string

// Prediction labels.
const (
	LabelHigh   PredictionLabel = "High"
	LabelMedium PredictionLabel = "Medium"
	LabelLow    PredictionLabel = "Low"
)

// LabelForScore derives the likelihood label from a 0-100 score. The
// label returned by the model is ignored so that score and label can
// never contradict each other.
func LabelForScore(score int) PredictionLabel {
	switch {
	case score >= 70:
		return LabelHigh
	case score >= 40:
		return LabelMedium
	default:
		return LabelLow
	}
}

// PredictionResult is the outcome of a resolution-likelihood estimate
// for a failed transaction. Score is always within [0, 100].
type PredictionResult struct {
	Label     PredictionLabel
	Rationale string
	Score     int
}
