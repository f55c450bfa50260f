package catalog

import "fmt"

// DefaultRecommendationLimit is how many alternatives are proposed when the
// caller does not ask for a specific number.
const DefaultRecommendationLimit = 3

// Reason describes an alternative by its relative performance change.
func Reason(performanceDiffPercent float64) string {
	switch {
	case performanceDiffPercent > 5:
		return "Greener and better performing"
	case performanceDiffPercent > -10:
		return "Greener with similar performance"
	default:
		return "Greener but less performant"
	}
}

// PerformanceDiff is the relative overall-score change from original to
// alternative, in percent. Zero when the original has no score.
func PerformanceDiff(original, alternative float64) float64 {
	if original == 0 {
		return 0
	}
	return (alternative - original) / original * 100
}

// Similarity compares two models by size: the ratio of the smaller to the
// larger parameter count, in [0,1].
func Similarity(a, b Model) float64 {
	lo, hi := a.ParametersBillions, b.ParametersBillions
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi <= 0 {
		return 0
	}
	return lo / hi
}

// NewRecommendation derives the comparison fields for one pair.
func NewRecommendation(original, alternative Model) Recommendation {
	diff := PerformanceDiff(original.OverallScore, alternative.OverallScore)
	return Recommendation{
		OriginalModelID:              original.ID,
		OriginalModelName:            original.Name,
		RecommendedModelID:           alternative.ID,
		RecommendedModelName:         alternative.Name,
		CO2SavingsKg:                 original.TrainingCO2Kg - alternative.TrainingCO2Kg,
		PerformanceDifferencePercent: diff,
		SimilarityScore:              Similarity(original, alternative),
		Reason:                       Reason(diff),
	}
}

// Recommend lists up to limit models with a strictly better carbon score
// than modelID, in score order. It works on an in-memory catalog and is
// what the offline backend serves.
func Recommend(models []Model, scores []CarbonScore, modelID string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	byID := make(map[string]Model, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	original, ok := byID[modelID]
	if !ok {
		return nil, fmt.Errorf("model %q not found", modelID)
	}
	var base *CarbonScore
	for i := range scores {
		if scores[i].ModelID == modelID {
			base = &scores[i]
			break
		}
	}
	if base == nil {
		return nil, fmt.Errorf("no carbon score for model %q", modelID)
	}

	out := []Recommendation{}
	for _, s := range scores {
		if len(out) == limit {
			break
		}
		if s.ModelID == modelID || s.CarbonScore <= base.CarbonScore {
			continue
		}
		alt, ok := byID[s.ModelID]
		if !ok {
			continue
		}
		out = append(out, NewRecommendation(original, alt))
	}
	return out, nil
}
