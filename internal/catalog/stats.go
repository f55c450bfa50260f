package catalog

import (
	"cmp"
	"slices"
)

// Metrics aggregates a set of scores the way /efficiency-metrics does.
func Metrics(scores []CarbonScore) EfficiencyMetrics {
	out := EfficiencyMetrics{CategoryDistribution: map[string]int{}}
	if len(scores) == 0 {
		return out
	}
	vals := make([]float64, 0, len(scores))
	var sum float64
	for _, s := range scores {
		vals = append(vals, s.CarbonScore)
		sum += s.CarbonScore
		out.CategoryDistribution[s.Category]++
	}
	slices.Sort(vals)
	out.TotalModels = len(vals)
	out.AverageScore = sum / float64(len(vals))
	out.WorstScore = vals[0]
	out.BestScore = vals[len(vals)-1]
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		out.MedianScore = (vals[mid-1] + vals[mid]) / 2
	} else {
		out.MedianScore = vals[mid]
	}
	return out
}

// Stats aggregates a set of models the way /models/statistics does.
func Stats(models []Model) Statistics {
	var out Statistics
	if len(models) == 0 {
		return out
	}
	var params, co2, score float64
	arch := map[string]int{}
	types := map[string]int{}
	for _, m := range models {
		params += m.ParametersBillions
		co2 += m.TrainingCO2Kg
		score += m.OverallScore
		arch[m.Architecture]++
		types[m.ModelType]++
	}
	n := float64(len(models))
	out.TotalModels = len(models)
	out.AverageParameters = params / n
	out.AverageCO2 = co2 / n
	out.AverageScore = score / n
	out.TotalCO2 = co2
	out.MostCommonArchitecture = mostCommon(arch)
	out.MostCommonModelType = mostCommon(types)

	byEff := slices.Clone(models)
	slices.SortStableFunc(byEff, func(a, b Model) int { return cmp.Compare(b.Efficiency(), a.Efficiency()) })
	out.MostEfficientModel = ref(byEff[0], "carbon_efficiency", byEff[0].Efficiency())
	last := byEff[len(byEff)-1]
	out.LeastEfficientModel = ref(last, "carbon_efficiency", last.Efficiency())

	best := slices.MaxFunc(models, func(a, b Model) int { return cmp.Compare(a.OverallScore, b.OverallScore) })
	out.BestPerformingModel = ref(best, "overall_score", best.OverallScore)

	recent := slices.MaxFunc(models, func(a, b Model) int { return cmp.Compare(a.DateSubmitted, b.DateSubmitted) })
	if recent.DateSubmitted != "" {
		out.MostRecentModel = ref(recent, "date_submitted", recent.DateSubmitted)
	}
	return out
}

func ref(m Model, key string, v any) ModelRef {
	return ModelRef{"id": m.ID, "model_name": m.Name, key: v}
}

// mostCommon picks the highest count, breaking ties by name.
func mostCommon(counts map[string]int) string {
	best, n := "", -1
	for k, c := range counts {
		if c > n || (c == n && k < best) {
			best, n = k, c
		}
	}
	return best
}

// Options collects the distinct exact-match filter values of a full model
// set, sorted.
func Options(models []Model) FilterOptions {
	arch := map[string]bool{}
	types := map[string]bool{}
	clouds := map[string]bool{}
	for _, m := range models {
		arch[m.Architecture] = true
		types[m.ModelType] = true
		clouds[m.Cloud()] = true
	}
	return FilterOptions{
		Architectures:  sortedKeys(arch),
		ModelTypes:     sortedKeys(types),
		CloudProviders: sortedKeys(clouds),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
