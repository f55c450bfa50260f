package catalog

import "github.com/idlab-discover/carbonscope-cli/internal/query"

// Field names match the backend's JSON keys so that a State can be encoded
// for the server without translation.
const (
	FieldName          = "model_name"
	FieldParameters    = "parameters_billions"
	FieldArchitecture  = "architecture"
	FieldModelType     = "model_type"
	FieldTrainingCO2   = "training_co2_kg"
	FieldOverallScore  = "overall_score"
	FieldCloudProvider = "cloud_provider"
	FieldDateSubmitted = "date_submitted"

	FieldCarbonScore     = "carbon_score"
	FieldCategory        = "category"
	FieldEfficiencyRatio = "efficiency_ratio"
	FieldRankPercentile  = "rank_percentile"
)

var defaultSort = query.Sort{Field: FieldName, Direction: query.Ascending}

// ModelParams are the dashboard's model filters.
var ModelParams = []query.Param{
	{Name: "minParams", Field: FieldParameters, Op: query.Min, Key: "min_parameters"},
	{Name: "maxParams", Field: FieldParameters, Op: query.Max, Key: "max_parameters"},
	{Name: "architecture", Field: FieldArchitecture, Op: query.Exact, Key: "architecture"},
	{Name: "modelType", Field: FieldModelType, Op: query.Exact, Key: "model_type"},
	{Name: "minScore", Field: FieldOverallScore, Op: query.Min, Key: "min_score"},
	{Name: "maxScore", Field: FieldOverallScore, Op: query.Max, Key: "max_score"},
	{Name: "minCO2", Field: FieldTrainingCO2, Op: query.Min, Key: "min_co2"},
	{Name: "maxCO2", Field: FieldTrainingCO2, Op: query.Max, Key: "max_co2"},
	{Name: "cloudProvider", Field: FieldCloudProvider, Op: query.Exact, Key: "cloud_provider"},
}

// ModelSpec exposes Model to the query pipeline.
var ModelSpec = query.Spec[Model]{
	NameField: FieldName,
	Fields: map[string]query.Getter[Model]{
		FieldName:          func(m Model) query.Value { return query.String(m.Name) },
		FieldParameters:    func(m Model) query.Value { return query.Number(m.ParametersBillions) },
		FieldArchitecture:  func(m Model) query.Value { return query.String(m.Architecture) },
		FieldModelType:     func(m Model) query.Value { return query.String(m.ModelType) },
		FieldTrainingCO2:   func(m Model) query.Value { return query.Number(m.TrainingCO2Kg) },
		FieldOverallScore:  func(m Model) query.Value { return query.Number(m.OverallScore) },
		FieldCloudProvider: func(m Model) query.Value { return query.OptionalString(m.CloudProvider) },
		FieldDateSubmitted: func(m Model) query.Value {
			if m.DateSubmitted == "" {
				return query.Missing()
			}
			return query.String(m.DateSubmitted)
		},
	},
	Params:      ModelParams,
	DefaultSort: defaultSort,
}

// ScoreParams are the score table filters.
var ScoreParams = []query.Param{
	{Name: "category", Field: FieldCategory, Op: query.Exact, Key: "category"},
	{Name: "minCarbonScore", Field: FieldCarbonScore, Op: query.Min, Key: "min_carbon_score"},
	{Name: "minParams", Field: FieldParameters, Op: query.Min, Key: "min_parameters"},
	{Name: "maxParams", Field: FieldParameters, Op: query.Max, Key: "max_parameters"},
	{Name: "minCO2", Field: FieldTrainingCO2, Op: query.Min, Key: "min_co2"},
	{Name: "maxCO2", Field: FieldTrainingCO2, Op: query.Max, Key: "max_co2"},
}

// ScoreSpec exposes CarbonScore to the query pipeline.
var ScoreSpec = query.Spec[CarbonScore]{
	NameField: FieldName,
	Fields: map[string]query.Getter[CarbonScore]{
		FieldName:            func(s CarbonScore) query.Value { return query.String(s.ModelName) },
		FieldCarbonScore:     func(s CarbonScore) query.Value { return query.Number(s.CarbonScore) },
		FieldCategory:        func(s CarbonScore) query.Value { return query.String(s.Category) },
		FieldEfficiencyRatio: func(s CarbonScore) query.Value { return query.Number(s.EfficiencyRatio) },
		FieldRankPercentile:  func(s CarbonScore) query.Value { return query.Number(s.RankPercentile) },
		FieldParameters:      func(s CarbonScore) query.Value { return query.OptionalNumber(s.ParametersBillions) },
		FieldTrainingCO2:     func(s CarbonScore) query.Value { return query.OptionalNumber(s.TrainingCO2Kg) },
		FieldOverallScore:    func(s CarbonScore) query.Value { return query.OptionalNumber(s.OverallScore) },
	},
	Params:      ScoreParams,
	DefaultSort: defaultSort,
}
