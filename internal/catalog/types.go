// Package catalog holds the CarbonScope domain records, the carbon category
// table and the offline fixtures used by the dummy backend.
package catalog

import (
	"cmp"
	"encoding/json"
)

// Model is one AI model's metadata and carbon metrics as served by
// GET /api/v1/models/.
type Model struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"model_name" yaml:"model_name"`
	ParametersBillions    float64  `json:"parameters_billions" yaml:"parameters_billions"`
	Architecture          string   `json:"architecture" yaml:"architecture"`
	ModelType             string   `json:"model_type" yaml:"model_type"`
	TrainingCO2Kg         float64  `json:"training_co2_kg" yaml:"training_co2_kg"`
	OverallScore          float64  `json:"overall_score" yaml:"overall_score"`
	CloudProvider         *string  `json:"cloud_provider,omitempty" yaml:"cloud_provider,omitempty"`
	MMLUScore             *float64 `json:"mmlu_score,omitempty" yaml:"mmlu_score,omitempty"`
	BBHScore              *float64 `json:"bbh_score,omitempty" yaml:"bbh_score,omitempty"`
	MathScore             *float64 `json:"math_score,omitempty" yaml:"math_score,omitempty"`
	TrainingEnergyMWh     *float64 `json:"training_energy_mwh,omitempty" yaml:"training_energy_mwh,omitempty"`
	WaterUseMillionLiters *float64 `json:"water_use_million_liters,omitempty" yaml:"water_use_million_liters,omitempty"`
	DateSubmitted         string   `json:"date_submitted,omitempty" yaml:"date_submitted,omitempty"`
}

// Cloud returns the cloud provider label or "" when unknown.
func (m Model) Cloud() string {
	if m.CloudProvider == nil {
		return ""
	}
	return *m.CloudProvider
}

// Efficiency is overall score per kg of training CO2; zero when the model
// reports no emissions.
func (m Model) Efficiency() float64 {
	if m.TrainingCO2Kg <= 0 {
		return 0
	}
	return m.OverallScore / m.TrainingCO2Kg
}

// CarbonScore is the backend-computed carbon rating of one model. The model
// metrics are only present when the backend (or a fixture) joins them in.
type CarbonScore struct {
	ModelID         string  `json:"model_id" yaml:"model_id"`
	ModelName       string  `json:"model_name" yaml:"model_name"`
	CarbonScore     float64 `json:"carbon_score" yaml:"carbon_score"`
	Category        string  `json:"category" yaml:"category"`
	EfficiencyRatio float64 `json:"efficiency_ratio" yaml:"efficiency_ratio"`
	RankPercentile  float64 `json:"rank_percentile" yaml:"rank_percentile"`

	ParametersBillions *float64 `json:"parameters_billions,omitempty" yaml:"parameters_billions,omitempty"`
	TrainingCO2Kg      *float64 `json:"training_co2_kg,omitempty" yaml:"training_co2_kg,omitempty"`
	OverallScore       *float64 `json:"overall_score,omitempty" yaml:"overall_score,omitempty"`
	Architecture       string   `json:"architecture,omitempty" yaml:"architecture,omitempty"`
}

// UnmarshalJSON accepts both the ranking payload (model_id, category) and
// the joined model+score shape (id, carbon_category).
func (s *CarbonScore) UnmarshalJSON(data []byte) error {
	type plain CarbonScore
	var aux struct {
		plain
		ID             string `json:"id"`
		CarbonCategory string `json:"carbon_category"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = CarbonScore(aux.plain)
	if s.ModelID == "" {
		s.ModelID = aux.ID
	}
	if s.Category == "" {
		s.Category = aux.CarbonCategory
	}
	return nil
}

// Joined reports whether the row carries the model metrics the ranking
// endpoint leaves out.
func (s CarbonScore) Joined() bool {
	return s.ParametersBillions != nil && s.TrainingCO2Kg != nil && s.OverallScore != nil
}

// JoinModels fills each score's missing model metrics from the model with
// the same id. Values already on a row win; rows without a model are kept
// as they are.
func JoinModels(scores []CarbonScore, models []Model) []CarbonScore {
	byID := make(map[string]Model, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	out := make([]CarbonScore, len(scores))
	for i, s := range scores {
		if m, ok := byID[s.ModelID]; ok {
			s.ModelName = cmp.Or(s.ModelName, m.Name)
			s.ParametersBillions = cmp.Or(s.ParametersBillions, num(m.ParametersBillions))
			s.TrainingCO2Kg = cmp.Or(s.TrainingCO2Kg, num(m.TrainingCO2Kg))
			s.OverallScore = cmp.Or(s.OverallScore, num(m.OverallScore))
			s.Architecture = cmp.Or(s.Architecture, m.Architecture)
		}
		out[i] = s
	}
	return out
}

// Recommendation is a greener alternative for a model.
type Recommendation struct {
	OriginalModelID              string  `json:"original_model_id" yaml:"original_model_id"`
	OriginalModelName            string  `json:"original_model_name" yaml:"original_model_name"`
	RecommendedModelID           string  `json:"recommended_model_id" yaml:"recommended_model_id"`
	RecommendedModelName         string  `json:"recommended_model_name" yaml:"recommended_model_name"`
	CO2SavingsKg                 float64 `json:"co2_savings_kg" yaml:"co2_savings_kg"`
	PerformanceDifferencePercent float64 `json:"performance_difference_percent" yaml:"performance_difference_percent"`
	SimilarityScore              float64 `json:"similarity_score" yaml:"similarity_score"`
	Reason                       string  `json:"recommendation_reason" yaml:"recommendation_reason"`
}

// EfficiencyMetrics are the aggregate score statistics.
type EfficiencyMetrics struct {
	AverageScore         float64        `json:"average_score" yaml:"average_score"`
	MedianScore          float64        `json:"median_score" yaml:"median_score"`
	BestScore            float64        `json:"best_score" yaml:"best_score"`
	WorstScore           float64        `json:"worst_score" yaml:"worst_score"`
	TotalModels          int            `json:"total_models" yaml:"total_models"`
	CategoryDistribution map[string]int `json:"category_distribution" yaml:"category_distribution"`
}

// ModelRef is a loosely typed model summary embedded in Statistics.
type ModelRef map[string]any

// Name returns the model_name entry, if any.
func (r ModelRef) Name() string {
	if r == nil {
		return ""
	}
	s, _ := r["model_name"].(string)
	return s
}

// Statistics are the global catalog figures from /models/statistics.
type Statistics struct {
	TotalModels            int      `json:"total_models" yaml:"total_models"`
	AverageParameters      float64  `json:"average_parameters" yaml:"average_parameters"`
	AverageCO2             float64  `json:"average_co2" yaml:"average_co2"`
	AverageScore           float64  `json:"average_score" yaml:"average_score"`
	TotalCO2               float64  `json:"total_co2" yaml:"total_co2"`
	MostCommonArchitecture string   `json:"most_common_architecture" yaml:"most_common_architecture"`
	MostCommonModelType    string   `json:"most_common_model_type" yaml:"most_common_model_type"`
	MostEfficientModel     ModelRef `json:"most_efficient_model,omitempty" yaml:"most_efficient_model,omitempty"`
	LeastEfficientModel    ModelRef `json:"least_efficient_model,omitempty" yaml:"least_efficient_model,omitempty"`
	BestPerformingModel    ModelRef `json:"best_performing_model,omitempty" yaml:"best_performing_model,omitempty"`
	MostRecentModel        ModelRef `json:"most_recent_model,omitempty" yaml:"most_recent_model,omitempty"`
}

// FilterOptions are the selectable values for the exact-match filters.
type FilterOptions struct {
	Architectures  []string `json:"architectures" yaml:"architectures"`
	ModelTypes     []string `json:"model_types" yaml:"model_types"`
	CloudProviders []string `json:"cloud_providers" yaml:"cloud_providers"`
}

// User is the session profile returned by /auth/me.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
	IsAdmin  bool   `json:"is_admin,omitempty" yaml:"is_admin,omitempty"`

	Favorites []string `json:"favorites,omitempty" yaml:"favorites,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Region is a grid region with its carbon intensity in kg CO2 per kWh.
type Region struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	CO2Factor   float64 `json:"co2_factor" yaml:"co2_factor"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultRegions is the built-in region table, used when the backend does
// not serve /simulations/regions.
func DefaultRegions() []Region {
	return []Region{
		{ID: "europe", Name: "Europe", CO2Factor: 0.276, Description: "European average"},
		{ID: "north_america", Name: "North America", CO2Factor: 0.385, Description: "North American average"},
		{ID: "asia_pacific", Name: "Asia-Pacific", CO2Factor: 0.555, Description: "Asia-Pacific average"},
		{ID: "france", Name: "France", CO2Factor: 0.052, Description: "Mostly nuclear power"},
		{ID: "sweden", Name: "Sweden", CO2Factor: 0.013, Description: "Mostly hydro and nuclear power"},
		{ID: "china", Name: "China", CO2Factor: 0.681, Description: "Mostly coal"},
	}
}
