package catalog

// Offline fixtures served by the dummy backend. They mirror the data the
// dashboard shipped with before the REST backend existed.

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

// DummyModels returns a fresh copy of the fixture catalog.
func DummyModels() []Model {
	return []Model{
		{ID: "1", Name: "GPT-4", ParametersBillions: 1000, Architecture: "Transformer", ModelType: "💬 chat models", TrainingCO2Kg: 5000, OverallScore: 90, CloudProvider: str("Microsoft (Azure)"), DateSubmitted: "2024-03-14"},
		{ID: "2", Name: "LLaMA-3", ParametersBillions: 70, Architecture: "LlamaForCausalLM", ModelType: "🟢 pretrained", TrainingCO2Kg: 1200, OverallScore: 75, DateSubmitted: "2024-04-18"},
		{ID: "3", Name: "Mistral-7B", ParametersBillions: 7, Architecture: "MistralForCausalLM", ModelType: "🟢 pretrained", TrainingCO2Kg: 800, OverallScore: 65, DateSubmitted: "2023-09-27"},
		{ID: "4", Name: "BLOOM-176B", ParametersBillions: 176, Architecture: "BloomForCausalLM", ModelType: "🟢 pretrained", TrainingCO2Kg: 3200, OverallScore: 70, CloudProvider: str("Hugging Face"), DateSubmitted: "2022-07-12"},
		{ID: "5", Name: "Claude-3", ParametersBillions: 120, Architecture: "Transformer", ModelType: "💬 chat models", TrainingCO2Kg: 2800, OverallScore: 85, DateSubmitted: "2024-03-04"},
		{ID: "6", Name: "Gemma-7B", ParametersBillions: 7, Architecture: "Gemma2ForCausalLM", ModelType: "🟢 pretrained", TrainingCO2Kg: 750, OverallScore: 60, CloudProvider: str("Google Cloud"), DateSubmitted: "2024-02-21"},
		{ID: "7", Name: "Falcon-40B", ParametersBillions: 40, Architecture: "FalconForCausalLM", ModelType: "🟢 pretrained", TrainingCO2Kg: 1800, OverallScore: 68, DateSubmitted: "2023-05-25"},
		{ID: "8", Name: "Phi-2", ParametersBillions: 2.7, Architecture: "PhiForCausalLM", ModelType: "🔶 fine-tuned", TrainingCO2Kg: 350, OverallScore: 55, CloudProvider: str("Microsoft (Azure)"), DateSubmitted: "2023-12-12"},
	}
}

// DummyScores returns the fixture carbon scores, joined with their model
// metrics.
func DummyScores() []CarbonScore {
	type row struct {
		id       string
		score    float64
		category string
		ratio    float64
	}
	rows := []row{
		{"1", 95, "A+", 0.018},
		{"2", 85, "A", 0.0625},
		{"3", 75, "B", 0.0813},
		{"4", 65, "C", 0.0219},
		{"5", 70, "B", 0.0304},
		{"6", 80, "A", 0.08},
		{"7", 60, "C", 0.0378},
		{"8", 90, "A+", 0.1571},
	}
	out := make([]CarbonScore, 0, len(rows))
	for _, r := range rows {
		out = append(out, CarbonScore{
			ModelID:         r.id,
			CarbonScore:     r.score,
			Category:        r.category,
			EfficiencyRatio: r.ratio,
			RankPercentile:  r.score,
		})
	}
	return JoinModels(out, DummyModels())
}

// DummyUser is the profile every offline login resolves to.
func DummyUser(username string) User {
	if username == "" {
		username = "demo"
	}
	return User{
		ID:       "demo-" + username,
		Username: username,
		Email:    username + "@carbonscope.local",
		FullName: "Demo User",
		IsActive: true,
	}
}
